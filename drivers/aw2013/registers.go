package aw2013

// Register addresses and bitfields, per the AW2013 datasheet memory map.

const (
	// 7-bit I2C address (100_0101b).
	AddressDefault = 0x45

	// --- Register sub-addresses (8-bit byte registers) ---

	regReset         = 0x00 // W, write resetKey to return to power-on defaults
	regGlobalControl = 0x01 // R/W, bit0 = module enable
	regLEDEnable     = 0x30 // R/W, bit i = channel i active

	// Per-channel register bases. Mode and PWM stride by 1, the three timing
	// registers stride by 3.
	regLEDModeBase = 0x31 // R/W, bits0-1 current limit, bit4 breathe, bit5 fade-in, bit6 fade-out
	regLEDPWMBase  = 0x34 // R/W, raw brightness 0-255
	regTiming0Base = 0x37 // R/W, rise<<4 | hold
	regTiming1Base = 0x38 // R/W, fall<<4 | off
	regTiming2Base = 0x39 // R/W, delay<<4 | cycles

	// --- Bits / magic values ---

	moduleEnableMask = 0x01
	breatheModeMask  = 0x10
	fadeInMask       = 0x20
	fadeOutMask      = 0x40
	resetKey         = 0x55
)

// Per-channel register address arithmetic. Kept here so no operation carries
// its own base+offset math.

func modeReg(led Led) uint8 { return regLEDModeBase + uint8(led) }

func pwmReg(led Led) uint8 { return regLEDPWMBase + uint8(led) }

func timingReg(base uint8, led Led) uint8 { return base + uint8(led)*3 }
