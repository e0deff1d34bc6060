// Package aw2013 drives the AW2013 3-channel LED controller over I²C.
//
// The chip runs its effects autonomously: the host only programs
// mode/PWM/timing registers and flips bits in a shared enable register, so
// every operation here reduces to an ordered sequence of register writes
// (plus the occasional read-modify-write of the enable mask).
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package aw2013

import (
	"tinygo.org/x/drivers"

	"ledcode-go/x/mathx"
)

// Led selects one of the three output channels, numbered as in the datasheet.
type Led uint8

const (
	Led0 Led = 0x0
	Led1 Led = 0x1
	Led2 Led = 0x2
)

// Current is the maximum drive current for a channel, encoded in the low two
// bits of that channel's mode register.
type Current uint8

const (
	CurrentZero    Current = 0x0 // 0 mA
	CurrentFive    Current = 0x1 // 5 mA
	CurrentTen     Current = 0x2 // 10 mA
	CurrentFifteen Current = 0x3 // 15 mA
)

// Config holds construction-time settings. MaxCurrents is fixed for the
// lifetime of the Device; there is no register that can be updated safely
// without rewriting the whole mode byte, so runtime changes are not offered.
type Config struct {
	// Address defaults to AddressDefault (0x45) if zero.
	Address uint16
	// MaxCurrents sets the per-channel current limit, index = channel.
	MaxCurrents [3]Current
}

// Device represents an AW2013 instance on an I²C bus.
//
// The driver keeps no shadow of the chip's enable or mode state; toggling one
// channel reads the shared enable register back from hardware first so sibling
// channels are never clobbered. That read-modify-write is not locked: callers
// must serialize access to a Device (a single owning goroutine is enough).
type Device struct {
	bus  drivers.I2C
	addr uint16

	maxCurrents [3]Current

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

// New constructs a Device with the supplied config. It only creates the
// Device object; no bus traffic is issued until the first operation.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		bus:         bus,
		addr:        addr,
		maxCurrents: cfg.MaxCurrents,
	}
}

// Reset returns the controller to its power-on defaults by writing the unlock
// key to the reset register. The reset clears the global enable bit: call
// Enable again before expecting any output.
func (d *Device) Reset() error {
	return d.writeRegister(regReset, resetKey)
}

// Enable turns the LED module on. Idempotent.
func (d *Device) Enable() error {
	return d.writeRegister(regGlobalControl, moduleEnableMask)
}

// Disable turns the LED module off. Idempotent.
func (d *Device) Disable() error {
	return d.writeRegister(regGlobalControl, 0)
}

// SetStatic sets a fixed brightness on one channel, optionally with one-shot
// fade-in/fade-out transitions (period codes 0-7, clamped).
//
// Brightness 0 only clears the channel's enable bit; no other register is
// touched. Both fade values land in the same timing nibble, so when both are
// supplied the fade-out period is the one left in the register.
//
// Mode and PWM are written before the channel is enabled so a previously
// configured value never flashes through.
func (d *Device) SetStatic(led Led, brightness uint8, fadeIn, fadeOut *uint8) error {
	if brightness == 0 {
		return d.disableLED(led)
	}

	config := uint8(d.maxCurrents[led])

	if fadeIn != nil {
		config |= fadeInMask
		if err := d.writeRegister(timingReg(regTiming0Base, led), mathx.Min(*fadeIn, 7)<<4); err != nil {
			return err
		}
	}

	if fadeOut != nil {
		config |= fadeOutMask
		if err := d.writeRegister(timingReg(regTiming0Base, led), mathx.Min(*fadeOut, 7)<<4); err != nil {
			return err
		}
	}

	if err := d.writeRegister(modeReg(led), config); err != nil {
		return err
	}
	if err := d.writeRegister(pwmReg(led), brightness); err != nil {
		return err
	}

	return d.enableLED(led)
}

// SetStaticRGB applies SetStatic to all three channels in order with the same
// fade parameters. Not atomic: if a write fails partway, channels already
// written keep their new value and the rest keep their previous state.
func (d *Device) SetStaticRGB(rgb [3]uint8, fadeIn, fadeOut *uint8) error {
	for _, led := range [3]Led{Led0, Led1, Led2} {
		if err := d.SetStatic(led, rgb[led], fadeIn, fadeOut); err != nil {
			return err
		}
	}
	return nil
}

// SetBreathing starts the hardware breathing cycle on one channel. The
// channel is disabled first so an in-progress cycle stops cleanly; brightness
// 0 leaves it disabled and writes nothing else.
func (d *Device) SetBreathing(led Led, brightness uint8, t Timing) error {
	if err := d.disableLED(led); err != nil {
		return err
	}

	if brightness == 0 {
		return nil
	}

	if err := d.writeRegister(pwmReg(led), brightness); err != nil {
		return err
	}
	if err := d.configureTiming(led, t); err != nil {
		return err
	}
	if err := d.writeRegister(modeReg(led), uint8(d.maxCurrents[led])|breatheModeMask); err != nil {
		return err
	}

	return d.enableLED(led)
}

// SetBreathingRGB starts one shared breathing cycle on all three channels at
// once. Unlike three SetBreathing calls, every channel is configured while
// the whole enable mask is held at zero and then released with a single
// enable write, so the cycles start visually in sync. The final mask has bit
// i set iff rgb[i] > 0.
func (d *Device) SetBreathingRGB(rgb [3]uint8, t Timing) error {
	if err := d.writeRegister(regLEDEnable, 0x0); err != nil {
		return err
	}

	for _, led := range [3]Led{Led0, Led1, Led2} {
		if err := d.writeRegister(modeReg(led), uint8(d.maxCurrents[led])); err != nil {
			return err
		}
	}

	for _, led := range [3]Led{Led0, Led1, Led2} {
		if err := d.writeRegister(pwmReg(led), rgb[led]); err != nil {
			return err
		}
		if err := d.configureTiming(led, t); err != nil {
			return err
		}
	}

	for _, led := range [3]Led{Led0, Led1, Led2} {
		if err := d.writeRegister(modeReg(led), uint8(d.maxCurrents[led])|breatheModeMask); err != nil {
			return err
		}
	}

	var active uint8
	for i, v := range rgb {
		if v > 0 {
			active |= 1 << i
		}
	}

	return d.writeRegister(regLEDEnable, active)
}

// enableLED sets one channel's bit in the shared enable register.
func (d *Device) enableLED(led Led) error {
	v, err := d.readRegister(regLEDEnable)
	if err != nil {
		return err
	}
	return d.writeRegister(regLEDEnable, v|1<<uint8(led))
}

// disableLED clears one channel's bit in the shared enable register.
func (d *Device) disableLED(led Led) error {
	v, err := d.readRegister(regLEDEnable)
	if err != nil {
		return err
	}
	return d.writeRegister(regLEDEnable, v&^(1<<uint8(led)))
}

func (d *Device) writeRegister(reg, value uint8) error {
	d.w[0], d.w[1] = reg, value
	return d.bus.Tx(d.addr, d.w[:], nil)
}

func (d *Device) readRegister(reg uint8) (uint8, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}
