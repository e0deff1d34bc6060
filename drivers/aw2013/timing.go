package aw2013

import "ledcode-go/x/mathx"

// Timing describes one breathing cycle: an optional start delay, then
// rise/hold/fall/off phases, repeated Cycles times.
//
// Out-of-range values are silently clamped to the widest encodable setting;
// nothing is rejected.
type Timing struct {
	// Delay before the first cycle starts, clamped to 0-7.
	//
	//	0: 0s, 1: 0.13s, 2: 0.26s, 3: 0.52s, 4: 1.04s, 5: 2.08s,
	//	6: 4.16s, 7: 8.32s
	Delay uint8

	// Rise period, clamped to 0-7.
	//
	//	0: 0.13s, 1: 0.26s, 2: 0.52s, 3: 1.04s, 4: 2.08s, 5: 4.16s,
	//	6: 8.32s, 7: 16.64s
	Rise uint8

	// Hold period at full brightness, clamped to 0-5.
	//
	//	0: 0.13s, 1: 0.26s, 2: 0.52s, 3: 1.04s, 4: 2.08s, 5: 4.16s
	Hold uint8

	// Fall period, clamped to 0-7. Same scale as Rise.
	Fall uint8

	// Off period between cycles, clamped to 0-7. Same scale as Rise.
	Off uint8

	// Number of cycles, clamped to 0-15. Zero means repeat forever.
	Cycles uint8
}

// configureTiming writes the three packed timing registers for one channel.
func (d *Device) configureTiming(led Led, t Timing) error {
	if err := d.writeRegister(timingReg(regTiming0Base, led),
		mathx.Min(t.Rise, 7)<<4|mathx.Min(t.Hold, 5)); err != nil {
		return err
	}
	if err := d.writeRegister(timingReg(regTiming1Base, led),
		mathx.Min(t.Fall, 7)<<4|mathx.Min(t.Off, 7)); err != nil {
		return err
	}
	return d.writeRegister(timingReg(regTiming2Base, led),
		mathx.Min(t.Delay, 7)<<4|mathx.Min(t.Cycles, 15))
}
