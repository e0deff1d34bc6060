//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers"
)

// openI2C configures I2C0 on the Pico default pins.
func openI2C() (drivers.I2C, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	if err != nil {
		return nil, err
	}
	return machine.I2C0, nil
}
