package io

import (
	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"
)

const (
	// pca9685 counts 4096 ticks per PWM cycle.
	pca9685MaxDuty = 4096

	defaultPCA9685Addr = 0x40
)

// pcaBoard drives a PCA9685 through periph.io.
type pcaBoard struct {
	bus i2c.BusCloser
	dev *pca9685.Dev
}

func newPCA9685(cfg Config) (Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initialising periph host")
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, errors.Wrapf(err, "opening i2c bus %q", cfg.I2CBus)
	}
	addr := cfg.I2CAddr
	if addr == 0 {
		addr = defaultPCA9685Addr
	}
	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrapf(err, "pca9685 at %#x", addr)
	}
	if err := dev.SetPwmFreq(servo.FrequencyHz * physic.Hertz); err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "setting pwm frequency")
	}
	log.Infof("pca9685 ready on %s at %#x", cfg.I2CBus, addr)
	return &pcaBoard{bus: bus, dev: dev}, nil
}

func (b *pcaBoard) MaxDuty() uint32 {
	return pca9685MaxDuty
}

func (b *pcaBoard) SetDuty(channel int, duty uint32) error {
	return b.dev.SetPwm(channel, 0, gpio.Duty(offTicks(duty)))
}

// offTicks clamps duty to the 12-bit off register. Writing 4096 would set
// the FULL_OFF bit and turn the output dark.
func offTicks(duty uint32) uint32 {
	if duty >= pca9685MaxDuty {
		return pca9685MaxDuty - 1
	}
	return duty
}

func (b *pcaBoard) Halt() error {
	err := b.dev.SetAllPwm(0, 0)
	if cerr := b.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
