package io

import (
	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/pkg/errors"
	"gobot.io/x/gobot/drivers/i2c"
	"gobot.io/x/gobot/platforms/raspi"
)

// gobotBoard drives a PCA9685 through gobot's raspi adaptor.
type gobotBoard struct {
	servos *i2c.PCA9685Driver
}

func newGobot(cfg Config) (Board, error) {
	r := raspi.NewAdaptor()
	var opts []func(i2c.Config)
	if cfg.I2CAddr != 0 {
		opts = append(opts, i2c.WithAddress(int(cfg.I2CAddr)))
	}
	servos := i2c.NewPCA9685Driver(r, opts...)
	if err := servos.Start(); err != nil {
		return nil, errors.Wrap(err, "starting PCA9685 driver")
	}
	if err := servos.SetPWMFreq(servo.FrequencyHz); err != nil {
		_ = servos.Halt()
		return nil, errors.Wrap(err, "setting pwm frequency")
	}
	return &gobotBoard{servos: servos}, nil
}

func (b *gobotBoard) MaxDuty() uint32 {
	return pca9685MaxDuty
}

func (b *gobotBoard) SetDuty(channel int, duty uint32) error {
	return b.servos.SetPWM(channel, 0, uint16(offTicks(duty)))
}

func (b *gobotBoard) Halt() error {
	return b.servos.Halt()
}
