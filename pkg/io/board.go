package io

import (
	"fmt"
	"time"

	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/pkg/errors"
)

// Board is a multi-channel PWM peripheral running at the servo frequency.
type Board interface {
	// MaxDuty is the full scale duty value of the board's timer.
	MaxDuty() uint32
	SetDuty(channel int, duty uint32) error
	Halt() error
}

const (
	BoardPCA9685 = "pca9685"
	BoardGobot   = "gobot"
	BoardRPIO    = "rpio"
	BoardMock    = "mock"
)

type Config struct {
	Board       string        `yaml:"board" env:"COBOT_BOARD"`
	I2CBus      string        `yaml:"i2cBus" env:"COBOT_I2C_BUS"`
	I2CAddr     uint16        `yaml:"i2cAddr" env:"COBOT_I2C_ADDR"`
	Resolution  uint32        `yaml:"resolution" env:"COBOT_RESOLUTION"` // max duty for rpio and mock boards
	GPIOChip    string        `yaml:"gpioChip" env:"COBOT_GPIO_CHIP"`
	SettleDelay time.Duration `yaml:"settleDelay" env:"COBOT_SETTLE_DELAY"`
}

type UnknownBoardError struct {
	Name string
}

func (err UnknownBoardError) Error() string {
	return fmt.Sprintf("unknown board %q", err.Name)
}

// Validate checks the board name and, for boards whose timer resolution is
// configurable, that the resolution is usable.
func (cfg Config) Validate() error {
	switch cfg.Board {
	case BoardPCA9685, BoardGobot:
		return nil
	case BoardMock:
		if cfg.Resolution == 0 {
			return errors.New("mock board: resolution must be positive")
		}
		return nil
	case BoardRPIO:
		if cfg.Resolution == 0 {
			return errors.New("rpio board: resolution must be positive")
		}
		clock := uint64(servo.FrequencyHz) * uint64(cfg.Resolution)
		if clock < minPWMClock || clock > maxPWMClock {
			return errors.Errorf("rpio board: resolution %d needs a %dHz clock, outside %d-%dHz",
				cfg.Resolution, clock, minPWMClock, maxPWMClock)
		}
		return nil
	}
	return UnknownBoardError{Name: cfg.Board}
}

func NewBoard(cfg Config) (Board, error) {
	switch cfg.Board {
	case BoardPCA9685:
		return newPCA9685(cfg)
	case BoardGobot:
		return newGobot(cfg)
	case BoardRPIO:
		return newRPIO(cfg)
	case BoardMock:
		return NewMockBoard(cfg.Resolution), nil
	}
	return nil, UnknownBoardError{Name: cfg.Board}
}
