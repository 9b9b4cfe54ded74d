package io

import (
	"sync"

	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

const (
	defaultRPIOResolution = 1024

	// The PWM clock divides 19.2MHz by a 12-bit divisor.
	minPWMClock = 4688
	maxPWMClock = 19200000
)

// rpioBoard uses the Raspberry Pi hardware PWM pins directly; channels are
// BCM pin numbers (12, 13, 18 or 19).
type rpioBoard struct {
	mu   sync.Mutex
	max  uint32
	pins map[int]rpio.Pin
}

func newRPIO(cfg Config) (Board, error) {
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "opening gpio memory")
	}
	max := cfg.Resolution
	if max == 0 {
		max = defaultRPIOResolution
	}
	return &rpioBoard{max: max, pins: make(map[int]rpio.Pin)}, nil
}

func (b *rpioBoard) MaxDuty() uint32 {
	return b.max
}

func (b *rpioBoard) SetDuty(channel int, duty uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	pin, ok := b.pins[channel]
	if !ok {
		pin = rpio.Pin(channel)
		pin.Pwm()
		// Param freq should be in range 4688Hz - 19.2MHz.
		pin.Freq(servo.FrequencyHz * int(b.max))
		b.pins[channel] = pin
	}
	pin.DutyCycle(duty, b.max)
	return nil
}

func (b *rpioBoard) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, pin := range b.pins {
		pin.DutyCycle(0, b.max)
	}
	return rpio.Close()
}
