package io

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// SetPinState drives a GPIO output line high (1) or low (0), requesting the
// line on first use. Without a GPIO chip it does nothing.
func (io *IO) SetPinState(offset int, state int) error {
	if io.chip == nil || offset < 0 {
		log.Debugf("no gpio: line %d -> %d", offset, state)
		return nil
	}
	io.mu.Lock()
	defer io.mu.Unlock()
	l, ok := io.lines[offset]
	if !ok {
		var err error
		l, err = io.chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			return errors.Wrapf(err, "requesting output line %d", offset)
		}
		io.lines[offset] = l
	}
	return l.SetValue(state)
}
