package io

import (
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

const (
	debounce = 10 * time.Millisecond

	// LongPress is how long a button must be held to count as a long press.
	LongPress = 2 * time.Second
)

// Button tracks an active-low push button wired against the internal
// pull-up. A press is reported on release.
type Button struct {
	offset  int
	pressed bool
	start   time.Duration
	Event   chan ButtonEvent
}

type ButtonEvent struct {
	Offset   int
	Duration time.Duration
}

func (e ButtonEvent) Long() bool {
	return e.Duration > LongPress
}

func newButton(offset int) *Button {
	return &Button{
		offset: offset,
		Event:  make(chan ButtonEvent, 4),
	}
}

func (b *Button) eventHandler(evt gpiocdev.LineEvent) {
	if evt.Type == gpiocdev.LineEventFallingEdge {
		if !b.pressed {
			b.pressed = true
			b.start = evt.Timestamp
		}
		return
	}
	if !b.pressed {
		return
	}
	b.pressed = false
	held := evt.Timestamp - b.start
	if held < debounce {
		return
	}
	select {
	case b.Event <- ButtonEvent{Offset: b.offset, Duration: held}:
	default:
		log.Warningf("button %d: dropped press of %v", b.offset, held)
	}
}

// WatchButton requests lineOffset as an input with pull-up and both edge
// detection. Presses are delivered on the returned button's Event channel.
func (io *IO) WatchButton(lineOffset int) (*Button, error) {
	if io.chip == nil {
		return nil, errors.Errorf("watching button %d: no gpio chip configured", lineOffset)
	}
	b := newButton(lineOffset)
	line, err := io.chip.RequestLine(lineOffset,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.eventHandler),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "requesting button line %d", lineOffset)
	}
	io.mu.Lock()
	io.lines[lineOffset] = line
	io.mu.Unlock()
	return b, nil
}
