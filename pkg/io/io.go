package io

import (
	"sort"
	"sync"
	"time"

	"github.com/Seann-Moser/cobot/pkg/logger"
	"github.com/Seann-Moser/cobot/pkg/servo"
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

var log = logger.Get("io")

// CenterAngle is where untouched servos are assumed to sit.
const CenterAngle uint32 = 90

type IO struct {
	chip     *gpiocdev.Chip
	lines    map[int]*gpiocdev.Line
	board    Board
	mu       sync.Mutex
	channels map[int]*ChannelInfo
	settle   time.Duration
}

type ChannelInfo struct {
	CurrentAngle uint32
	LastDuty     uint32
}

// New opens the configured board and, when cfg.GPIOChip is set, the GPIO
// chip used for the status LED and buttons.
func New(cfg Config) (*IO, error) {
	board, err := NewBoard(cfg)
	if err != nil {
		return nil, err
	}
	io := NewWithBoard(board)
	io.settle = cfg.SettleDelay

	if cfg.GPIOChip == "" {
		return io, nil
	}
	c, err := gpiocdev.NewChip(cfg.GPIOChip)
	if err != nil {
		_ = board.Halt()
		return nil, errors.Wrapf(err, "opening chip %s", cfg.GPIOChip)
	}
	log.Debugf("opened %s (%s) with %d lines", c.Name, c.Label, c.Lines())
	io.chip = c
	return io, nil
}

// NewWithBoard wraps an already opened board without any GPIO chip.
func NewWithBoard(board Board) *IO {
	return &IO{
		board:    board,
		lines:    make(map[int]*gpiocdev.Line),
		channels: make(map[int]*ChannelInfo),
	}
}

func (io *IO) MaxDuty() uint32 {
	return io.board.MaxDuty()
}

// SetServoAngle converts angle for the board's resolution and writes it to
// channel. It returns the duty value written. A negative channel is ignored.
func (io *IO) SetServoAngle(channel int, angle uint32) (uint32, error) {
	if channel < 0 {
		return 0, nil
	}
	duty := servo.AngleToDuty(angle, io.board.MaxDuty())
	if err := io.ApplyDuty(channel, angle, duty); err != nil {
		return 0, err
	}
	return duty, nil
}

// ApplyDuty writes a duty value already computed for angle and records both.
func (io *IO) ApplyDuty(channel int, angle, duty uint32) error {
	if channel < 0 {
		return nil
	}
	if angle > servo.MaxAngle {
		angle = servo.MaxAngle
	}
	io.mu.Lock()
	defer io.mu.Unlock()

	if max := io.board.MaxDuty(); duty > max {
		duty = max
	}
	if err := io.board.SetDuty(channel, duty); err != nil {
		return errors.Wrapf(err, "channel %d: setting duty %d", channel, duty)
	}
	io.record(channel, angle, duty)
	return nil
}

// SetDuty writes a raw duty value, clamped to the board's resolution.
func (io *IO) SetDuty(channel int, duty uint32) error {
	if channel < 0 {
		return nil
	}
	io.mu.Lock()
	defer io.mu.Unlock()

	max := io.board.MaxDuty()
	if duty > max {
		duty = max
	}
	if err := io.board.SetDuty(channel, duty); err != nil {
		return errors.Wrapf(err, "channel %d: setting duty %d", channel, duty)
	}
	io.record(channel, servo.DutyToAngle(duty, max), duty)
	return nil
}

func (io *IO) record(channel int, angle, duty uint32) {
	info, ok := io.channels[channel]
	if !ok {
		info = &ChannelInfo{}
		io.channels[channel] = info
	}
	info.CurrentAngle = angle
	info.LastDuty = duty
}

// Angle returns the last angle commanded on channel.
func (io *IO) Angle(channel int) uint32 {
	io.mu.Lock()
	defer io.mu.Unlock()
	if info, ok := io.channels[channel]; ok {
		return info.CurrentAngle
	}
	return CenterAngle
}

// Duty returns the last duty written to channel.
func (io *IO) Duty(channel int) uint32 {
	io.mu.Lock()
	defer io.mu.Unlock()
	if info, ok := io.channels[channel]; ok {
		return info.LastDuty
	}
	return servo.AngleToDuty(CenterAngle, io.board.MaxDuty())
}

// Channels lists every channel driven so far, in ascending order.
func (io *IO) Channels() []int {
	io.mu.Lock()
	defer io.mu.Unlock()
	out := make([]int, 0, len(io.channels))
	for k := range io.channels {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Reset centres every channel that has been driven.
func (io *IO) Reset() {
	for _, k := range io.Channels() {
		if _, err := io.SetServoAngle(k, CenterAngle); err != nil {
			log.Warningf("reset: %v", err)
		}
	}
	time.Sleep(io.settle)
}

func (io *IO) Close() {
	io.Reset()
	for _, l := range io.lines {
		_ = l.SetValue(0)
		_ = l.Reconfigure(gpiocdev.AsInput)
		_ = l.Close()
	}
	if err := io.board.Halt(); err != nil {
		log.Warningf("halting board: %v", err)
	}
	if io.chip != nil {
		_ = io.chip.Close()
	}
}
