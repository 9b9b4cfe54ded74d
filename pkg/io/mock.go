package io

import (
	"sync"
)

const defaultMockResolution = 1024

type Write struct {
	Channel int
	Duty    uint32
}

// MockBoard records every duty written to it. It is used for dry runs and
// tests.
type MockBoard struct {
	mu     sync.Mutex
	max    uint32
	writes []Write
	duties map[int]uint32
	halted bool

	// Fail, when set, is returned by SetDuty.
	Fail error
}

func NewMockBoard(maxDuty uint32) *MockBoard {
	if maxDuty == 0 {
		maxDuty = defaultMockResolution
	}
	return &MockBoard{max: maxDuty, duties: make(map[int]uint32)}
}

func (b *MockBoard) MaxDuty() uint32 {
	return b.max
}

func (b *MockBoard) SetDuty(channel int, duty uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail != nil {
		return b.Fail
	}
	b.writes = append(b.writes, Write{Channel: channel, Duty: duty})
	b.duties[channel] = duty
	return nil
}

func (b *MockBoard) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.halted = true
	return nil
}

// Duty returns the last duty written to channel.
func (b *MockBoard) Duty(channel int) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.duties[channel]
	return d, ok
}

// Writes returns a copy of the write history.
func (b *MockBoard) Writes() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Write(nil), b.writes...)
}

func (b *MockBoard) Halted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.halted
}
