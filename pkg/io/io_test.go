package io

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/warthog618/go-gpiocdev"
)

func TestNewBoard(t *testing.T) {
	Convey("mock board uses the configured resolution", t, func() {
		b, err := NewBoard(Config{Board: BoardMock, Resolution: 4096})
		So(err, ShouldBeNil)
		So(b.MaxDuty(), ShouldEqual, uint32(4096))
	})

	Convey("mock board defaults to 10 bits", t, func() {
		b, err := NewBoard(Config{Board: BoardMock})
		So(err, ShouldBeNil)
		So(b.MaxDuty(), ShouldEqual, uint32(1024))
	})

	Convey("unknown boards are rejected", t, func() {
		_, err := NewBoard(Config{Board: "esp32"})
		So(err, ShouldResemble, UnknownBoardError{Name: "esp32"})
		So(err.Error(), ShouldContainSubstring, "esp32")
	})

	Convey("New without a gpio chip only opens the board", t, func() {
		io, err := New(Config{Board: BoardMock})
		So(err, ShouldBeNil)
		So(io.chip, ShouldBeNil)
		So(io.MaxDuty(), ShouldEqual, uint32(1024))
	})
}

func TestSetServoAngle(t *testing.T) {
	board := NewMockBoard(1024)
	io := NewWithBoard(board)

	Convey("angles are converted and written", t, func() {
		duty, err := io.SetServoAngle(2, 180)
		So(err, ShouldBeNil)
		So(duty, ShouldEqual, uint32(128))
		d, ok := board.Duty(2)
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, uint32(128))
		So(io.Angle(2), ShouldEqual, uint32(180))
		So(io.Duty(2), ShouldEqual, uint32(128))

		Convey("out of range angles are clamped before recording", func() {
			duty, err := io.SetServoAngle(2, 250)
			So(err, ShouldBeNil)
			So(duty, ShouldEqual, uint32(128))
			So(io.Angle(2), ShouldEqual, uint32(180))
		})
	})

	Convey("negative channels are ignored", t, func() {
		before := len(board.Writes())
		duty, err := io.SetServoAngle(-1, 45)
		So(err, ShouldBeNil)
		So(duty, ShouldEqual, uint32(0))
		So(board.Writes(), ShouldHaveLength, before)
	})

	Convey("unknown channels report centre", t, func() {
		So(io.Angle(9), ShouldEqual, CenterAngle)
		So(io.Duty(9), ShouldEqual, uint32(76))
	})

	Convey("board failures are wrapped and not recorded", t, func() {
		failing := NewMockBoard(1024)
		failing.Fail = errors.New("bus error")
		fio := NewWithBoard(failing)
		_, err := fio.SetServoAngle(0, 10)
		So(err, ShouldNotBeNil)
		So(errors.Cause(err), ShouldEqual, failing.Fail)
		So(fio.Channels(), ShouldBeEmpty)
	})
}

func TestSetDuty(t *testing.T) {
	Convey("raw duties are clamped and mapped back to an angle", t, func() {
		board := NewMockBoard(1024)
		io := NewWithBoard(board)
		So(io.SetDuty(1, 5000), ShouldBeNil)
		d, _ := board.Duty(1)
		So(d, ShouldEqual, uint32(1024))
		So(io.Angle(1), ShouldEqual, uint32(180))

		So(io.SetDuty(1, 76), ShouldBeNil)
		So(io.Angle(1), ShouldEqual, uint32(88))
	})
}

func TestOffTicks(t *testing.T) {
	Convey("pca9685 off counts stay inside the 12-bit register", t, func() {
		So(offTicks(0), ShouldEqual, uint32(0))
		So(offTicks(307), ShouldEqual, uint32(307))
		So(offTicks(4095), ShouldEqual, uint32(4095))
		So(offTicks(4096), ShouldEqual, uint32(4095))
		So(offTicks(5000), ShouldEqual, uint32(4095))
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("i2c boards ignore the resolution", t, func() {
		So(Config{Board: BoardPCA9685}.Validate(), ShouldBeNil)
		So(Config{Board: BoardGobot}.Validate(), ShouldBeNil)
	})

	Convey("mock and rpio boards need a resolution", t, func() {
		So(Config{Board: BoardMock}.Validate(), ShouldNotBeNil)
		So(Config{Board: BoardRPIO}.Validate(), ShouldNotBeNil)
		So(Config{Board: BoardMock, Resolution: 16}.Validate(), ShouldBeNil)
	})

	Convey("rpio resolutions must keep the clock in range", t, func() {
		So(Config{Board: BoardRPIO, Resolution: 93}.Validate(), ShouldNotBeNil)
		So(Config{Board: BoardRPIO, Resolution: 94}.Validate(), ShouldBeNil)
		So(Config{Board: BoardRPIO, Resolution: 1024}.Validate(), ShouldBeNil)
		So(Config{Board: BoardRPIO, Resolution: 384000}.Validate(), ShouldBeNil)
		So(Config{Board: BoardRPIO, Resolution: 384001}.Validate(), ShouldNotBeNil)
	})

	Convey("unknown boards are reported", t, func() {
		So(Config{Board: "esp32"}.Validate(), ShouldResemble, UnknownBoardError{Name: "esp32"})
	})
}

func TestResetAndClose(t *testing.T) {
	Convey("reset centres every driven channel", t, func() {
		board := NewMockBoard(1024)
		io := NewWithBoard(board)
		_, _ = io.SetServoAngle(3, 0)
		_, _ = io.SetServoAngle(1, 180)
		So(io.Channels(), ShouldResemble, []int{1, 3})

		io.Reset()
		So(io.Angle(1), ShouldEqual, CenterAngle)
		So(io.Angle(3), ShouldEqual, CenterAngle)

		Convey("close also halts the board", func() {
			io.Close()
			So(board.Halted(), ShouldBeTrue)
		})
	})
}

func TestSetPinStateWithoutChip(t *testing.T) {
	Convey("status line writes are skipped without a chip", t, func() {
		io := NewWithBoard(NewMockBoard(0))
		So(io.SetPinState(23, 1), ShouldBeNil)
		_, err := io.WatchButton(26)
		So(err, ShouldNotBeNil)
	})
}

func TestButtonEvents(t *testing.T) {
	falling := func(ts time.Duration) gpiocdev.LineEvent {
		return gpiocdev.LineEvent{Type: gpiocdev.LineEventFallingEdge, Timestamp: ts}
	}
	rising := func(ts time.Duration) gpiocdev.LineEvent {
		return gpiocdev.LineEvent{Type: gpiocdev.LineEventRisingEdge, Timestamp: ts}
	}

	Convey("a press is reported on release with its duration", t, func() {
		b := newButton(26)
		b.eventHandler(falling(time.Second))
		b.eventHandler(rising(time.Second + 300*time.Millisecond))
		So(b.Event, ShouldHaveLength, 1)
		evt := <-b.Event
		So(evt.Offset, ShouldEqual, 26)
		So(evt.Duration, ShouldEqual, 300*time.Millisecond)
		So(evt.Long(), ShouldBeFalse)
	})

	Convey("bounces shorter than the debounce window are dropped", t, func() {
		b := newButton(26)
		b.eventHandler(falling(time.Second))
		b.eventHandler(rising(time.Second + 2*time.Millisecond))
		So(b.Event, ShouldBeEmpty)
	})

	Convey("long presses are flagged", t, func() {
		b := newButton(25)
		b.eventHandler(falling(0))
		b.eventHandler(falling(time.Second))
		b.eventHandler(rising(3 * time.Second))
		evt := <-b.Event
		So(evt.Duration, ShouldEqual, 3*time.Second)
		So(evt.Long(), ShouldBeTrue)
	})

	Convey("a release without a press is ignored", t, func() {
		b := newButton(25)
		b.eventHandler(rising(time.Second))
		So(b.Event, ShouldBeEmpty)
	})
}
