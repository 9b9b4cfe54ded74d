package controller

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/Seann-Moser/cobot/pkg/io"
	. "github.com/smartystreets/goconvey/convey"
)

const testYaml = `
io:
  board: mock
  resolution: 4096
legs:
  rightBack: 4
  leftBack: 5
  rightFront: 6
  leftFront: 7
statusLed: 23
stepDelay: 150ms
serial:
  port: /dev/ttyUSB0
`

func TestLoadConfiguration(t *testing.T) {
	dir := t.TempDir()

	Convey("a missing file gives the defaults", t, func() {
		cfg, err := LoadConfiguration(filepath.Join(dir, "missing.yaml"))
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, DefaultConfiguration())
	})

	Convey("yaml values override the defaults", t, func() {
		path := filepath.Join(dir, "cobot.yaml")
		So(ioutil.WriteFile(path, []byte(testYaml), 0644), ShouldBeNil)

		cfg, err := LoadConfiguration(path)
		So(err, ShouldBeNil)
		So(cfg.IO.Board, ShouldEqual, io.BoardMock)
		So(cfg.IO.Resolution, ShouldEqual, uint32(4096))
		So(cfg.IO.I2CBus, ShouldEqual, "I2C1")
		So(cfg.Legs, ShouldResemble, LegChannels{RightBack: 4, LeftBack: 5, RightFront: 6, LeftFront: 7})
		So(cfg.StatusLED, ShouldEqual, 23)
		So(cfg.CycleButton, ShouldEqual, -1)
		So(cfg.StepDelay, ShouldEqual, 150*time.Millisecond)
		So(cfg.Serial, ShouldResemble, SerialConfig{Port: "/dev/ttyUSB0", Baud: 115200})
	})

	Convey("broken yaml is reported", t, func() {
		path := filepath.Join(dir, "broken.yaml")
		So(ioutil.WriteFile(path, []byte("legs: [1, 2"), 0644), ShouldBeNil)
		_, err := LoadConfiguration(path)
		So(err, ShouldNotBeNil)
	})

	Convey("saved configurations load back unchanged", t, func() {
		cfg := DefaultConfiguration()
		cfg.IO.Board = io.BoardPCA9685
		cfg.StepDelay = time.Second
		cfg.Legs = LegChannels{RightBack: 15, LeftBack: 14, RightFront: 13, LeftFront: 12}
		path := filepath.Join(dir, "saved.yaml")
		So(cfg.Save(path), ShouldBeNil)

		loaded, err := LoadConfiguration(path)
		So(err, ShouldBeNil)
		So(loaded, ShouldResemble, cfg)
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cobot.yaml")
	t.Setenv("COBOT_ADDRESS", "127.0.0.1:9000")
	t.Setenv("COBOT_RESOLUTION", "65536")
	t.Setenv("COBOT_LEG_LEFT_FRONT", "8")

	Convey("the environment overrides the file", t, func() {
		So(ioutil.WriteFile(path, []byte(testYaml), 0644), ShouldBeNil)
		cfg, err := LoadConfiguration(path)
		So(err, ShouldBeNil)
		So(cfg.Address, ShouldEqual, "127.0.0.1:9000")
		So(cfg.IO.Resolution, ShouldEqual, uint32(65536))
		So(cfg.Legs.LeftFront, ShouldEqual, 8)
		So(cfg.Legs.LeftBack, ShouldEqual, 5)
	})
}

func TestValidate(t *testing.T) {
	Convey("legs must use distinct channels", t, func() {
		cfg := DefaultConfiguration()
		cfg.Legs.LeftFront = cfg.Legs.RightBack
		So(cfg.Validate(), ShouldNotBeNil)
	})

	Convey("negative channels are rejected", t, func() {
		cfg := DefaultConfiguration()
		cfg.Legs.LeftBack = -1
		So(cfg.Validate(), ShouldNotBeNil)
	})

	Convey("a zero resolution is rejected for the mock board", t, func() {
		cfg := DefaultConfiguration()
		cfg.IO.Resolution = 0
		So(cfg.Validate(), ShouldNotBeNil)
	})

	Convey("rpio resolutions outside the pwm clock range are rejected", t, func() {
		cfg := DefaultConfiguration()
		cfg.IO.Board = io.BoardRPIO
		cfg.IO.Resolution = 64
		So(cfg.Validate(), ShouldNotBeNil)
		cfg.IO.Resolution = 4096
		So(cfg.Validate(), ShouldBeNil)
	})

	Convey("unknown boards are rejected", t, func() {
		cfg := DefaultConfiguration()
		cfg.IO.Board = "arduino"
		So(cfg.Validate(), ShouldResemble, io.UnknownBoardError{Name: "arduino"})
	})

	Convey("the defaults are valid", t, func() {
		So(DefaultConfiguration().Validate(), ShouldBeNil)
	})
}
