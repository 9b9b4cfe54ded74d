package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Seann-Moser/cobot/pkg/controller"
	"github.com/Seann-Moser/cobot/pkg/io"
	. "github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cobot.yaml")

	Convey("init writes the effective configuration", t, func() {
		_, err := execute("config", "init", "--config", path, "--board", io.BoardPCA9685)
		So(err, ShouldBeNil)
		cfg, err := controller.LoadConfiguration(path)
		So(err, ShouldBeNil)
		So(cfg.IO.Board, ShouldEqual, io.BoardPCA9685)
		So(cfg.Legs, ShouldResemble, controller.DefaultConfiguration().Legs)
	})

	Convey("an existing file is kept without --force", t, func() {
		_, err := execute("config", "init", "--config", path, "--board", io.BoardGobot)
		So(err, ShouldNotBeNil)
		cfg, _ := controller.LoadConfiguration(path)
		So(cfg.IO.Board, ShouldEqual, io.BoardPCA9685)
	})

	Convey("--force replaces it", t, func() {
		_, err := execute("config", "init", "--config", path, "--board", io.BoardGobot, "--force")
		So(err, ShouldBeNil)
		cfg, _ := controller.LoadConfiguration(path)
		So(cfg.IO.Board, ShouldEqual, io.BoardGobot)
	})

	Convey("show prints the merged configuration", t, func() {
		out, err := execute("config", "show", "--config", path, "--board", io.BoardMock)
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "board: mock")
		So(out, ShouldContainSubstring, "rightBack: 0")
	})

	Convey("an invalid board override is refused", t, func() {
		_, err := execute("config", "show", "--config", path, "--board", "esp32")
		So(err, ShouldNotBeNil)
	})
}
