package logger

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSetup(t *testing.T) {
	Convey("messages below the level are dropped", t, func() {
		var buf bytes.Buffer
		So(Setup(&buf, "info"), ShouldBeNil)
		l := Get("test")
		l.Info("legs centred")
		l.Debug("duty 76")
		So(buf.String(), ShouldContainSubstring, "legs centred")
		So(buf.String(), ShouldContainSubstring, "cobot.test")
		So(buf.String(), ShouldNotContainSubstring, "duty 76")
	})

	Convey("unknown levels are rejected", t, func() {
		So(Setup(nil, "loud"), ShouldNotBeNil)
	})
}
