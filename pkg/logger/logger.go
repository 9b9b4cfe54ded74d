package logger

import (
	"io"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const module = "cobot"

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{module} %{level:.4s}%{color:reset} %{message}`,
)

// Setup installs the shared backend writing to w at the named level
// ("debug", "info", "warning", ...).
func Setup(w io.Writer, level string) error {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := logging.LogLevel(level)
	if err != nil {
		return errors.Wrapf(err, "bad log level %q", level)
	}
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}

// Get returns the logger for a sub-system, e.g. Get("io").
func Get(name string) *logging.Logger {
	return logging.MustGetLogger(module + "." + name)
}
