package controller

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrBusy = errors.New("a pattern is already playing")

type UnknownPatternError struct {
	Name string
}

func (err UnknownPatternError) Error() string {
	return fmt.Sprintf("no such pattern %s", err.Name)
}

// CommandError reports a control line that could not be understood.
type CommandError struct {
	Line   string
	Reason string
}

func (err CommandError) Error() string {
	if len(err.Line) == 0 {
		err.Line = "<empty>"
	}
	return fmt.Sprintf("bad command %q: %s", err.Line, err.Reason)
}
