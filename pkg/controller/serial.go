package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Command is one parsed line of the serial control protocol.
type Command struct {
	Name    string
	Args    []uint32
	Pattern string
}

// argument counts per command; -1 means a pattern name.
var commandArgs = map[string][]int{
	"center":  {0},
	"state":   {0},
	"all":     {1},
	"right":   {2},
	"left":    {2},
	"set":     {4},
	"duty":    {2},
	"convert": {1, 2},
	"pattern": {-1},
}

func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, CommandError{Line: line, Reason: "empty"}
	}
	cmd := Command{Name: fields[0]}
	counts, ok := commandArgs[cmd.Name]
	if !ok {
		return Command{}, CommandError{Line: line, Reason: "unknown command"}
	}
	args := fields[1:]
	if counts[0] < 0 {
		if len(args) != 1 {
			return Command{}, CommandError{Line: line, Reason: "expected a pattern name"}
		}
		cmd.Pattern = args[0]
		return cmd, nil
	}
	if !containsInt(counts, len(args)) {
		return Command{}, CommandError{Line: line, Reason: fmt.Sprintf("expected %v arguments, got %d", counts, len(args))}
	}
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return Command{}, CommandError{Line: line, Reason: fmt.Sprintf("bad number %q", a)}
		}
		cmd.Args = append(cmd.Args, uint32(v))
	}
	return cmd, nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Execute runs cmd and returns the text of the reply.
func (c *Controller) Execute(ctx context.Context, cmd Command) (string, error) {
	var err error
	switch cmd.Name {
	case "center":
		err = c.CenterAllServos()
	case "all":
		err = c.SetAllServosAngle(cmd.Args[0])
	case "right":
		err = c.SetRightServos(cmd.Args[0], cmd.Args[1])
	case "left":
		err = c.SetLeftServos(cmd.Args[0], cmd.Args[1])
	case "set":
		err = c.SetServoAngles(cmd.Args[0], cmd.Args[1], cmd.Args[2], cmd.Args[3])
	case "duty":
		w, err := c.SetDuty(int(cmd.Args[0]), cmd.Args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("channel=%d duty=%d angle=%d", w.Channel, w.Duty, w.Angle), nil
	case "pattern":
		var p Pattern
		if p, err = PatternByName(cmd.Pattern); err == nil {
			err = c.Play(ctx, p, c.Configuration.StepDelay)
		}
	case "convert":
		maxDuty := c.Servos.MaxDuty()
		if len(cmd.Args) == 2 {
			maxDuty = cmd.Args[1]
		}
		conv := Convert(cmd.Args[0], maxDuty)
		return fmt.Sprintf("pulse=%d duty=%d/%d roundtrip=%d", conv.PulseUS, conv.Duty, conv.MaxDuty, conv.RoundTrip), nil
	case "state":
	default:
		return "", CommandError{Line: cmd.Name, Reason: "unknown command"}
	}
	if err != nil {
		return "", err
	}
	return formatState(c.State()), nil
}

func formatState(st State) string {
	parts := make([]string, 0, len(st.Legs))
	for _, leg := range st.Legs {
		parts = append(parts, fmt.Sprintf("%s=%d", leg.Name, leg.Angle))
	}
	return strings.Join(parts, " ")
}

// Listen reads commands line by line from rw and answers each with a line
// starting with "ok" or "err". It returns when rw is exhausted or ctx is
// done.
func (c *Controller) Listen(ctx context.Context, rw io.ReadWriter) error {
	scanner := bufio.NewScanner(rw)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply := "ok "
		cmd, err := ParseCommand(line)
		if err == nil {
			var out string
			out, err = c.Execute(ctx, cmd)
			reply += out
		}
		if err != nil {
			log.Warningf("serial: %v", err)
			reply = "err " + err.Error()
		}
		if _, err := fmt.Fprintln(rw, reply); err != nil {
			return errors.Wrap(err, "writing reply")
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "reading commands")
	}
	return nil
}

// ListenSerial opens the configured serial port and serves commands on it
// until ctx is done.
func (c *Controller) ListenSerial(ctx context.Context) error {
	cfg := c.Configuration.Serial
	port, err := serial.OpenPort(&serial.Config{
		Name: cfg.Port,
		Baud: cfg.Baud,
	})
	if err != nil {
		return errors.Wrapf(err, "opening serial port %s", cfg.Port)
	}
	go func() {
		<-ctx.Done()
		_ = port.Close()
	}()
	log.Infof("listening for commands on %s at %d baud", cfg.Port, cfg.Baud)
	return c.Listen(ctx, port)
}
