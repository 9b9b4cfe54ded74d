package controller

import (
	"context"
	"sort"
	"time"

	"github.com/Seann-Moser/cobot/pkg/io"
)

// Step maps leg names to target angles. Legs missing from a step stay put.
type Step map[string]uint32

type Pattern struct {
	Name  string
	Steps []Step
}

func all(angle uint32) Step {
	return Pose{angle, angle, angle, angle}.step()
}

func pose(rightBack, leftBack, rightFront, leftFront uint32) Step {
	return Pose{rightBack, leftBack, rightFront, leftFront}.step()
}

var (
	Walk = Pattern{
		Name: "walk",
		Steps: []Step{
			pose(45, 90, 45, 90),   // lift right legs
			pose(135, 90, 135, 90), // right legs forward
			pose(90, 45, 90, 45),   // right legs down, lift left
			pose(90, 135, 90, 135), // left legs forward
			all(io.CenterAngle),
		},
	}

	Wave = Pattern{
		Name:  "wave",
		Steps: waveSteps(10),
	}

	Demo = Pattern{
		Name: "demo",
		Steps: []Step{
			all(180),
			all(90),
			all(0),
			pose(45, 135, 135, 45),
			{RightBackLeg: 45, RightFrontLeg: 45},
			{LeftBackLeg: 135, LeftFrontLeg: 135},
			all(io.CenterAngle),
		},
	}

	Startup = Pattern{
		Name:  "startup",
		Steps: []Step{all(io.CenterAngle), all(0), all(180)},
	}

	patterns = map[string]Pattern{
		Walk.Name:    Walk,
		Wave.Name:    Wave,
		Demo.Name:    Demo,
		Startup.Name: Startup,
	}

	// ButtonCycle is the order short presses step through.
	ButtonCycle = []Pattern{Walk, Wave, Demo}
)

// waveSteps sweeps the right front leg up and back down, then centres.
func waveSteps(increment uint32) []Step {
	var steps []Step
	for a := uint32(0); a <= 180; a += increment {
		steps = append(steps, Step{RightFrontLeg: a})
	}
	for a := int(180); a >= 0; a -= int(increment) {
		steps = append(steps, Step{RightFrontLeg: uint32(a)})
	}
	return append(steps, all(io.CenterAngle))
}

func PatternByName(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return Pattern{}, UnknownPatternError{Name: name}
	}
	return p, nil
}

func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for k := range patterns {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Play applies each step of p, pausing delay after every step. Only one
// pattern plays at a time; a second caller gets ErrBusy.
func (c *Controller) Play(ctx context.Context, p Pattern, delay time.Duration) error {
	if !c.playMu.TryLock() {
		return ErrBusy
	}
	defer c.playMu.Unlock()
	return c.play(ctx, p, delay)
}

// play runs p with playMu already held.
func (c *Controller) play(ctx context.Context, p Pattern, delay time.Duration) error {
	log.Infof("starting %s pattern (%d steps)", p.Name, len(p.Steps))
	c.setPattern(p.Name)
	c.statusLED(1)
	defer func() {
		c.setPattern("")
		c.statusLED(0)
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C
	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.move(s); err != nil {
			return err
		}
		log.Debugf("%s: step %d/%d", p.Name, i+1, len(p.Steps))

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (c *Controller) WalkForward(ctx context.Context, delay time.Duration) error {
	return c.Play(ctx, Walk, delay)
}

func (c *Controller) Wave(ctx context.Context, delay time.Duration) error {
	return c.Play(ctx, Wave, delay)
}

func (c *Controller) Demo(ctx context.Context, delay time.Duration) error {
	return c.Play(ctx, Demo, delay)
}

func (c *Controller) statusLED(state int) {
	if err := c.Servos.SetPinState(c.Configuration.StatusLED, state); err != nil {
		log.Warningf("status led: %v", err)
	}
}
