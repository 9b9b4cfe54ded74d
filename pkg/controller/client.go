package controller

import (
	"context"
	"sync"

	"github.com/Seann-Moser/cobot/pkg/io"
	"github.com/Seann-Moser/cobot/pkg/logger"
	"github.com/Seann-Moser/cobot/pkg/servo"
)

var log = logger.Get("controller")

const (
	RightBackLeg  = "right_back_leg"
	LeftBackLeg   = "left_back_leg"
	RightFrontLeg = "right_front_leg"
	LeftFrontLeg  = "left_front_leg"
)

type Leg struct {
	Name    string
	Channel int
}

// Pose holds one angle per leg.
type Pose struct {
	RightBack  uint32 `json:"rightBack"`
	LeftBack   uint32 `json:"leftBack"`
	RightFront uint32 `json:"rightFront"`
	LeftFront  uint32 `json:"leftFront"`
}

func (p Pose) step() Step {
	return Step{
		RightBackLeg:  p.RightBack,
		LeftBackLeg:   p.LeftBack,
		RightFrontLeg: p.RightFront,
		LeftFrontLeg:  p.LeftFront,
	}
}

type LegState struct {
	Name    string `json:"name"`
	Channel int    `json:"channel"`
	Angle   uint32 `json:"angle"`
	PulseUS uint32 `json:"pulseUs"`
	Duty    uint32 `json:"duty"`
}

// DutyWrite reports a raw duty write.
type DutyWrite struct {
	Channel int    `json:"channel"`
	Duty    uint32 `json:"duty"`
	Angle   uint32 `json:"angle"`
}

type State struct {
	MaxDuty uint32     `json:"maxDuty"`
	Pattern string     `json:"pattern,omitempty"`
	Legs    []LegState `json:"legs"`
}

// Controller drives the four legs of the robot.
type Controller struct {
	Servos        *io.IO
	Configuration Configuration

	legs    []Leg
	mu      sync.Mutex
	playMu  sync.Mutex
	pattern string

	subMu       sync.Mutex
	subscribers map[chan State]struct{}
}

func New(cfg Configuration, servos *io.IO) *Controller {
	return &Controller{
		Servos:        servos,
		Configuration: cfg,
		legs:          cfg.Legs.legs(),
		subscribers:   make(map[chan State]struct{}),
	}
}

// SetAllServosAngle moves every leg to angle.
func (c *Controller) SetAllServosAngle(angle uint32) error {
	if err := c.move(all(angle)); err != nil {
		return err
	}
	log.Infof("all servos set to %d degrees", angle)
	return nil
}

// SetServoAngles moves each leg to its own angle.
func (c *Controller) SetServoAngles(rightBack, leftBack, rightFront, leftFront uint32) error {
	return c.SetPose(Pose{
		RightBack:  rightBack,
		LeftBack:   leftBack,
		RightFront: rightFront,
		LeftFront:  leftFront,
	})
}

func (c *Controller) SetPose(p Pose) error {
	if err := c.move(p.step()); err != nil {
		return err
	}
	log.Debugf("legs set to %+v", p)
	return nil
}

// SetRightServos moves only the legs on the right side.
func (c *Controller) SetRightServos(backAngle, frontAngle uint32) error {
	return c.move(Step{RightBackLeg: backAngle, RightFrontLeg: frontAngle})
}

// SetLeftServos moves only the legs on the left side.
func (c *Controller) SetLeftServos(backAngle, frontAngle uint32) error {
	return c.move(Step{LeftBackLeg: backAngle, LeftFrontLeg: frontAngle})
}

// SetDuty writes a raw duty value to channel, skipping the angle
// conversion. It returns the duty actually written and its angle.
func (c *Controller) SetDuty(channel int, duty uint32) (DutyWrite, error) {
	c.mu.Lock()
	err := c.Servos.SetDuty(channel, duty)
	w := DutyWrite{Channel: channel, Duty: c.Servos.Duty(channel), Angle: c.Servos.Angle(channel)}
	c.mu.Unlock()
	if err != nil {
		return DutyWrite{}, err
	}
	log.Infof("channel %d set to duty %d (%d degrees)", w.Channel, w.Duty, w.Angle)
	c.broadcast(c.State())
	return w, nil
}

func (c *Controller) CenterAllServos() error {
	return c.SetAllServosAngle(io.CenterAngle)
}

// MaxDuties reports the timer resolution behind each leg.
func (c *Controller) MaxDuties() map[string]uint32 {
	out := make(map[string]uint32, len(c.legs))
	for _, leg := range c.legs {
		out[leg.Name] = c.Servos.MaxDuty()
	}
	return out
}

func (c *Controller) LogMaxDuties() {
	d := c.MaxDuties()
	log.Infof("max duty values - %s: %d, %s: %d, %s: %d, %s: %d",
		RightBackLeg, d[RightBackLeg], LeftBackLeg, d[LeftBackLeg],
		RightFrontLeg, d[RightFrontLeg], LeftFrontLeg, d[LeftFrontLeg])
}

// move computes the duty of every leg named in s concurrently, then writes
// them one at a time in leg order.
func (c *Controller) move(s Step) error {
	var ops []servo.Operation
	for _, leg := range c.legs {
		if angle, ok := s[leg.Name]; ok {
			ops = append(ops, servo.Operation{Name: leg.Name, Angle: angle, MaxDuty: c.Servos.MaxDuty()})
		}
	}
	duties := calculate(ops)

	c.mu.Lock()
	for _, leg := range c.legs {
		angle, ok := s[leg.Name]
		if !ok {
			continue
		}
		if err := c.Servos.ApplyDuty(leg.Channel, angle, duties[leg.Name]); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	c.broadcast(c.State())
	return nil
}

func calculate(ops []servo.Operation) map[string]uint32 {
	type result struct {
		name string
		duty uint32
	}
	results := make(chan result, len(ops))
	wg := sync.WaitGroup{}
	for _, op := range ops {
		wg.Add(1)
		go func(op servo.Operation) {
			defer wg.Done()
			duty := op.Duty()
			log.Debugf("calculated %s duty: %d for angle: %d", op.Name, duty, op.Angle)
			results <- result{name: op.Name, duty: duty}
		}(op)
	}
	wg.Wait()
	close(results)

	duties := make(map[string]uint32, len(ops))
	for r := range results {
		duties[r.name] = r.duty
	}
	return duties
}

// State returns the current angle and duty of each leg.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{MaxDuty: c.Servos.MaxDuty(), Pattern: c.pattern}
	for _, leg := range c.legs {
		angle := c.Servos.Angle(leg.Channel)
		st.Legs = append(st.Legs, LegState{
			Name:    leg.Name,
			Channel: leg.Channel,
			Angle:   angle,
			PulseUS: servo.AngleToPulse(angle),
			Duty:    c.Servos.Duty(leg.Channel),
		})
	}
	return st
}

// Subscribe returns a channel receiving the state after every move. Slow
// readers only see the latest state. Call the returned func to stop.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.subMu.Lock()
	c.subscribers[ch] = struct{}{}
	c.subMu.Unlock()
	return ch, func() {
		c.subMu.Lock()
		delete(c.subscribers, ch)
		c.subMu.Unlock()
	}
}

func (c *Controller) broadcast(st State) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

func (c *Controller) setPattern(name string) {
	c.mu.Lock()
	c.pattern = name
	c.mu.Unlock()
}

// Run plays the startup sequence and then reacts to the cycle button: a
// short press plays the next pattern, a long press centres every leg.
func (c *Controller) Run(ctx context.Context) error {
	c.LogMaxDuties()
	if err := c.Play(ctx, Startup, c.Configuration.StepDelay); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if c.Configuration.CycleButton < 0 {
		<-ctx.Done()
		return nil
	}
	button, err := c.Servos.WatchButton(c.Configuration.CycleButton)
	if err != nil {
		return err
	}
	next := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-button.Event:
			if evt.Long() {
				if err := c.CenterAllServos(); err != nil {
					log.Errorf("centering: %v", err)
				}
				continue
			}
			p := ButtonCycle[next%len(ButtonCycle)]
			next++
			log.Infof("button %d: playing %s", evt.Offset, p.Name)
			if err := c.Play(ctx, p, c.Configuration.StepDelay); err != nil && err != ErrBusy && ctx.Err() == nil {
				log.Errorf("playing %s: %v", p.Name, err)
			}
		}
	}
}

func (c *Controller) Close() {
	if c.Servos != nil {
		c.Servos.Close()
	}
}
