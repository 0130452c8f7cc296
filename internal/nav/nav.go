// Package nav is the Orbit/Atmosphere navigation state machine.
//
//	Orbit --Snap--> Transitioning --Resolve(after dwell)--> Atmosphere
//	Atmosphere --ReturnToOrbit--> Orbit
//
// There is no path from Atmosphere back into Transitioning. The dwell runs as a
// tea.Cmd; every scheduled delivery carries a token and only the current token
// can complete a transition.
package nav

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the navigation state.
type State int

const (
	Orbit State = iota
	Transitioning
	Atmosphere
)

func (s State) String() string {
	switch s {
	case Orbit:
		return "orbit"
	case Transitioning:
		return "transitioning"
	case Atmosphere:
		return "atmosphere"
	}
	return "unknown"
}

// Dwell is how long the gravity-snap overlay holds before Atmosphere.
const Dwell = 3000 * time.Millisecond

// DwellElapsedMsg is delivered when a dwell timer fires.
type DwellElapsedMsg struct {
	Token uint64
	At    time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithDwell overrides the dwell duration.
func WithDwell(d time.Duration) Option {
	return func(c *Controller) { c.dwell = d }
}

// Controller owns navigation state. It is mutated only from the UI update
// loop; the commands it returns touch nothing but their own timer.
type Controller struct {
	state State
	outer bool
	dwell time.Duration

	token    uint64
	started  time.Time
	deadline time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

// New returns a controller in Orbit.
func New(opts ...Option) *Controller {
	c := &Controller{dwell: Dwell}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State { return c.state }

// InputBlocked reports whether the gravity-snap overlay occludes input.
func (c *Controller) InputBlocked() bool { return c.state == Transitioning }

// Token is the current dwell token.
func (c *Controller) Token() uint64 { return c.token }

// Deadline is when the current dwell may resolve. Zero outside Transitioning.
func (c *Controller) Deadline() time.Time {
	if c.state != Transitioning {
		return time.Time{}
	}
	return c.deadline
}

// Started is when the most recent snap began.
func (c *Controller) Started() time.Time { return c.started }

// Snap starts the gravity-snap transition. Only valid from Orbit; repeated
// triggers during a scroll burst return nil.
func (c *Controller) Snap(ctx context.Context, now time.Time) tea.Cmd {
	if c.state != Orbit {
		return nil
	}
	c.state = Transitioning
	c.token++
	c.started = now
	c.deadline = now.Add(c.dwell)
	c.ctx, c.cancel = context.WithCancel(ctx)
	return waitFor(c.ctx, c.dwell, c.token)
}

// Resolve completes the transition when msg carries the current token and
// now has reached the deadline. It reports whether Atmosphere was entered;
// the caller resets Atmosphere's scroll position on true. An early delivery
// reschedules itself for the remainder.
func (c *Controller) Resolve(msg DwellElapsedMsg, now time.Time) (bool, tea.Cmd) {
	if c.state != Transitioning || msg.Token != c.token {
		return false, nil
	}
	if now.Before(c.deadline) {
		return false, waitFor(c.ctx, c.deadline.Sub(now), c.token)
	}
	c.state = Atmosphere
	c.release()
	return true, nil
}

// ReturnToOrbit leaves Atmosphere immediately. Ignored in other states.
func (c *Controller) ReturnToOrbit() bool {
	if c.state != Atmosphere {
		return false
	}
	c.state = Orbit
	return true
}

// Teardown cancels a pending dwell. Any delivery already in flight becomes
// stale, and an interrupted transition falls back to Orbit.
func (c *Controller) Teardown() {
	c.release()
	c.token++
	if c.state == Transitioning {
		c.state = Orbit
	}
}

// ToggleOuter flips the outer-orbit inversion. Refused while the overlay
// occludes input.
func (c *Controller) ToggleOuter() bool {
	if c.InputBlocked() {
		return false
	}
	c.outer = !c.outer
	return true
}

func (c *Controller) Outer() bool { return c.outer }

// Progress is the dwell fraction in [0,1]: 0 in Orbit, 1 in Atmosphere.
func (c *Controller) Progress(now time.Time) float64 {
	switch c.state {
	case Atmosphere:
		return 1
	case Transitioning:
		if c.dwell <= 0 {
			return 1
		}
		p := float64(now.Sub(c.started)) / float64(c.dwell)
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	}
	return 0
}

func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func waitFor(ctx context.Context, d time.Duration, token uint64) tea.Cmd {
	return func() tea.Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case at := <-t.C:
			return DwellElapsedMsg{Token: token, At: at}
		case <-ctx.Done():
			return nil
		}
	}
}
