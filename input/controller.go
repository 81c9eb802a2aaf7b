package input

import "fmt"

// EventKind enumerates the device events the controller accepts.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerUp
	TouchStart
	TouchEnd
	KeyDown
	KeyUp
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "PointerDown"
	case PointerUp:
		return "PointerUp"
	case TouchStart:
		return "TouchStart"
	case TouchEnd:
		return "TouchEnd"
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single device event. X and Y are display-space coordinates
// relative to the canvas origin and are only read for PointerDown and
// TouchStart; Key is only read for KeyDown and KeyUp.
type Event struct {
	Kind EventKind
	X, Y float64
	Key  KeyCode
}

// Controller owns the raw press counters. Event producers call ApplyEvent;
// the frame loop calls ResolveFrame exactly once per frame. A Controller is
// not safe for concurrent use; hosts with asynchronous producers must funnel
// events onto the frame goroutine.
type Controller struct {
	raw    RawState
	hits   *HitTester
	keymap *KeyMap
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithHitTester replaces the default on-screen layout.
func WithHitTester(h *HitTester) ControllerOption {
	return func(c *Controller) { c.hits = h }
}

// WithKeyMap replaces the default keyboard table.
func WithKeyMap(km *KeyMap) ControllerOption {
	return func(c *Controller) { c.keymap = km }
}

// NewController creates a controller with every counter released.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		hits:   NewHitTester(),
		keymap: DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HitTester returns the tester used for pointer events.
func (c *Controller) HitTester() *HitTester {
	return c.hits
}

// ApplyEvent folds a device event into the raw counters. Unmatched pointer
// positions and unmapped keys are ignored.
func (c *Controller) ApplyEvent(ev Event) {
	switch ev.Kind {
	case PointerDown, TouchStart:
		if b, ok := c.hits.Hit(ev.X, ev.Y); ok {
			c.press(b)
		}
	case PointerUp, TouchEnd:
		// A single release gesture clears every button.
		c.Reset()
	case KeyDown:
		if b, ok := c.keymap.Press(ev.Key); ok {
			c.press(b)
		}
	case KeyUp:
		if b, ok := c.keymap.Release(ev.Key); ok {
			c.raw[b] = 0
		}
	}
}

// press starts a new press unless the button is already down.
func (c *Controller) press(b Button) {
	if c.raw[b] == 0 {
		c.raw[b] = 1
	}
}

// ResolveFrame computes this frame's logical controls from the current
// counters, then advances every held counter by one.
func (c *Controller) ResolveFrame() Controls {
	var out Controls
	for b, n := range c.raw {
		out[b] = policies[b].Resolve(n)
	}
	for b := range c.raw {
		if c.raw[b] > 0 {
			c.raw[b]++
		}
	}
	return out
}

// Reset releases every button.
func (c *Controller) Reset() {
	c.raw = RawState{}
}

// Raw returns a copy of the current counters.
func (c *Controller) Raw() RawState {
	return c.raw
}
