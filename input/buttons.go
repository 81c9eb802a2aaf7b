// Package input turns pointer, touch and keyboard events into the seven
// logical buttons consumed by the engine once per frame.
package input

// Button identifies one of the seven logical controls. The order matches the
// argument order of the engine's tick function.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonUp
	ButtonDown
	ButtonRight
	ButtonLeft
	ButtonHold

	NumButtons = 7
)

// RepeatDelay is the number of held frames after which a directional button
// starts firing on every frame.
const RepeatDelay = 20

var buttonNames = [NumButtons]string{
	ButtonA:     "A",
	ButtonB:     "B",
	ButtonUp:    "Up",
	ButtonDown:  "Down",
	ButtonRight: "Right",
	ButtonLeft:  "Left",
	ButtonHold:  "Hold",
}

func (b Button) String() string {
	if !b.Valid() {
		return "Unknown"
	}
	return buttonNames[b]
}

// Valid reports whether b names one of the seven buttons.
func (b Button) Valid() bool {
	return b >= 0 && b < NumButtons
}

// Buttons lists every button in engine order.
func Buttons() [NumButtons]Button {
	return [NumButtons]Button{ButtonA, ButtonB, ButtonUp, ButtonDown, ButtonRight, ButtonLeft, ButtonHold}
}

// Policy selects how a raw press counter resolves into a logical signal.
type Policy int

const (
	// PolicyTap fires only on the frame the press is first seen.
	PolicyTap Policy = iota
	// PolicyRepeat fires on the first frame, stays silent until the counter
	// passes RepeatDelay, then fires every frame while held.
	PolicyRepeat
)

// policies keeps Up on the repeat rule together with the other d-pad arms.
var policies = [NumButtons]Policy{
	ButtonA:     PolicyTap,
	ButtonB:     PolicyTap,
	ButtonUp:    PolicyRepeat,
	ButtonDown:  PolicyRepeat,
	ButtonRight: PolicyRepeat,
	ButtonLeft:  PolicyRepeat,
	ButtonHold:  PolicyTap,
}

// PolicyFor returns the resolution policy of b.
func PolicyFor(b Button) Policy {
	return policies[b]
}

// Resolve applies the policy to a raw counter value.
func (p Policy) Resolve(raw int) bool {
	switch p {
	case PolicyRepeat:
		return raw == 1 || raw > RepeatDelay
	default:
		return raw == 1
	}
}

// RawState holds the per-button press counters: 0 released, 1 pressed this
// frame, greater than 1 held for that many frames.
type RawState [NumButtons]int

// Pressed reports whether the physical control behind b is currently down.
func (r RawState) Pressed(b Button) bool {
	return r[b] > 0
}

// Controls is the resolved logical button vector for one frame.
type Controls [NumButtons]bool

// Pressed reports whether b fires this frame.
func (c Controls) Pressed(b Button) bool {
	return c[b]
}

// Any reports whether at least one button fires this frame.
func (c Controls) Any() bool {
	for _, v := range c {
		if v {
			return true
		}
	}
	return false
}
