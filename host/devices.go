package host

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/blockfall/input"
)

// keyCodes maps ebiten keys onto the shared key code table. Both shift keys
// report the same code.
var keyCodes = map[ebiten.Key]input.KeyCode{
	ebiten.KeyShiftLeft:  input.KeyShift,
	ebiten.KeyShiftRight: input.KeyShift,
	ebiten.KeySpace:      input.KeySpace,
	ebiten.KeyArrowLeft:  input.KeyArrowLeft,
	ebiten.KeyArrowUp:    input.KeyArrowUp,
	ebiten.KeyArrowRight: input.KeyArrowRight,
	ebiten.KeyArrowDown:  input.KeyArrowDown,
	ebiten.KeyX:          input.KeyX,
	ebiten.KeyZ:          input.KeyZ,
}

// KeyCode returns the shared key code for k.
func KeyCode(k ebiten.Key) (input.KeyCode, bool) {
	code, ok := keyCodes[k]
	return code, ok
}

// Point is a position in window coordinates.
type Point struct {
	X, Y int
}

// Devices reports the device edges seen since the previous tick.
type Devices interface {
	JustPressedKeys() []ebiten.Key
	JustReleasedKeys() []ebiten.Key
	// MouseJustPressed returns the cursor position of a new left press.
	MouseJustPressed() (Point, bool)
	MouseJustReleased() bool
	// TouchesJustStarted returns the positions of every active touch, oldest
	// first, when at least one touch began this tick. It returns nil when no
	// touch began.
	TouchesJustStarted() []Point
	TouchesJustEnded() bool
}

type ebitenDevices struct {
	keys    []ebiten.Key
	touches []ebiten.TouchID
	active  []ebiten.TouchID
	order   []ebiten.TouchID
}

// EbitenDevices polls ebiten's global input state.
func EbitenDevices() Devices {
	return &ebitenDevices{}
}

func (d *ebitenDevices) JustPressedKeys() []ebiten.Key {
	d.keys = inpututil.AppendJustPressedKeys(d.keys[:0])
	return d.keys
}

func (d *ebitenDevices) JustReleasedKeys() []ebiten.Key {
	d.keys = inpututil.AppendJustReleasedKeys(d.keys[:0])
	return d.keys
}

func (d *ebitenDevices) MouseJustPressed() (Point, bool) {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return Point{}, false
	}
	x, y := ebiten.CursorPosition()
	return Point{x, y}, true
}

func (d *ebitenDevices) MouseJustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

func (d *ebitenDevices) TouchesJustStarted() []Point {
	d.active = ebiten.AppendTouchIDs(d.active[:0])
	d.touches = inpututil.AppendJustPressedTouchIDs(d.touches[:0])
	d.order = trackTouches(d.order, d.active, d.touches)
	if len(d.touches) == 0 {
		return nil
	}
	out := make([]Point, 0, len(d.order))
	for _, id := range d.order {
		x, y := ebiten.TouchPosition(id)
		out = append(out, Point{x, y})
	}
	return out
}

// trackTouches keeps order in touch-start order: ids no longer active are
// dropped and newly started ids are appended.
func trackTouches(order, active, started []ebiten.TouchID) []ebiten.TouchID {
	kept := order[:0]
	for _, id := range order {
		if slices.Contains(active, id) && !slices.Contains(started, id) {
			kept = append(kept, id)
		}
	}
	for _, id := range started {
		if slices.Contains(active, id) {
			kept = append(kept, id)
		}
	}
	return kept
}

func (d *ebitenDevices) TouchesJustEnded() bool {
	d.touches = inpututil.AppendJustReleasedTouchIDs(d.touches[:0])
	return len(d.touches) > 0
}

// Mask selects which devices are polled on a tick.
type Mask struct {
	SkipPointer  bool
	SkipKeyboard bool
}

// Poll appends the controller events for this tick to dst. Every release,
// keyboard and pointer alike, is emitted before any press so a release and a
// new press in the same tick leave the new press standing. A new touch hits
// the oldest active touch, like touches[0] in a browser.
func Poll(d Devices, mask Mask, dst []input.Event) []input.Event {
	if !mask.SkipKeyboard {
		for _, k := range d.JustReleasedKeys() {
			if code, ok := KeyCode(k); ok {
				dst = append(dst, input.Event{Kind: input.KeyUp, Key: code})
			}
		}
	}
	if !mask.SkipPointer {
		if d.MouseJustReleased() {
			dst = append(dst, input.Event{Kind: input.PointerUp})
		}
		if d.TouchesJustEnded() {
			dst = append(dst, input.Event{Kind: input.TouchEnd})
		}
	}

	if !mask.SkipKeyboard {
		for _, k := range d.JustPressedKeys() {
			if code, ok := KeyCode(k); ok {
				dst = append(dst, input.Event{Kind: input.KeyDown, Key: code})
			}
		}
	}
	if !mask.SkipPointer {
		if p, ok := d.MouseJustPressed(); ok {
			dst = append(dst, input.Event{Kind: input.PointerDown, X: float64(p.X), Y: float64(p.Y)})
		}
		if touches := d.TouchesJustStarted(); len(touches) > 0 {
			dst = append(dst, input.Event{Kind: input.TouchStart, X: float64(touches[0].X), Y: float64(touches[0].Y)})
		}
	}
	return dst
}
