package input

// Canvas backing-buffer size in logical pixels.
const (
	CanvasWidth  = 320
	CanvasHeight = 500
)

// Region is a hit area in canvas coordinates.
type Region interface {
	Contains(x, y float64) bool
}

// HitCircle is a circular hit area. Points on the rim count as inside.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains compares squared distances so no square root is taken.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitRect is an axis-aligned rectangle. By default it is half-open
// (x <= px < x+w); Closed includes the far edges.
type HitRect struct {
	X, Y, Width, Height float64
	Closed              bool
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	if x < r.X || y < r.Y {
		return false
	}
	if r.Closed {
		return x <= r.X+r.Width && y <= r.Y+r.Height
	}
	return x < r.X+r.Width && y < r.Y+r.Height
}

// Target binds a region to the button it presses.
type Target struct {
	Button Button
	Region Region
}

// DefaultTargets returns the on-screen control layout in priority order.
func DefaultTargets() []Target {
	return []Target{
		{ButtonA, HitCircle{CenterX: 255, CenterY: 435, Radius: 24}},
		{ButtonB, HitCircle{CenterX: 185, CenterY: 466, Radius: 24}},
		{ButtonUp, HitRect{X: 60, Y: 405, Width: 30, Height: 30}},
		{ButtonDown, HitRect{X: 60, Y: 467, Width: 30, Height: 30}},
		{ButtonRight, HitRect{X: 91, Y: 436, Width: 30, Height: 30}},
		{ButtonLeft, HitRect{X: 29, Y: 436, Width: 30, Height: 30}},
		{ButtonHold, HitRect{X: 10, Y: 80, Width: 60, Height: 60, Closed: true}},
	}
}

// HitTester maps display-space pointer positions to buttons. The displayed
// size may differ from the canvas buffer size; points are rescaled per axis
// before testing.
type HitTester struct {
	targets          []Target
	bufferW, bufferH float64
	displayW         float64
	displayH         float64
}

// NewHitTester creates a tester for the default layout with the display size
// equal to the canvas size.
func NewHitTester() *HitTester {
	return NewHitTesterWithTargets(DefaultTargets(), CanvasWidth, CanvasHeight)
}

// NewHitTesterWithTargets creates a tester over custom targets and buffer size.
func NewHitTesterWithTargets(targets []Target, bufferW, bufferH float64) *HitTester {
	return &HitTester{
		targets:  targets,
		bufferW:  bufferW,
		bufferH:  bufferH,
		displayW: bufferW,
		displayH: bufferH,
	}
}

// Resize records the size the canvas is currently displayed at.
func (h *HitTester) Resize(displayW, displayH float64) {
	h.displayW = displayW
	h.displayH = displayH
}

// DisplaySize returns the last recorded displayed size.
func (h *HitTester) DisplaySize() (float64, float64) {
	return h.displayW, h.displayH
}

// ToCanvas converts a display-space point into canvas coordinates.
func (h *HitTester) ToCanvas(x, y float64) (float64, float64, bool) {
	if h.displayW <= 0 || h.displayH <= 0 {
		return 0, 0, false
	}
	return x * (h.bufferW / h.displayW), y * (h.bufferH / h.displayH), true
}

// Hit returns the first button whose region contains the display-space point.
func (h *HitTester) Hit(x, y float64) (Button, bool) {
	cx, cy, ok := h.ToCanvas(x, y)
	if !ok {
		return 0, false
	}
	for _, t := range h.targets {
		if t.Region.Contains(cx, cy) {
			return t.Button, true
		}
	}
	return 0, false
}
