// Package rendertest records drawing calls for assertions.
package rendertest

import "github.com/plus3/blockfall/render"

// Op names recorded by Recorder.
const (
	OpClearRect     = "clearRect"
	OpFillRect      = "fillRect"
	OpFillCircle    = "fillCircle"
	OpStrokeRect    = "strokeRect"
	OpStrokeCircle  = "strokeCircle"
	OpStrokePolygon = "strokePolygon"
	OpFillText      = "fillText"
)

// Op is one recorded drawing call. Fields not used by Kind are zero.
type Op struct {
	Kind   string
	Rect   render.Rect
	Center render.Point
	Radius float64
	Points []render.Point
	Text   string
	Size   float64
	Color  render.Color
}

// Recorder is a render.Surface that keeps every call in order.
type Recorder struct {
	Ops []Op
}

var _ render.Surface = (*Recorder)(nil)

func (r *Recorder) ClearRect(rect render.Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpClearRect, Rect: rect})
}

func (r *Recorder) FillRect(rect render.Rect, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, Rect: rect, Color: c})
}

func (r *Recorder) FillCircle(center render.Point, radius float64, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillCircle, Center: center, Radius: radius, Color: c})
}

func (r *Recorder) StrokeRect(rect render.Rect, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, Rect: rect, Color: c})
}

func (r *Recorder) StrokeCircle(center render.Point, radius float64, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeCircle, Center: center, Radius: radius, Color: c})
}

func (r *Recorder) StrokePolygon(points []render.Point, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokePolygon, Points: append([]render.Point(nil), points...), Color: c})
}

func (r *Recorder) FillText(s string, at render.Point, size float64, c render.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFillText, Text: s, Center: at, Size: size, Color: c})
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Kind returns the recorded calls of one kind in order.
func (r *Recorder) Kind(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// FillAt returns the colour of the last fillRect whose origin is (x, y).
func (r *Recorder) FillAt(x, y float64) (render.Color, bool) {
	for i := len(r.Ops) - 1; i >= 0; i-- {
		op := r.Ops[i]
		if op.Kind == OpFillRect && op.Rect.X == x && op.Rect.Y == y {
			return op.Color, true
		}
	}
	return render.Color{}, false
}

// Texts returns every string drawn with fillText in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Kind(OpFillText) {
		out = append(out, op.Text)
	}
	return out
}
