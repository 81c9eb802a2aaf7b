// Package render paints engine snapshots and the on-screen controls onto a
// Surface once per frame.
package render

import (
	"strconv"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
)

// Renderer draws frames. It holds no engine data between calls.
type Renderer struct {
	palette Palette
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithPalette replaces the engine colour table.
func WithPalette(p Palette) RendererOption {
	return func(r *Renderer) { r.palette = p }
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Palette returns the colour table in use.
func (r *Renderer) Palette() Palette {
	return r.palette
}

// Draw repaints every dynamic region from snap. raw drives the control
// glyphs, so a held button stays highlighted even on frames it does not fire.
func (r *Renderer) Draw(s Surface, snap engine.Snapshot, raw input.RawState) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	r.drawField(s, snap)
	r.drawHold(s, snap)
	r.drawNext(s, snap)
	r.drawText(s, snap)
	r.drawGlyphs(s, raw)
	return nil
}

func cell(originX, originY float64, idx int) Rect {
	row := idx / engine.PreviewSide
	col := idx % engine.PreviewSide
	return Rect{originX + float64(col*CellSize), originY + float64(row*CellSize), CellSize, CellSize}
}

func (r *Renderer) drawField(s Surface, snap engine.Snapshot) {
	s.ClearRect(FieldBox)
	fade := 1 - snap.IntervalRatio
	for i := 0; i < engine.FieldSize; i++ {
		c := r.palette.Lookup(snap.Field[i])
		if snap.Clearing(i) {
			c = c.WithAlpha(fade)
		}
		row := i / engine.FieldCols
		col := i % engine.FieldCols
		s.FillRect(Rect{
			X: FieldBox.X + float64(col*CellSize),
			Y: FieldBox.Y + float64(row*CellSize),
			W: CellSize,
			H: CellSize,
		}, c)
	}
}

func (r *Renderer) drawHold(s Surface, snap engine.Snapshot) {
	s.ClearRect(HoldBox)
	for i := 0; i < engine.HoldSize; i++ {
		idx := snap.Hold[i]
		c := r.palette.Lookup(idx)
		if idx != IndexTrans && !snap.CanHold {
			c = r.palette.Lookup(IndexGray)
		}
		s.FillRect(cell(HoldBox.X, HoldBox.Y, i), c)
	}
}

// drawNext shows the nearest piece at the bottom slot; the engine stores
// previews nearest first.
func (r *Renderer) drawNext(s Surface, snap engine.Snapshot) {
	s.ClearRect(NextBox)
	for slot := 0; slot < engine.NextPieces; slot++ {
		preview := snap.NextPreview(engine.NextPieces - 1 - slot)
		y := NextBox.Y + float64(slot*NextStep)
		for i, idx := range preview {
			s.FillRect(cell(NextBox.X, y, i), r.palette.Lookup(idx))
		}
	}
}

func (r *Renderer) drawText(s Surface, snap engine.Snapshot) {
	s.ClearRect(TextBox)
	s.FillText("Score", ScoreLabelAt, TextSize, Black)
	s.FillText(strconv.FormatUint(uint64(snap.Score), 10), ScoreAt, TextSize, Black)
	s.FillText("Lines", LinesLabelAt, TextSize, Black)
	s.FillText(strconv.FormatUint(uint64(snap.Lines), 10), LinesAt, TextSize, Black)
}

func glyphColor(raw input.RawState, b input.Button) Color {
	if raw.Pressed(b) {
		return Black
	}
	return White
}

func (r *Renderer) drawGlyphs(s Surface, raw input.RawState) {
	s.FillCircle(GlyphA, GlyphRadius, glyphColor(raw, input.ButtonA))
	s.FillCircle(GlyphB, GlyphRadius, glyphColor(raw, input.ButtonB))
	s.FillRect(GlyphUp, glyphColor(raw, input.ButtonUp))
	s.FillRect(GlyphDown, glyphColor(raw, input.ButtonDown))
	s.FillRect(GlyphRight, glyphColor(raw, input.ButtonRight))
	s.FillRect(GlyphLeft, glyphColor(raw, input.ButtonLeft))
}

// DrawChrome paints the labels and outlines that never change. Call it once
// before the first frame.
func (r *Renderer) DrawChrome(s Surface) {
	s.FillText("Hold", HoldLabelAt, LabelSize, Black)
	s.FillText("Next", NextLabelAt, LabelSize, Black)
	s.FillText("Score", ScoreLabelAt, TextSize, Black)
	s.FillText("Lines", LinesLabelAt, TextSize, Black)
	s.FillText("↑touch", TouchLabelAt, TextSize, Black)
	s.StrokeRect(FieldFrame, Black)
	s.StrokePolygon(DPadOutline, Black)
	s.StrokeCircle(GlyphB, OutlineRadius, Black)
	s.StrokeCircle(GlyphA, OutlineRadius, Black)
}
