package render_test

import (
	"errors"
	"testing"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySnapshot() engine.Snapshot {
	s := engine.Snapshot{
		Field:   make([]byte, engine.FieldSize),
		Clear:   make([]byte, engine.FieldSize),
		Next:    make([]byte, engine.NextSize),
		Hold:    make([]byte, engine.HoldSize),
		CanHold: true,
	}
	for _, buf := range [][]byte{s.Field, s.Next, s.Hold} {
		for i := range buf {
			buf[i] = render.IndexTrans
		}
	}
	return s
}

func draw(t *testing.T, snap engine.Snapshot, raw input.RawState) *rendertest.Recorder {
	t.Helper()
	rec := &rendertest.Recorder{}
	require.NoError(t, render.NewRenderer().Draw(rec, snap, raw))
	return rec
}

func TestDrawFieldClearFade(t *testing.T) {
	snap := emptySnapshot()
	snap.Field[0] = render.IndexRed
	snap.Clear[0] = engine.ClearFlagSet
	snap.Field[1] = render.IndexCyan
	snap.Clear[engine.FieldCols] = engine.ClearFlagSet
	snap.IntervalRatio = 0.25

	rec := draw(t, snap, input.RawState{})

	c, ok := rec.FillAt(80, 50)
	require.True(t, ok)
	assert.Equal(t, render.Red.WithAlpha(0.75), c)

	c, ok = rec.FillAt(95, 50)
	require.True(t, ok)
	assert.Equal(t, render.Cyan, c)

	// A transparent cell under the clear flag fades from opaque black.
	c, ok = rec.FillAt(80, 65)
	require.True(t, ok)
	assert.Equal(t, render.Trans.WithAlpha(0.75), c)

	c, ok = rec.FillAt(215, 335)
	require.True(t, ok)
	assert.Equal(t, render.Trans, c)
}

func TestDrawFieldFadeEndpoints(t *testing.T) {
	for _, tc := range []struct {
		ratio float32
		alpha float32
	}{{0, 1}, {0.5, 0.5}, {1, 0}} {
		snap := emptySnapshot()
		snap.Field[42] = render.IndexPurple
		snap.Clear[42] = engine.ClearFlagSet
		snap.IntervalRatio = tc.ratio

		rec := draw(t, snap, input.RawState{})
		c, ok := rec.FillAt(80+2*render.CellSize, 50+4*render.CellSize)
		require.True(t, ok)
		assert.Equal(t, tc.alpha, c.A, "ratio %v", tc.ratio)
	}
}

func TestDrawHoldAvailability(t *testing.T) {
	snap := emptySnapshot()
	snap.Hold[0] = render.IndexTrans
	snap.Hold[1] = render.IndexBlue
	snap.Hold[2] = render.IndexWhite

	t.Run("available", func(t *testing.T) {
		rec := draw(t, snap, input.RawState{})
		c, _ := rec.FillAt(10, 80)
		assert.Equal(t, render.Trans, c)
		c, _ = rec.FillAt(25, 80)
		assert.Equal(t, render.Blue, c)
		c, _ = rec.FillAt(40, 80)
		assert.Equal(t, render.White, c)
	})

	t.Run("unavailable", func(t *testing.T) {
		snap.CanHold = false
		rec := draw(t, snap, input.RawState{})
		c, _ := rec.FillAt(10, 80)
		assert.Equal(t, render.Trans, c)
		c, _ = rec.FillAt(25, 80)
		assert.Equal(t, render.Gray, c)
		c, _ = rec.FillAt(40, 80)
		assert.Equal(t, render.Gray, c)
	})
}

func TestDrawNextReversed(t *testing.T) {
	snap := emptySnapshot()
	colors := []byte{render.IndexCyan, render.IndexYellow, render.IndexRed}
	for piece, idx := range colors {
		for i := 0; i < engine.PreviewSize; i++ {
			snap.Next[piece*engine.PreviewSize+i] = idx
		}
	}

	rec := draw(t, snap, input.RawState{})

	top, _ := rec.FillAt(240, 60)
	middle, _ := rec.FillAt(240, 120)
	bottom, _ := rec.FillAt(285, 225)
	assert.Equal(t, render.Red, top)
	assert.Equal(t, render.Yellow, middle)
	assert.Equal(t, render.Cyan, bottom)
}

func TestDrawText(t *testing.T) {
	snap := emptySnapshot()
	snap.Score = 1234
	snap.Lines = 56

	rec := draw(t, snap, input.RawState{})

	assert.Equal(t, []string{"Score", "1234", "Lines", "56"}, rec.Texts())
	for _, op := range rec.Kind(rendertest.OpFillText) {
		assert.Equal(t, render.Black, op.Color)
		assert.Equal(t, float64(render.TextSize), op.Size)
	}
	clears := rec.Kind(rendertest.OpClearRect)
	require.Len(t, clears, 4)
	assert.Equal(t, render.TextBox, clears[3].Rect)
}

func TestDrawGlyphsFollowRawState(t *testing.T) {
	var raw input.RawState
	raw[input.ButtonA] = 1
	raw[input.ButtonUp] = 7

	rec := draw(t, emptySnapshot(), raw)

	circles := rec.Kind(rendertest.OpFillCircle)
	require.Len(t, circles, 2)
	assert.Equal(t, render.GlyphA, circles[0].Center)
	assert.Equal(t, render.Black, circles[0].Color)
	assert.Equal(t, render.GlyphB, circles[1].Center)
	assert.Equal(t, render.White, circles[1].Color)

	up, _ := rec.FillAt(render.GlyphUp.X, render.GlyphUp.Y)
	down, _ := rec.FillAt(render.GlyphDown.X, render.GlyphDown.Y)
	assert.Equal(t, render.Black, up)
	assert.Equal(t, render.White, down)
}

func TestDrawPaintsEveryCell(t *testing.T) {
	rec := draw(t, emptySnapshot(), input.RawState{})

	fills := rec.Kind(rendertest.OpFillRect)
	assert.Len(t, fills, engine.FieldSize+engine.HoldSize+engine.NextSize+4)
	assert.Equal(t, render.FieldBox, rec.Ops[0].Rect)
	assert.Equal(t, rendertest.OpClearRect, rec.Ops[0].Kind)
}

func TestDrawRejectsShortSnapshot(t *testing.T) {
	snap := emptySnapshot()
	snap.Next = snap.Next[:10]
	rec := &rendertest.Recorder{}

	err := render.NewRenderer().Draw(rec, snap, input.RawState{})
	assert.True(t, errors.Is(err, engine.ErrShortBuffer))
	assert.Empty(t, rec.Ops)
}

func TestDrawChrome(t *testing.T) {
	rec := &rendertest.Recorder{}
	render.NewRenderer().DrawChrome(rec)

	assert.Equal(t, []string{"Hold", "Next", "Score", "Lines", "↑touch"}, rec.Texts())
	texts := rec.Kind(rendertest.OpFillText)
	assert.Equal(t, float64(render.LabelSize), texts[0].Size)
	assert.Equal(t, float64(render.TextSize), texts[4].Size)

	frames := rec.Kind(rendertest.OpStrokeRect)
	require.Len(t, frames, 1)
	assert.Equal(t, render.FieldFrame, frames[0].Rect)

	polys := rec.Kind(rendertest.OpStrokePolygon)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].Points, 12)

	outlines := rec.Kind(rendertest.OpStrokeCircle)
	require.Len(t, outlines, 2)
	for _, op := range outlines {
		assert.Equal(t, float64(render.OutlineRadius), op.Radius)
	}
}

func TestPaletteLookup(t *testing.T) {
	p := render.DefaultPalette()
	assert.Len(t, p, 10)
	assert.Equal(t, render.Orange, p.Lookup(render.IndexOrange))
	assert.Equal(t, render.Trans, p.Lookup(10))
	assert.Equal(t, render.Trans, p.Lookup(255))
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := render.White.RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})

	r, g, b, a = render.Trans.RGBA()
	assert.Equal(t, []uint32{0, 0, 0, 0}, []uint32{r, g, b, a})

	r, _, _, a = render.Red.WithAlpha(0.5).RGBA()
	assert.InDelta(t, 0x7fff, a, 1)
	assert.InDelta(t, 0x7fff, r, 1)
}
