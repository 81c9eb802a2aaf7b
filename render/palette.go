package render

// Color is an engine colour with a fractional canvas-style alpha in [0, 1].
// It implements color.Color so surfaces can hand it to image/draw directly.
type Color struct {
	R, G, B uint8
	A       float32
}

// RGBA returns alpha-premultiplied components.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := c.A
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	a = uint32(alpha*0xffff + 0.5)
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return r, g, b, a
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Engine colour indices.
const (
	IndexWhite = iota
	IndexGray
	IndexTrans
	IndexCyan
	IndexYellow
	IndexLime
	IndexRed
	IndexBlue
	IndexOrange
	IndexPurple
)

var (
	White  = Color{255, 255, 255, 1}
	Gray   = Color{75, 75, 75, 1}
	Trans  = Color{0, 0, 0, 0}
	Cyan   = Color{0, 255, 255, 1}
	Yellow = Color{255, 255, 0, 1}
	Lime   = Color{0, 255, 0, 1}
	Red    = Color{255, 0, 0, 1}
	Blue   = Color{0, 0, 255, 1}
	Orange = Color{255, 165, 0, 1}
	Purple = Color{128, 0, 128, 1}
	Black  = Color{0, 0, 0, 1}
)

// Palette maps engine colour indices to colours.
type Palette []Color

// DefaultPalette returns the ten engine colours in index order.
func DefaultPalette() Palette {
	return Palette{White, Gray, Trans, Cyan, Yellow, Lime, Red, Blue, Orange, Purple}
}

// Lookup returns the colour for idx. Unknown indices are transparent.
func (p Palette) Lookup(idx byte) Color {
	if int(idx) >= len(p) {
		return Trans
	}
	return p[idx]
}
