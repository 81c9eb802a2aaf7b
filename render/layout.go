package render

// CellSize is the edge of one grid cell in canvas pixels.
const CellSize = 15

// Rect is an axis-aligned canvas rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Point is a canvas position.
type Point struct {
	X, Y float64
}

// Canvas regions repainted every frame.
var (
	FieldBox = Rect{80, 50, 150, 300}
	HoldBox  = Rect{10, 80, 60, 60}
	NextBox  = Rect{240, 60, 60, 180}
	TextBox  = Rect{240, 240, 80, 170}
)

// NextStep is the vertical distance between next-piece previews.
const NextStep = 60

// Text sizes in pixels.
const (
	LabelSize = 28
	TextSize  = 20
)

// Scoreboard baselines.
var (
	ScoreLabelAt = Point{240, 270}
	ScoreAt      = Point{240, 310}
	LinesLabelAt = Point{240, 350}
	LinesAt      = Point{240, 390}
)

// Control glyphs. They match the hit layout in package input.
const (
	GlyphRadius   = 24
	OutlineRadius = 25
)

var (
	GlyphA = Point{255, 435}
	GlyphB = Point{185, 466}

	GlyphUp    = Rect{60, 405, 30, 30}
	GlyphDown  = Rect{60, 467, 30, 30}
	GlyphRight = Rect{91, 436, 30, 30}
	GlyphLeft  = Rect{29, 436, 30, 30}
)

// Static chrome.
var (
	FieldFrame = Rect{79, 49, 151, 301}

	DPadOutline = []Point{
		{59, 404}, {59, 435}, {28, 435}, {28, 466}, {59, 466}, {59, 497},
		{90, 497}, {90, 466}, {121, 466}, {121, 435}, {90, 435}, {90, 404},
	}

	HoldLabelAt  = Point{10, 24}
	NextLabelAt  = Point{240, 24}
	TouchLabelAt = Point{0, 170}
)
