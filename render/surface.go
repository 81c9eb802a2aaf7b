package render

// Surface is an immediate-mode 2D drawing target in canvas coordinates.
// Text is anchored at its baseline; size is the font size in pixels.
type Surface interface {
	ClearRect(r Rect)
	FillRect(r Rect, c Color)
	FillCircle(center Point, radius float64, c Color)
	StrokeRect(r Rect, c Color)
	StrokeCircle(center Point, radius float64, c Color)
	StrokePolygon(points []Point, c Color)
	FillText(s string, at Point, size float64, c Color)
}
