// Package raster draws frames into an in-memory RGBA canvas, for hosts
// without a GPU such as the framebuffer kiosk and the soak runner.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/plus3/blockfall/render"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Surface implements render.Surface over an *image.RGBA.
type Surface struct {
	canvas *image.RGBA
	font   *truetype.Font
	faces  map[float64]font.Face
}

var _ render.Surface = (*Surface)(nil)

// New allocates a transparent canvas of the given size.
func New(width, height int) (*Surface, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Surface{
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		font:   f,
		faces:  make(map[float64]font.Face),
	}, nil
}

// Canvas returns the backing image.
func (s *Surface) Canvas() *image.RGBA {
	return s.canvas
}

func (s *Surface) face(size float64) font.Face {
	f, ok := s.faces[size]
	if !ok {
		// Canvas pixels map 1:1 to points at 72 DPI.
		f = truetype.NewFace(s.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
		s.faces[size] = f
	}
	return f
}

func bounds(r render.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	)
}

func (s *Surface) ClearRect(r render.Rect) {
	draw.Draw(s.canvas, bounds(r), image.Transparent, image.Point{}, draw.Src)
}

func (s *Surface) FillRect(r render.Rect, c render.Color) {
	draw.Draw(s.canvas, bounds(r), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Surface) FillCircle(center render.Point, radius float64, c render.Color) {
	s.mask(center, radius, &disc{center: center, outer: radius}, c)
}

func (s *Surface) StrokeRect(r render.Rect, c render.Color) {
	s.FillRect(render.Rect{X: r.X, Y: r.Y, W: r.W, H: 1}, c)
	s.FillRect(render.Rect{X: r.X, Y: r.Y + r.H - 1, W: r.W, H: 1}, c)
	s.FillRect(render.Rect{X: r.X, Y: r.Y + 1, W: 1, H: r.H - 2}, c)
	s.FillRect(render.Rect{X: r.X + r.W - 1, Y: r.Y + 1, W: 1, H: r.H - 2}, c)
}

func (s *Surface) StrokeCircle(center render.Point, radius float64, c render.Color) {
	s.mask(center, radius+1, &disc{center: center, inner: radius - 0.5, outer: radius + 0.5}, c)
}

func (s *Surface) StrokePolygon(points []render.Point, c render.Color) {
	src := image.NewUniform(c)
	for i, p := range points {
		q := points[(i+1)%len(points)]
		s.line(p, q, src)
	}
}

// FillText draws str with its baseline at at.Y.
func (s *Surface) FillText(str string, at render.Point, size float64, c render.Color) {
	d := &font.Drawer{
		Dst:  s.canvas,
		Src:  image.NewUniform(c),
		Face: s.face(size),
		Dot:  fixed.Point26_6{X: fixed.Int26_6(at.X * 64), Y: fixed.Int26_6(at.Y * 64)},
	}
	d.DrawString(str)
}

func (s *Surface) mask(center render.Point, extent float64, m *disc, c render.Color) {
	r := image.Rect(
		int(math.Floor(center.X-extent)), int(math.Floor(center.Y-extent)),
		int(math.Ceil(center.X+extent))+1, int(math.Ceil(center.Y+extent))+1,
	)
	draw.DrawMask(s.canvas, r, image.NewUniform(c), image.Point{}, m, r.Min, draw.Over)
}

// line plots a one pixel Bresenham segment.
func (s *Surface) line(p, q render.Point, src image.Image) {
	x0, y0 := int(math.Round(p.X)), int(math.Round(p.Y))
	x1, y1 := int(math.Round(q.X)), int(math.Round(q.Y))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		draw.Draw(s.canvas, image.Rect(x0, y0, x0+1, y0+1), src, image.Point{}, draw.Over)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// disc is an alpha mask covering pixels whose centres lie between inner and
// outer radius.
type disc struct {
	center       render.Point
	inner, outer float64
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(d.center.X-d.outer))-1, int(math.Floor(d.center.Y-d.outer))-1,
		int(math.Ceil(d.center.X+d.outer))+2, int(math.Ceil(d.center.Y+d.outer))+2,
	)
}

func (d *disc) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - d.center.X
	dy := float64(y) + 0.5 - d.center.Y
	dist := dx*dx + dy*dy
	if dist <= d.outer*d.outer && (d.inner <= 0 || dist >= d.inner*d.inner) {
		return color.Opaque
	}
	return color.Transparent
}

// Blit scales the canvas onto dst, stretching both axes to fill it, over an
// opaque background.
func Blit(dst draw.Image, canvas image.Image, background color.Color) {
	b := dst.Bounds()
	frame := image.NewRGBA(canvas.Bounds())
	draw.Draw(frame, frame.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(frame, frame.Bounds(), canvas, canvas.Bounds().Min, draw.Over)
	xdraw.NearestNeighbor.Scale(dst, b, frame, frame.Bounds(), xdraw.Src, nil)
}
