// Package ebitensurface draws frames onto an ebiten image.
package ebitensurface

import (
	"bytes"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/blockfall/render"
	"golang.org/x/image/font/gofont/goregular"
)

// Surface implements render.Surface over an *ebiten.Image.
type Surface struct {
	dst    *ebiten.Image
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

var _ render.Surface = (*Surface)(nil)

// New wraps dst, loading the Go regular font for text.
func New(dst *ebiten.Image) (*Surface, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Surface{
		dst:    dst,
		source: source,
		faces:  make(map[float64]*text.GoTextFace),
	}, nil
}

// Image returns the target image.
func (s *Surface) Image() *ebiten.Image {
	return s.dst
}

func (s *Surface) face(size float64) *text.GoTextFace {
	f, ok := s.faces[size]
	if !ok {
		f = &text.GoTextFace{Source: s.source, Size: size}
		s.faces[size] = f
	}
	return f
}

func (s *Surface) ClearRect(r render.Rect) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
	s.dst.SubImage(rect).(*ebiten.Image).Clear()
}

func (s *Surface) FillRect(r render.Rect, c render.Color) {
	vector.DrawFilledRect(s.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func (s *Surface) FillCircle(center render.Point, radius float64, c render.Color) {
	vector.DrawFilledCircle(s.dst, float32(center.X), float32(center.Y), float32(radius), c, true)
}

func (s *Surface) StrokeRect(r render.Rect, c render.Color) {
	vector.StrokeRect(s.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, c, false)
}

func (s *Surface) StrokeCircle(center render.Point, radius float64, c render.Color) {
	vector.StrokeCircle(s.dst, float32(center.X), float32(center.Y), float32(radius), 1, c, true)
}

func (s *Surface) StrokePolygon(points []render.Point, c render.Color) {
	for i, p := range points {
		q := points[(i+1)%len(points)]
		vector.StrokeLine(s.dst, float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), 1, c, false)
	}
}

// FillText draws str with its baseline at at.Y.
func (s *Surface) FillText(str string, at render.Point, size float64, c render.Color) {
	face := s.face(size)
	op := &text.DrawOptions{}
	op.GeoM.Translate(at.X, at.Y-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.dst, str, face, op)
}
