package host

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	bannerText     = "Game Over!"
	bannerFade     = 0.6
	bannerMaxAlpha = 0.85
	bannerSize     = 32
)

// banner fades a "Game Over!" strip in over the stretched canvas.
type banner struct {
	tween  *gween.Tween
	alpha  float32
	done   bool
	face   *text.GoTextFace
	active bool
}

func newBanner(face *text.GoTextFace) *banner {
	return &banner{face: face}
}

// show starts the fade. Later calls are ignored.
func (b *banner) show() {
	if b.active {
		return
	}
	b.active = true
	b.tween = gween.New(0, bannerMaxAlpha, bannerFade, ease.OutQuad)
}

func (b *banner) update(dt float32) {
	if !b.active || b.done {
		return
	}
	b.alpha, b.done = b.tween.Update(dt)
}

func (b *banner) draw(screen *ebiten.Image) {
	if !b.active {
		return
	}
	w := float32(screen.Bounds().Dx())
	h := float32(screen.Bounds().Dy())
	stripH := float32(bannerSize * 2)
	vector.DrawFilledRect(screen, 0, (h-stripH)/2, w, stripH, color.NRGBA{0, 0, 0, uint8(b.alpha * 255)}, false)

	tw, th := text.Measure(bannerText, b.face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate((float64(w)-tw)/2, (float64(h)-th)/2)
	op.ColorScale.ScaleAlpha(b.alpha / bannerMaxAlpha)
	text.Draw(screen, bannerText, b.face, op)
}
