// Package host runs the game in an ebiten window: it polls devices into the
// input controller, steps the frame clock once per tick and presents the
// fixed-size canvas stretched to the window.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/blockfall/debugui"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/frame"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/ebitensurface"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

const windowTitle = "blockfall"

// Config configures a Game.
type Config struct {
	Engine engine.Engine
	// Scale sizes the initial window relative to the canvas.
	Scale float64
	// ShowFPS draws the frame rate panel.
	ShowFPS bool
	// Debug opens the Dear ImGui stats overlay.
	Debug bool
	// Notifier is told once when the game ends. Optional.
	Notifier Notifier
	// Devices defaults to ebiten's input state.
	Devices Devices
	Log     *zap.Logger
}

// Game implements ebiten.Game.
type Game struct {
	ctx        context.Context
	controller *input.Controller
	scheduler  *frame.ManualScheduler
	clock      *frame.Clock
	canvas     *ebiten.Image
	devices    Devices
	events     []input.Event
	banner     *banner
	overlay    *debugui.Overlay
	showFPS    bool
	started    bool
}

var _ ebiten.Game = (*Game)(nil)

// New builds the game and its window. Engine calls use ctx; cancelling it
// ends RunGame.
func New(ctx context.Context, cfg Config) (*Game, error) {
	if cfg.Engine == nil {
		return nil, errors.New("host: engine is required")
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Devices == nil {
		cfg.Devices = EbitenDevices()
	}

	canvas := ebiten.NewImage(input.CanvasWidth, input.CanvasHeight)
	surface, err := ebitensurface.New(canvas)
	if err != nil {
		return nil, err
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		controller: input.NewController(),
		scheduler:  frame.NewManualScheduler(),
		canvas:     canvas,
		devices:    cfg.Devices,
		banner:     newBanner(&text.GoTextFace{Source: source, Size: bannerSize}),
		showFPS:    cfg.ShowFPS,
	}
	g.clock = frame.NewClock(cfg.Engine, g.controller, render.NewRenderer(), surface, g.scheduler,
		frame.WithLogger(cfg.Log),
		frame.WithGameOver(func(r frame.Result) {
			g.banner.show()
			if cfg.Notifier != nil {
				cfg.Notifier.GameOver(r)
			}
		}),
	)

	width := int(input.CanvasWidth * cfg.Scale)
	height := int(input.CanvasHeight * cfg.Scale)
	if cfg.Debug {
		g.overlay = debugui.NewOverlay(windowTitle, width, height)
		g.overlay.Add(debugui.NewPerformanceStats(g.clock).Render)
	} else {
		ebiten.SetWindowSize(width, height)
		ebiten.SetWindowTitle(windowTitle)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return g, nil
}

// Clock returns the frame clock.
func (g *Game) Clock() *frame.Clock {
	return g.clock
}

// Run blocks until the window closes, the context ends or the engine fails.
func (g *Game) Run() error {
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		g.clock.Cancel()
		return ebiten.Termination
	}
	if !g.started {
		g.started = true
		if err := g.clock.Start(g.ctx); err != nil {
			return err
		}
	}

	var mask Mask
	if g.overlay != nil {
		in := g.overlay.InputState()
		mask.SkipPointer = in.WantCaptureMouse
		mask.SkipKeyboard = in.WantCaptureKeyboard
	}
	g.events = Poll(g.devices, mask, g.events[:0])
	for _, ev := range g.events {
		g.controller.ApplyEvent(ev)
	}

	g.scheduler.Step()
	if err := g.clock.Err(); err != nil {
		return err
	}

	g.banner.update(1 / float32(ebiten.TPS()))
	if g.overlay != nil {
		g.overlay.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.White)

	sw := float64(screen.Bounds().Dx())
	sh := float64(screen.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sw/input.CanvasWidth, sh/input.CanvasHeight)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.canvas, op)

	g.banner.draw(screen)

	if g.showFPS {
		vector.DrawFilledRect(screen, 0, 0, 180, 84, color.NRGBA{0, 0, 0, 160}, false)
		ebitenutil.DebugPrintAt(screen, g.clock.Perf().String(), 4, 2)
	}

	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

// Layout keeps the screen at window size and tells the hit tester how large
// the canvas is displayed.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.controller.HitTester().Resize(float64(outsideWidth), float64(outsideHeight))
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
