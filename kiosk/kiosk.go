// Package kiosk runs the game full screen on a Linux framebuffer with evdev
// keyboards, for devices without a window system.
package kiosk

import (
	"context"
	"errors"
	"image/color"
	"image/draw"
	"time"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/frame"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/raster"
	"go.uber.org/zap"
)

// Config configures a kiosk session.
type Config struct {
	Engine engine.Engine
	// FBPath is the framebuffer device, /dev/fb0 by default.
	FBPath string
	// InputGlob selects evdev devices, /dev/input/event* by default.
	InputGlob string
	// FrameRate caps frames per second. Zero runs flat out.
	FrameRate int
	// GameOverHold keeps the final screen up before returning.
	GameOverHold time.Duration
	Log          *zap.Logger
}

func (c *Config) defaults() {
	if c.FBPath == "" {
		c.FBPath = "/dev/fb0"
	}
	if c.InputGlob == "" {
		c.InputGlob = "/dev/input/event*"
	}
	if c.Log == nil {
		c.Log = zap.NewNop()
	}
}

// interval converts the frame rate cap into a tick interval.
func (c *Config) interval() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Kiosk presents the frame clock on a draw.Image display. Key events arrive
// on a channel from reader goroutines and are drained on the frame goroutine
// before each frame.
type Kiosk struct {
	cfg        Config
	display    draw.Image
	surface    *raster.Surface
	controller *input.Controller
	manual     *frame.ManualScheduler
	clock      *frame.Clock
	events     <-chan input.Event
	over       bool
}

// New wires a kiosk around display.
func New(cfg Config, display draw.Image, events <-chan input.Event) (*Kiosk, error) {
	if cfg.Engine == nil {
		return nil, errors.New("kiosk: engine is required")
	}
	cfg.defaults()

	surface, err := raster.New(input.CanvasWidth, input.CanvasHeight)
	if err != nil {
		return nil, err
	}
	k := &Kiosk{
		cfg:        cfg,
		display:    display,
		surface:    surface,
		controller: input.NewController(),
		manual:     frame.NewManualScheduler(),
		events:     events,
	}
	k.clock = frame.NewClock(cfg.Engine, k.controller, render.NewRenderer(), surface, &framed{k},
		frame.WithLogger(cfg.Log),
		frame.WithGameOver(func(frame.Result) { k.over = true }),
	)

	// Only keyboards drive the kiosk; pointer hits use the canvas as shown.
	b := display.Bounds()
	k.controller.HitTester().Resize(float64(b.Dx()), float64(b.Dy()))
	return k, nil
}

// framed wraps every frame callback with input draining before and
// presentation after.
type framed struct {
	k *Kiosk
}

func (f *framed) ScheduleNext(fn func()) frame.Handle {
	return f.k.manual.ScheduleNext(func() {
		f.k.drain()
		fn()
		f.k.present()
	})
}

func (f *framed) Cancel(h frame.Handle) {
	f.k.manual.Cancel(h)
}

func (k *Kiosk) drain() {
	for {
		select {
		case ev, ok := <-k.events:
			if !ok {
				return
			}
			k.controller.ApplyEvent(ev)
		default:
			return
		}
	}
}

func (k *Kiosk) present() {
	raster.Blit(k.display, k.surface.Canvas(), color.White)
}

// Clock returns the frame clock.
func (k *Kiosk) Clock() *frame.Clock {
	return k.clock
}

// Run plays one game. It returns nil when the game ends or ctx is
// cancelled, and the engine error if the engine fails.
func (k *Kiosk) Run(ctx context.Context) error {
	if err := k.clock.Start(ctx); err != nil {
		return err
	}
	k.present()

	err := k.manual.Run(ctx, k.cfg.interval())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		k.clock.Cancel()
		return nil
	}
	if err != nil {
		return err
	}
	if err := k.clock.Err(); err != nil {
		return err
	}

	if k.over {
		k.showGameOver()
		k.cfg.Log.Info("Game Over!", zap.Uint32("score", k.clock.Result().Score))
		select {
		case <-ctx.Done():
		case <-time.After(k.cfg.GameOverHold):
		}
	}
	return nil
}

func (k *Kiosk) showGameOver() {
	strip := render.Rect{X: 0, Y: 220, W: input.CanvasWidth, H: 60}
	k.surface.FillRect(strip, render.Black.WithAlpha(0.85))
	k.surface.FillText("Game Over!", render.Point{X: 90, Y: 260}, 28, render.White)
	k.present()
}
