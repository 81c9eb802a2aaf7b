// Package frame drives the once-per-frame cycle: debounce input, advance the
// engine, sample its state and repaint.
package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/render"
	"go.uber.org/zap"
)

// ErrStarted is returned by Start on a clock that has already started.
var ErrStarted = errors.New("frame: clock already started")

// State is the lifecycle state of a Clock.
type State int

const (
	// Idle is the state before Start.
	Idle State = iota
	Running
	// Stopped is terminal.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the final tally reported when the game ends.
type Result struct {
	Score  uint32
	Lines  uint32
	Frames int64
}

// Clock owns the frame cycle. All methods must be called from the goroutine
// that runs the scheduler's callbacks.
type Clock struct {
	engine     engine.Engine
	controller *input.Controller
	renderer   *render.Renderer
	surface    render.Surface
	scheduler  Scheduler

	perf       *PerfMonitor
	log        *zap.Logger
	now        func() time.Time
	onGameOver func(Result)

	ctx    context.Context
	state  State
	handle Handle
	err    error
	frames int64
	last   Result
	stats  [numSteps]stepStatsInternal
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithLogger sets the logger for lifecycle events.
func WithLogger(log *zap.Logger) ClockOption {
	return func(c *Clock) { c.log = log }
}

// WithGameOver registers the game-over notice. It runs at most once.
func WithGameOver(fn func(Result)) ClockOption {
	return func(c *Clock) { c.onGameOver = fn }
}

// WithNow replaces the wall clock used for performance samples and step
// timing.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) { c.now = now }
}

// NewClock wires the frame cycle. The clock does nothing until Start.
func NewClock(e engine.Engine, controller *input.Controller, renderer *render.Renderer, surface render.Surface, scheduler Scheduler, opts ...ClockOption) *Clock {
	c := &Clock{
		engine:     e,
		controller: controller,
		renderer:   renderer,
		surface:    surface,
		scheduler:  scheduler,
		log:        zap.NewNop(),
		now:        time.Now,
		stats:      newStepStats(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.perf = NewPerfMonitor(c.now())
	return c
}

// Start draws the static chrome and an initial frame, then schedules the
// first frame callback. The context is used for every engine call made by
// later frames.
func (c *Clock) Start(ctx context.Context) error {
	if c.state != Idle {
		return ErrStarted
	}
	c.ctx = ctx
	c.state = Running

	c.renderer.DrawChrome(c.surface)
	if err := c.paint(); err != nil {
		c.fail(err)
		return err
	}

	c.log.Info("clock started")
	c.schedule()
	return nil
}

// paint samples the engine and draws it.
func (c *Clock) paint() error {
	if err := c.engine.Render(c.ctx); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	snap, err := c.engine.Snapshot(c.ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	c.last.Score = snap.Score
	c.last.Lines = snap.Lines
	if err := c.renderer.Draw(c.surface, snap, c.controller.Raw()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

func (c *Clock) schedule() {
	c.handle = c.scheduler.ScheduleNext(c.frame)
}

func (c *Clock) timed(step Step, fn func() error) error {
	start := c.now()
	err := fn()
	c.stats[step].record(c.now().Sub(start))
	return err
}

func (c *Clock) frame() {
	if c.state != Running {
		return
	}
	c.frames++
	c.last.Frames = c.frames

	var controls input.Controls
	var over bool
	err := c.timed(StepSample, func() error {
		c.perf.Sample(c.now())
		return nil
	})
	if err == nil {
		err = c.timed(StepResolve, func() error {
			controls = c.controller.ResolveFrame()
			return nil
		})
	}
	if err == nil {
		err = c.timed(StepTick, func() error {
			if err := c.engine.Tick(c.ctx, controls); err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			return nil
		})
	}
	if err == nil {
		err = c.timed(StepRender, func() error {
			if err := c.engine.Render(c.ctx); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return nil
		})
	}
	if err == nil {
		err = c.timed(StepDraw, func() error {
			snap, err := c.engine.Snapshot(c.ctx)
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			c.last.Score = snap.Score
			c.last.Lines = snap.Lines
			if err := c.renderer.Draw(c.surface, snap, c.controller.Raw()); err != nil {
				return fmt.Errorf("draw: %w", err)
			}
			return nil
		})
	}
	if err == nil {
		err = c.timed(StepGameOver, func() error {
			done, err := c.engine.GameOver(c.ctx)
			if err != nil {
				return fmt.Errorf("game over: %w", err)
			}
			over = done
			return nil
		})
	}

	switch {
	case err != nil:
		c.fail(err)
	case over:
		c.finish()
	default:
		c.schedule()
	}
}

func (c *Clock) finish() {
	c.state = Stopped
	c.log.Info("game over",
		zap.Uint32("score", c.last.Score),
		zap.Uint32("lines", c.last.Lines),
		zap.Int64("frames", c.frames),
	)
	if c.onGameOver != nil {
		c.onGameOver(c.last)
	}
}

// fail stops the clock. An error raised after the run context ended is the
// engine being torn down, not a failure, so Err stays nil.
func (c *Clock) fail(err error) {
	c.state = Stopped
	if c.ctx.Err() != nil {
		c.log.Info("clock interrupted", zap.Error(err), zap.Int64("frames", c.frames))
		return
	}
	c.err = err
	c.log.Error("engine failure", zap.Error(err), zap.Int64("frames", c.frames))
}

// Cancel stops the clock and drops the pending frame callback.
func (c *Clock) Cancel() {
	if c.state == Running {
		c.scheduler.Cancel(c.handle)
		c.log.Info("clock cancelled", zap.Int64("frames", c.frames))
	}
	c.state = Stopped
}

// State returns the lifecycle state.
func (c *Clock) State() State {
	return c.state
}

// Err returns the engine error that stopped the clock, if any. It is nil when
// the clock stopped because its context ended.
func (c *Clock) Err() error {
	return c.err
}

// Frames returns the number of frame callbacks run.
func (c *Clock) Frames() int64 {
	return c.frames
}

// Result returns the latest score, lines and frame count.
func (c *Clock) Result() Result {
	return c.last
}

// Perf returns the frame rate monitor.
func (c *Clock) Perf() *PerfMonitor {
	return c.perf
}

// Stats returns per-step timing statistics.
func (c *Clock) Stats() *Stats {
	s := &Stats{
		Frames: c.frames,
		Steps:  make([]StepStats, numSteps),
	}
	for i := range c.stats {
		s.Steps[i] = c.stats[i].export(Step(i).String())
	}
	return s
}
