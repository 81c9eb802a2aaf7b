package frame_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plus3/blockfall/engine/enginetest"
	"github.com/plus3/blockfall/frame"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine     *enginetest.Engine
	controller *input.Controller
	surface    *rendertest.Recorder
	scheduler  *frame.ManualScheduler
	clock      *frame.Clock
	results    []frame.Result
	now        time.Time
}

func newHarness(t *testing.T, opts ...frame.ClockOption) *harness {
	t.Helper()
	h := &harness{
		engine:     enginetest.New(),
		controller: input.NewController(),
		surface:    &rendertest.Recorder{},
		scheduler:  frame.NewManualScheduler(),
		now:        time.Unix(1000, 0),
	}
	h.engine.OnTick = func(*enginetest.Engine, input.Controls) {
		h.now = h.now.Add(16 * time.Millisecond)
	}
	opts = append([]frame.ClockOption{
		frame.WithGameOver(func(r frame.Result) { h.results = append(h.results, r) }),
		frame.WithNow(func() time.Time { return h.now }),
	}, opts...)
	h.clock = frame.NewClock(h.engine, h.controller, render.NewRenderer(), h.surface, h.scheduler, opts...)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.clock.Start(context.Background()))
}

func TestClockStart(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, frame.Idle, h.clock.State())

	h.start(t)

	assert.Equal(t, frame.Running, h.clock.State())
	assert.Equal(t, []string{enginetest.CallRender, enginetest.CallSnapshot}, h.engine.Calls)
	assert.Empty(t, h.engine.Ticks)
	assert.True(t, h.scheduler.Pending())

	texts := h.surface.Texts()
	require.GreaterOrEqual(t, len(texts), 5)
	assert.Equal(t, []string{"Hold", "Next", "Score", "Lines", "↑touch"}, texts[:5])
	assert.Equal(t, []string{"Score", "0", "Lines", "0"}, texts[5:])

	assert.ErrorIs(t, h.clock.Start(context.Background()), frame.ErrStarted)
}

func TestClockFrameOrder(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.engine.Calls = nil

	require.True(t, h.scheduler.Step())

	assert.Equal(t, []string{
		enginetest.CallTick,
		enginetest.CallRender,
		enginetest.CallSnapshot,
		enginetest.CallGameOver,
	}, h.engine.Calls)
	assert.True(t, h.scheduler.Pending())
	assert.Equal(t, int64(1), h.clock.Frames())
}

func TestClockDebouncesIntoTick(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.controller.ApplyEvent(input.Event{Kind: input.KeyDown, Key: input.KeyArrowDown})
	h.controller.ApplyEvent(input.Event{Kind: input.KeyDown, Key: input.KeyZ})
	for i := 0; i < 22; i++ {
		require.True(t, h.scheduler.Step())
	}

	require.Len(t, h.engine.Ticks, 22)
	assert.True(t, h.engine.Ticks[0].Pressed(input.ButtonDown))
	assert.True(t, h.engine.Ticks[0].Pressed(input.ButtonA))
	for i := 1; i < 20; i++ {
		assert.False(t, h.engine.Ticks[i].Pressed(input.ButtonDown), "frame %d", i+1)
		assert.False(t, h.engine.Ticks[i].Pressed(input.ButtonA), "frame %d", i+1)
	}
	assert.True(t, h.engine.Ticks[20].Pressed(input.ButtonDown))
	assert.True(t, h.engine.Ticks[21].Pressed(input.ButtonDown))
	assert.False(t, h.engine.Ticks[21].Pressed(input.ButtonA))
}

func TestClockStopsOnGameOver(t *testing.T) {
	h := newHarness(t)
	h.engine.GameOverAfter = 3
	h.engine.OnTick = func(e *enginetest.Engine, _ input.Controls) {
		e.Score += 100
		e.Lines++
	}
	h.start(t)

	require.NoError(t, h.scheduler.Run(context.Background(), 0))

	assert.Equal(t, frame.Stopped, h.clock.State())
	assert.NoError(t, h.clock.Err())
	assert.Len(t, h.engine.Ticks, 3)
	assert.False(t, h.scheduler.Pending())
	assert.Equal(t, []frame.Result{{Score: 300, Lines: 3, Frames: 3}}, h.results)

	// Stopped is terminal: nothing runs again.
	assert.False(t, h.scheduler.Step())
	assert.Len(t, h.results, 1)
}

func TestClockEngineFailure(t *testing.T) {
	boom := errors.New("boom")

	for _, call := range []string{enginetest.CallTick, enginetest.CallRender, enginetest.CallSnapshot, enginetest.CallGameOver} {
		t.Run(call, func(t *testing.T) {
			h := newHarness(t)
			h.start(t)
			h.engine.Err = boom
			h.engine.ErrCall = call

			require.True(t, h.scheduler.Step())

			assert.Equal(t, frame.Stopped, h.clock.State())
			assert.ErrorIs(t, h.clock.Err(), boom)
			assert.False(t, h.scheduler.Pending())
			assert.Empty(t, h.results)
		})
	}
}

func TestClockContextEndIsNotFailure(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.clock.Start(ctx))
	require.True(t, h.scheduler.Step())

	// A runtime closed on context end fails the next call.
	cancel()
	h.engine.Err = errors.New("module closed with context canceled")
	h.engine.ErrCall = enginetest.CallRender

	require.True(t, h.scheduler.Step())

	assert.Equal(t, frame.Stopped, h.clock.State())
	assert.NoError(t, h.clock.Err())
	assert.False(t, h.scheduler.Pending())
	assert.Empty(t, h.results)
}

func TestClockBootstrapFailure(t *testing.T) {
	h := newHarness(t)
	h.engine.Err = errors.New("no module")
	h.engine.ErrCall = enginetest.CallRender

	err := h.clock.Start(context.Background())
	assert.ErrorIs(t, err, h.engine.Err)
	assert.Equal(t, frame.Stopped, h.clock.State())
	assert.False(t, h.scheduler.Pending())
}

func TestClockCancel(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	require.True(t, h.scheduler.Step())

	h.clock.Cancel()

	assert.Equal(t, frame.Stopped, h.clock.State())
	assert.False(t, h.scheduler.Step())
	assert.Len(t, h.engine.Ticks, 1)
	assert.Empty(t, h.results)
}

func TestClockPerfWindow(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	for i := 0; i < 150; i++ {
		require.True(t, h.scheduler.Step())
	}

	stats := h.clock.Perf().Stats()
	assert.Equal(t, frame.PerfWindow, stats.Samples)
	assert.Len(t, h.clock.Perf().Window(), frame.PerfWindow)
	assert.InDelta(t, 62.5, stats.Latest, 1e-9)
	assert.InDelta(t, 62.5, stats.Mean, 1e-9)
	assert.InDelta(t, 62.5, stats.Min, 1e-9)
	assert.InDelta(t, 62.5, stats.Max, 1e-9)
}

func TestClockStats(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	for i := 0; i < 5; i++ {
		require.True(t, h.scheduler.Step())
	}

	stats := h.clock.Stats()
	assert.Equal(t, int64(5), stats.Frames)
	require.Len(t, stats.Steps, 6)

	names := make([]string, 0, len(stats.Steps))
	for _, s := range stats.Steps {
		names = append(names, s.Name)
		assert.Equal(t, int64(5), s.ExecutionCount)
		assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
	}
	assert.Equal(t, []string{"Sample", "Resolve", "Tick", "Render", "Draw", "GameOver"}, names)

	// The fake clock only moves during Tick.
	assert.Equal(t, 16*time.Millisecond, stats.Steps[frame.StepTick].LastDuration)
	assert.Equal(t, time.Duration(0), stats.Steps[frame.StepDraw].MaxDuration)
}
