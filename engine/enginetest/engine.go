// Package enginetest provides a scripted engine for tests.
package enginetest

import (
	"context"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
)

// Call names recorded by Engine.
const (
	CallTick     = "tick"
	CallRender   = "render"
	CallSnapshot = "snapshot"
	CallGameOver = "gameover"
)

// Engine is an in-memory engine. Field, Clear, Next and Hold are copied into
// fresh buffers on every Render, so a snapshot taken before a later Render
// keeps stale data, the same way a relocated foreign buffer would.
type Engine struct {
	Field [engine.FieldSize]byte
	Clear [engine.FieldSize]byte
	Next  [engine.NextSize]byte
	Hold  [engine.HoldSize]byte

	IntervalRatio float32
	Score         uint32
	Lines         uint32
	CanHold       bool

	// GameOverAfter ends the game once this many ticks have run. Zero never ends it.
	GameOverAfter int

	// Err, when set, is returned from the named call.
	Err     error
	ErrCall string

	// OnTick runs after each tick is recorded.
	OnTick func(e *Engine, controls input.Controls)

	Ticks    []input.Controls
	Calls    []string
	rendered engine.Snapshot
}

// New returns an engine with an empty board and hold available.
func New() *Engine {
	e := &Engine{CanHold: true}
	for i := range e.Field {
		e.Field[i] = 2
	}
	for i := range e.Next {
		e.Next[i] = 2
	}
	for i := range e.Hold {
		e.Hold[i] = 2
	}
	return e
}

func (e *Engine) fail(call string) error {
	if e.Err != nil && e.ErrCall == call {
		return e.Err
	}
	return nil
}

func (e *Engine) Tick(ctx context.Context, controls input.Controls) error {
	e.Calls = append(e.Calls, CallTick)
	if err := e.fail(CallTick); err != nil {
		return err
	}
	e.Ticks = append(e.Ticks, controls)
	if e.OnTick != nil {
		e.OnTick(e, controls)
	}
	return nil
}

func (e *Engine) Render(ctx context.Context) error {
	e.Calls = append(e.Calls, CallRender)
	if err := e.fail(CallRender); err != nil {
		return err
	}
	e.rendered = engine.Snapshot{
		Field:         append([]byte(nil), e.Field[:]...),
		Clear:         append([]byte(nil), e.Clear[:]...),
		Next:          append([]byte(nil), e.Next[:]...),
		Hold:          append([]byte(nil), e.Hold[:]...),
		IntervalRatio: e.IntervalRatio,
		Score:         e.Score,
		Lines:         e.Lines,
		CanHold:       e.CanHold,
	}
	return nil
}

func (e *Engine) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	e.Calls = append(e.Calls, CallSnapshot)
	if err := e.fail(CallSnapshot); err != nil {
		return engine.Snapshot{}, err
	}
	return e.rendered, nil
}

func (e *Engine) GameOver(ctx context.Context) (bool, error) {
	e.Calls = append(e.Calls, CallGameOver)
	if err := e.fail(CallGameOver); err != nil {
		return false, err
	}
	return e.GameOverAfter > 0 && len(e.Ticks) >= e.GameOverAfter, nil
}
