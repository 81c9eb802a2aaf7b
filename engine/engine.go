// Package engine defines the contract of the external game engine that owns
// board state, piece logic, scoring and timing.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/plus3/blockfall/input"
)

// Grid sizes exposed by the engine.
const (
	FieldRows = 20
	FieldCols = 10
	FieldSize = FieldRows * FieldCols

	PreviewSide  = 4
	PreviewSize  = PreviewSide * PreviewSide
	NextPieces   = 3
	NextSize     = NextPieces * PreviewSize
	HoldSize     = PreviewSize
	ClearFlagSet = 1
)

var (
	// ErrMissingExport is returned when the engine module lacks a required function.
	ErrMissingExport = errors.New("engine: missing export")
	// ErrShortBuffer is returned when a buffer view is smaller than its grid.
	ErrShortBuffer = errors.New("engine: short buffer")
)

// Engine is the simulation collaborator. Render must be called before
// Snapshot within a frame.
type Engine interface {
	Tick(ctx context.Context, controls input.Controls) error
	Render(ctx context.Context) error
	Snapshot(ctx context.Context) (Snapshot, error)
	GameOver(ctx context.Context) (bool, error)
}

// Snapshot is the engine state sampled for one frame. The byte slices may
// alias engine memory: they are valid only until the next call into the
// engine and must not be retained across frames.
type Snapshot struct {
	Field []byte // colour index per cell, row major
	Clear []byte // ClearFlagSet where the cell is mid clear animation
	Next  []byte // three 4x4 previews, nearest first
	Hold  []byte // one 4x4 preview

	IntervalRatio float32 // progress of the running line clear, 0..1
	Score         uint32
	Lines         uint32
	CanHold       bool
}

// Validate checks every buffer is large enough for its grid.
func (s Snapshot) Validate() error {
	checks := []struct {
		name string
		buf  []byte
		want int
	}{
		{"field", s.Field, FieldSize},
		{"clear", s.Clear, FieldSize},
		{"next", s.Next, NextSize},
		{"hold", s.Hold, HoldSize},
	}
	for _, c := range checks {
		if len(c.buf) < c.want {
			return fmt.Errorf("%w: %s has %d bytes, want %d", ErrShortBuffer, c.name, len(c.buf), c.want)
		}
	}
	return nil
}

// NextPreview returns the 4x4 preview of the i-th upcoming piece (0 = next).
func (s Snapshot) NextPreview(i int) []byte {
	return s.Next[i*PreviewSize : (i+1)*PreviewSize]
}

// Clearing reports whether the field cell at idx is mid clear animation.
func (s Snapshot) Clearing(idx int) bool {
	return s.Clear[idx] == ClearFlagSet
}
