package main

import (
	"math/rand/v2"
	"time"

	"github.com/plus3/blockfall/frame"
	"github.com/plus3/blockfall/input"
)

var scriptKeys = []input.KeyCode{
	input.KeyZ, input.KeySpace, input.KeyX, input.KeyShift,
	input.KeyArrowUp, input.KeyArrowDown, input.KeyArrowLeft, input.KeyArrowRight,
}

// glyphTaps are canvas points on each on-screen control.
var glyphTaps = [][2]float64{
	{255, 435}, {185, 466}, {75, 420}, {75, 482}, {106, 451}, {44, 451}, {40, 110},
}

// inputScript produces a random but reproducible stream of device events.
type inputScript struct {
	rng  *rand.Rand
	held map[input.KeyCode]bool
	out  []input.Event
}

func newInputScript(rng *rand.Rand) *inputScript {
	return &inputScript{rng: rng, held: make(map[input.KeyCode]bool)}
}

// next returns the events arriving before the coming frame.
func (s *inputScript) next() []input.Event {
	s.out = s.out[:0]
	switch r := s.rng.IntN(100); {
	case r < 10:
		k := scriptKeys[s.rng.IntN(len(scriptKeys))]
		if s.held[k] {
			s.out = append(s.out, input.Event{Kind: input.KeyUp, Key: k})
			delete(s.held, k)
		} else {
			s.out = append(s.out, input.Event{Kind: input.KeyDown, Key: k})
			s.held[k] = true
		}
	case r < 13:
		p := glyphTaps[s.rng.IntN(len(glyphTaps))]
		s.out = append(s.out, input.Event{Kind: input.PointerDown, X: p[0], Y: p[1]})
	case r < 16:
		s.out = append(s.out, input.Event{Kind: input.PointerUp})
	}
	return s.out
}

// scriptedScheduler feeds scripted input before each frame and times it.
type scriptedScheduler struct {
	manual *frame.ManualScheduler
	before func()
	after  func(time.Duration)
}

func (s *scriptedScheduler) ScheduleNext(fn func()) frame.Handle {
	return s.manual.ScheduleNext(func() {
		s.before()
		start := time.Now()
		fn()
		s.after(time.Since(start))
	})
}

func (s *scriptedScheduler) Cancel(h frame.Handle) {
	s.manual.Cancel(h)
}
