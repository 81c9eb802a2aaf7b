package frame

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// PerfWindow is the number of frames the performance monitor remembers.
const PerfWindow = 100

// PerfStats summarises the frame rate over the window.
type PerfStats struct {
	Latest  float64
	Mean    float64
	Min     float64
	Max     float64
	Samples int
}

// PerfMonitor tracks frames per second over the last PerfWindow frames.
// It is purely observational.
type PerfMonitor struct {
	fps   []float64
	last  time.Time
	stats PerfStats
}

// NewPerfMonitor starts measuring from start.
func NewPerfMonitor(start time.Time) *PerfMonitor {
	return &PerfMonitor{
		fps:  make([]float64, 0, PerfWindow+1),
		last: start,
	}
}

// Sample records a frame at now. A zero delta counts as infinite FPS.
func (p *PerfMonitor) Sample(now time.Time) PerfStats {
	delta := now.Sub(p.last)
	p.last = now

	fps := math.Inf(1)
	if delta > 0 {
		fps = float64(time.Second) / float64(delta)
	}

	p.fps = append(p.fps, fps)
	if len(p.fps) > PerfWindow {
		p.fps = append(p.fps[:0], p.fps[1:]...)
	}

	sum := 0.0
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range p.fps {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	p.stats = PerfStats{
		Latest:  fps,
		Mean:    sum / float64(len(p.fps)),
		Min:     lo,
		Max:     hi,
		Samples: len(p.fps),
	}
	return p.stats
}

// Stats returns the figures from the latest sample.
func (p *PerfMonitor) Stats() PerfStats {
	return p.stats
}

// Window returns a copy of the remembered per-frame FPS values, oldest first.
func (p *PerfMonitor) Window() []float64 {
	return append([]float64(nil), p.fps...)
}

func roundFPS(v float64) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// String renders the four-line frame rate panel.
func (p *PerfMonitor) String() string {
	s := p.stats
	return fmt.Sprintf("Frames per Second:\n         latest = %s\navg of last %d = %s\nmin of last %d = %s\nmax of last %d = %s",
		roundFPS(s.Latest),
		PerfWindow, roundFPS(s.Mean),
		PerfWindow, roundFPS(s.Min),
		PerfWindow, roundFPS(s.Max),
	)
}
