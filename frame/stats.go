package frame

import "time"

// Step names one phase of a frame.
type Step int

const (
	StepSample Step = iota
	StepResolve
	StepTick
	StepRender
	StepDraw
	StepGameOver

	numSteps = 6
)

var stepNames = [numSteps]string{
	StepSample:   "Sample",
	StepResolve:  "Resolve",
	StepTick:     "Tick",
	StepRender:   "Render",
	StepDraw:     "Draw",
	StepGameOver: "GameOver",
}

func (s Step) String() string {
	if s < 0 || s >= numSteps {
		return "Unknown"
	}
	return stepNames[s]
}

// Stats provides statistics about clock execution.
type Stats struct {
	Frames int64
	Steps  []StepStats
}

// StepStats provides execution statistics for a single frame phase.
type StepStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type stepStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newStepStats() [numSteps]stepStatsInternal {
	var s [numSteps]stepStatsInternal
	for i := range s {
		s[i].minDuration = time.Duration(1<<63 - 1)
	}
	return s
}

func (s *stepStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

func (s *stepStatsInternal) export(name string) StepStats {
	avg := time.Duration(0)
	lo := s.minDuration
	if s.executionCount > 0 {
		avg = s.totalDuration / time.Duration(s.executionCount)
	} else {
		lo = 0
	}
	return StepStats{
		Name:           name,
		ExecutionCount: s.executionCount,
		MinDuration:    lo,
		MaxDuration:    s.maxDuration,
		AvgDuration:    avg,
		LastDuration:   s.lastDuration,
		TotalDuration:  s.totalDuration,
	}
}
