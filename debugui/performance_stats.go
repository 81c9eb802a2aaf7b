package debugui

import (
	"fmt"
	"math"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/frame"
)

// ClockSource is the part of frame.Clock the stats window reads.
type ClockSource interface {
	State() frame.State
	Result() frame.Result
	Perf() *frame.PerfMonitor
	Stats() *frame.Stats
}

// PerformanceStats renders frame rate, per-step timings and the running score.
type PerformanceStats struct {
	clock        ClockSource
	frameHistory []float32
}

func NewPerformanceStats(clock ClockSource) *PerformanceStats {
	return &PerformanceStats{
		clock:        clock,
		frameHistory: make([]float32, frame.PerfWindow),
	}
}

// frameTimes converts per-frame FPS values into milliseconds, right aligned
// in dst so the newest frame is always last. Infinite rates map to zero.
func frameTimes(fps []float64, dst []float32) {
	clear(dst)
	offset := len(dst) - len(fps)
	for i, v := range fps {
		if offset+i < 0 {
			continue
		}
		if v > 0 && !math.IsInf(v, 1) {
			dst[offset+i] = float32(1000.0 / v)
		}
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
}

func (ps *PerformanceStats) Render() {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	perf := ps.clock.Perf()
	result := ps.clock.Result()

	imgui.Text(fmt.Sprintf("State: %s", ps.clock.State()))
	imgui.Text(fmt.Sprintf("Frames: %d", result.Frames))
	imgui.Text(fmt.Sprintf("Score: %d  Lines: %d", result.Score, result.Lines))

	imgui.Separator()
	imgui.Text(perf.String())

	frameTimes(perf.Window(), ps.frameHistory)
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Frame Steps") {
		stats := ps.clock.Stats()
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StepStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Step")
			imgui.TableSetupColumn("Count")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, step := range stats.Steps {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(step.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", step.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(formatDuration(step.LastDuration))
				imgui.TableNextColumn()
				imgui.Text(formatDuration(step.AvgDuration))
				imgui.TableNextColumn()
				imgui.Text(formatDuration(step.MaxDuration))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
