package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/blockfall/frame"
	"github.com/plus3/blockfall/input"
	"github.com/plus3/blockfall/internal/cli"
	"github.com/plus3/blockfall/render"
	"github.com/plus3/blockfall/render/raster"
	"go.uber.org/zap"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the soak should run for.")
	maxFrames := flag.Int64("frames", 0, "Stop after this many frames; 0 runs until the duration or game over.")
	enginePath := flag.String("engine", "", "Path to the compiled engine module; also configurable via "+cli.EnvEngine+".")
	demo := flag.Bool("demo", false, "Play the scripted demo engine instead of a module.")
	seed := flag.Uint64("seed", 1, "Seed for the engine and the scripted input.")
	pngPath := flag.String("png", "", "Write the final canvas to this PNG file.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	debug := flag.Bool("debug", false, "Enable development logging.")
	flag.Parse()

	zlog, err := cli.NewLogger(*debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	runID := uuid.New()
	zlog = zlog.With(zap.String("run", runID.String()))

	log.Println("Starting soak run...")

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	opts := cli.EngineOptions{
		Path:   cli.EnvString(*enginePath, cli.EnvEngine, ""),
		Demo:   *demo,
		Seed:   *seed,
		Seeded: true,
	}
	eng, release, err := cli.LoadEngine(ctx, opts, zlog)
	if err != nil {
		zlog.Fatal("load engine", zap.Error(err))
	}
	defer release()

	surface, err := raster.New(input.CanvasWidth, input.CanvasHeight)
	if err != nil {
		zlog.Fatal("create surface", zap.Error(err))
	}

	controller := input.NewController()
	manual := frame.NewManualScheduler()
	script := newInputScript(rand.New(rand.NewPCG(*seed, *seed+1)))

	report := &Report{
		RunID:          runID.String(),
		Engine:         engineName(opts),
		Duration:       *duration,
		MaxFrames:      *maxFrames,
		Seed:           *seed,
		GCPauseMetrics: *gcPauseMetrics,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	var clock *frame.Clock
	sched := &scriptedScheduler{
		manual: manual,
		before: func() {
			for _, ev := range script.next() {
				controller.ApplyEvent(ev)
			}
		},
		after: func(d time.Duration) {
			report.FrameTime.Samples = append(report.FrameTime.Samples, d)
			if *maxFrames > 0 && clock.Frames() >= *maxFrames {
				clock.Cancel()
			}
		},
	}
	clock = frame.NewClock(eng, controller, render.NewRenderer(), surface, sched,
		frame.WithLogger(zlog),
		frame.WithGameOver(func(r frame.Result) { report.GameOver = true }),
	)

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running for %s...\n", *duration)
	startTime := time.Now()
	if err := clock.Start(ctx); err != nil {
		zlog.Fatal("start", zap.Error(err))
	}
	runErr := manual.Run(ctx, 0)
	clock.Cancel()

	report.TotalTime = time.Since(startTime)
	report.Result = clock.Result()
	report.Steps = clock.Stats().Steps
	report.Perf = clock.Perf().String()
	report.FrameTime.Finalize()
	if err := clock.Err(); err != nil {
		report.EngineError = err.Error()
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Soak finished.")
	if runErr != nil && ctx.Err() == nil {
		zlog.Error("scheduler", zap.Error(runErr))
	}

	if *pngPath != "" {
		if err := writePNG(*pngPath, surface.Canvas()); err != nil {
			zlog.Error("write png", zap.Error(err))
		} else {
			zlog.Info("wrote canvas", zap.String("path", *pngPath))
		}
	}

	fmt.Println("\n\n--- Soak Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	if report.EngineError != "" {
		release()
		zlog.Sync()
		os.Exit(1)
	}
}

func engineName(opts cli.EngineOptions) string {
	if opts.Demo {
		return "scripted demo"
	}
	return opts.Path
}

func writePNG(path string, canvas image.Image) error {
	framed := image.NewRGBA(canvas.Bounds())
	raster.Blit(framed, canvas, color.White)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, framed); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
