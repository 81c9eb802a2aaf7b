package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/plus3/blockfall/host"
	"github.com/plus3/blockfall/internal/cli"
	"go.uber.org/zap"
)

func main() {
	enginePath := flag.String("engine", "", "path to the compiled engine module; also configurable via "+cli.EnvEngine)
	demo := flag.Bool("demo", false, "play the scripted demo engine instead of a module")
	scale := flag.Float64("scale", 1.5, "initial window size relative to the 320x500 canvas")
	debug := flag.Bool("debug", false, "enable development logging and the Dear ImGui stats window")
	showFPS := flag.Bool("fps", false, "show the frame rate panel")
	useDialog := flag.Bool("dialog", false, "announce game over with a native message box")
	seed := flag.Uint64("seed", 0, "seed for the engine's random source; 0 picks one, also configurable via "+cli.EnvSeed)
	flag.Parse()

	log, err := cli.NewLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cli.EngineOptions{
		Path: cli.EnvString(*enginePath, cli.EnvEngine, ""),
		Demo: *demo,
	}
	if *seed != 0 {
		opts.Seed, opts.Seeded = *seed, true
	} else {
		opts.Seed, opts.Seeded = cli.EnvSeedValue()
	}

	eng, release, err := cli.LoadEngine(ctx, opts, log)
	if err != nil {
		log.Fatal("load engine", zap.Error(err))
	}
	defer release()

	var notifier host.Notifier = host.LogNotifier{Log: log}
	if *useDialog {
		notifier = host.DialogNotifier{Log: log}
	}

	game, err := host.New(ctx, host.Config{
		Engine:   eng,
		Scale:    *scale,
		ShowFPS:  *showFPS,
		Debug:    *debug,
		Notifier: notifier,
		Log:      log,
	})
	if err != nil {
		log.Fatal("create game", zap.Error(err))
	}

	if err := game.Run(); err != nil {
		log.Error("game stopped", zap.Error(err))
		release()
		log.Sync()
		os.Exit(1)
	}
	log.Info("bye", zap.Int64("frames", game.Clock().Frames()))
}
