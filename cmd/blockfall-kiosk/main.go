//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plus3/blockfall/internal/cli"
	"github.com/plus3/blockfall/kiosk"
	"go.uber.org/zap"
)

func main() {
	enginePath := flag.String("engine", "", "path to the compiled engine module; also configurable via "+cli.EnvEngine)
	demo := flag.Bool("demo", false, "play the scripted demo engine instead of a module")
	fbPath := flag.String("fb", "", "framebuffer device; also configurable via "+cli.EnvFB)
	inputGlob := flag.String("input", "/dev/input/event*", "evdev devices to read keys from")
	fpsLimit := flag.Int("fps-limit", 60, "frames per second cap; 0 runs flat out")
	hold := flag.Duration("hold", 5*time.Second, "how long the game over screen stays up")
	debug := flag.Bool("debug", false, "enable development logging")
	seed := flag.Uint64("seed", 0, "seed for the engine's random source; 0 picks one")
	flag.Parse()

	log, err := cli.NewLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.EngineOptions{
		Path:   cli.EnvString(*enginePath, cli.EnvEngine, ""),
		Demo:   *demo,
		Seed:   *seed,
		Seeded: *seed != 0,
	}
	eng, release, err := cli.LoadEngine(ctx, opts, log)
	if err != nil {
		log.Fatal("load engine", zap.Error(err))
	}
	defer release()

	err = kiosk.Run(ctx, kiosk.Config{
		Engine:       eng,
		FBPath:       cli.EnvString(*fbPath, cli.EnvFB, "/dev/fb0"),
		InputGlob:    *inputGlob,
		FrameRate:    *fpsLimit,
		GameOverHold: *hold,
		Log:          log,
	})
	if err != nil {
		log.Error("kiosk stopped", zap.Error(err))
		release()
		log.Sync()
		os.Exit(1)
	}
}
