// Package cli holds the flag, logger and engine wiring shared by the
// commands.
package cli

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/engine/enginetest"
	"github.com/plus3/blockfall/engine/wasm"
	"go.uber.org/zap"
)

// Environment variables read when the matching flag is unset.
const (
	EnvEngine = "BLOCKFALL_ENGINE"
	EnvFB     = "BLOCKFALL_FB"
	EnvSeed   = "BLOCKFALL_SEED"
)

// ErrNoEngine is returned when no engine module was configured.
var ErrNoEngine = errors.New("no engine module: pass -engine or set " + EnvEngine)

// EnvString returns value if set, else the environment variable, else
// fallback.
func EnvString(value, env, fallback string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// EnvSeedValue parses a seed from the environment. ok is false when unset or
// malformed.
func EnvSeedValue() (seed uint64, ok bool) {
	v := os.Getenv(EnvSeed)
	if v == "" {
		return 0, false
	}
	seed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return seed, true
}

// NewLogger builds the process logger.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// EngineOptions selects the engine a command plays.
type EngineOptions struct {
	// Path to the compiled engine module.
	Path string
	// Demo plays the scripted in-memory engine instead of a module.
	Demo   bool
	Seed   uint64
	Seeded bool
}

// LoadEngine returns the configured engine and a function releasing it.
func LoadEngine(ctx context.Context, opts EngineOptions, log *zap.Logger) (engine.Engine, func(), error) {
	if opts.Demo {
		log.Info("using scripted demo engine")
		return enginetest.New(), func() {}, nil
	}
	if opts.Path == "" {
		return nil, nil, ErrNoEngine
	}

	wopts := []wasm.Option{wasm.WithLogger(log)}
	if opts.Seeded {
		wopts = append(wopts, wasm.WithSeed(opts.Seed))
	}
	e, err := wasm.LoadFile(ctx, opts.Path, wopts...)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := e.Close(context.Background()); err != nil {
			log.Warn("close engine", zap.Error(err))
		}
	}
	return e, release, nil
}
