// Package wasm runs the engine from its compiled WebAssembly module.
package wasm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// Export names produced by the bindings generator for the engine's Game type.
const (
	exportNew       = "game_new"
	exportFree      = "__wbg_game_free"
	exportTick      = "game_tick"
	exportRender    = "game_rendering"
	exportFieldPtr  = "game_field_ptr"
	exportClearPtr  = "game_clear_ptr"
	exportNextPtr   = "game_next_ptr"
	exportHoldPtr   = "game_hold_ptr"
	exportRatio     = "game_get_interval_ratio"
	exportScore     = "game_get_score"
	exportLines     = "game_get_clearlines"
	exportCanHold   = "game_can_use_hold"
	exportGameOver  = "game_is_gameover"
	engineInstance  = "engine"
	tickArgs        = 1 + input.NumButtons
	defaultSeedSalt = 0x9e3779b97f4a7c15
)

type config struct {
	seed    uint64
	seeded  bool
	log     *zap.Logger
	runtime wazero.RuntimeConfig
}

// Option configures Load.
type Option func(*config)

// WithSeed makes the engine's random source deterministic.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithLogger sets the logger used while wiring imports.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithRuntimeConfig overrides the wazero runtime configuration.
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *config) { c.runtime = rc }
}

// Engine drives one game instance inside a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	game    uint64

	tick, render                       api.Function
	fieldPtr, clearPtr, nextPtr, holdPtr api.Function
	ratio, score, lines                api.Function
	canHold, gameOver                  api.Function
	free                               api.Function
}

var _ engine.Engine = (*Engine)(nil)

// LoadFile reads a compiled engine module from disk and starts a game.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine module: %w", err)
	}
	return Load(ctx, bin, opts...)
}

// Load compiles the engine module, satisfies its imports and starts a game.
func Load(ctx context.Context, bin []byte, opts ...Option) (*Engine, error) {
	cfg := config{
		log:     zap.NewNop(),
		runtime: wazero.NewRuntimeConfig().WithCloseOnContextDone(true),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var rng *rand.Rand
	if cfg.seeded {
		rng = rand.New(rand.NewPCG(cfg.seed, cfg.seed^defaultSeedSalt))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	r := wazero.NewRuntimeWithConfig(ctx, cfg.runtime)
	e, err := load(ctx, r, bin, &hostImports{rng: rng, log: cfg.log})
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	cfg.log.Info("engine loaded", zap.Int("bytes", len(bin)), zap.Uint64("instance", e.game))
	return e, nil
}

func load(ctx context.Context, r wazero.Runtime, bin []byte, imports *hostImports) (*Engine, error) {
	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("compile engine module: %w", err)
	}
	if err := imports.instantiate(ctx, r, compiled); err != nil {
		return nil, err
	}
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(engineInstance))
	if err != nil {
		return nil, fmt.Errorf("instantiate engine module: %w", err)
	}

	e := &Engine{runtime: r, module: mod}
	required := []struct {
		name string
		dst  *api.Function
	}{
		{exportTick, &e.tick},
		{exportRender, &e.render},
		{exportFieldPtr, &e.fieldPtr},
		{exportClearPtr, &e.clearPtr},
		{exportNextPtr, &e.nextPtr},
		{exportHoldPtr, &e.holdPtr},
		{exportRatio, &e.ratio},
		{exportScore, &e.score},
		{exportLines, &e.lines},
		{exportCanHold, &e.canHold},
		{exportGameOver, &e.gameOver},
	}
	for _, req := range required {
		fn := mod.ExportedFunction(req.name)
		if fn == nil {
			return nil, fmt.Errorf("%w: %s", engine.ErrMissingExport, req.name)
		}
		*req.dst = fn
	}
	if got := len(e.tick.Definition().ParamTypes()); got != tickArgs {
		return nil, fmt.Errorf("%s takes %d params, want %d", exportTick, got, tickArgs)
	}
	e.free = mod.ExportedFunction(exportFree)

	newGame := mod.ExportedFunction(exportNew)
	if newGame == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrMissingExport, exportNew)
	}
	res, err := newGame.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportNew, err)
	}
	e.game = uint64(api.DecodeU32(res[0]))
	return e, nil
}

func boolArg(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// exportName returns the name fn is exported under. Definition().Name() is
// empty for functions without a name section.
func exportName(fn api.Function) string {
	if names := fn.Definition().ExportNames(); len(names) > 0 {
		return names[0]
	}
	return fn.Definition().DebugName()
}

func (e *Engine) call(ctx context.Context, fn api.Function, args ...uint64) (uint64, error) {
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", exportName(fn), err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0], nil
}

// Tick advances the simulation with the buttons in engine order.
func (e *Engine) Tick(ctx context.Context, controls input.Controls) error {
	args := make([]uint64, 0, tickArgs)
	args = append(args, e.game)
	for _, pressed := range controls {
		args = append(args, boolArg(pressed))
	}
	_, err := e.call(ctx, e.tick, args...)
	return err
}

// Render refreshes the engine's snapshot buffers.
func (e *Engine) Render(ctx context.Context) error {
	_, err := e.call(ctx, e.render, e.game)
	return err
}

// view returns a slice aliasing module memory at the offset a pointer getter
// returned. It stays valid only until the next call into the module, which
// may grow or overwrite memory.
func (e *Engine) view(name string, ptr uint64, n uint32) ([]byte, error) {
	offset := api.DecodeU32(ptr)
	buf, ok := e.module.Memory().Read(offset, n)
	if !ok {
		return nil, fmt.Errorf("%w: %s view %#x+%d is outside memory", engine.ErrShortBuffer, name, offset, n)
	}
	return buf, nil
}

// Snapshot calls every getter first and only then takes the buffer views, so
// no view outlives a module call.
func (e *Engine) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	getters := []api.Function{
		e.fieldPtr, e.clearPtr, e.nextPtr, e.holdPtr,
		e.ratio, e.score, e.lines, e.canHold,
	}
	var vals [8]uint64
	for i, fn := range getters {
		v, err := e.call(ctx, fn, e.game)
		if err != nil {
			return engine.Snapshot{}, err
		}
		vals[i] = v
	}

	s := engine.Snapshot{
		IntervalRatio: api.DecodeF32(vals[4]),
		Score:         api.DecodeU32(vals[5]),
		Lines:         api.DecodeU32(vals[6]),
		CanHold:       api.DecodeU32(vals[7]) != 0,
	}
	views := []struct {
		fn  api.Function
		ptr uint64
		n   uint32
		dst *[]byte
	}{
		{e.fieldPtr, vals[0], engine.FieldSize, &s.Field},
		{e.clearPtr, vals[1], engine.FieldSize, &s.Clear},
		{e.nextPtr, vals[2], engine.NextSize, &s.Next},
		{e.holdPtr, vals[3], engine.HoldSize, &s.Hold},
	}
	for _, v := range views {
		buf, err := e.view(exportName(v.fn), v.ptr, v.n)
		if err != nil {
			return engine.Snapshot{}, err
		}
		*v.dst = buf
	}
	return s, nil
}

// GameOver reports whether the engine has ended the game.
func (e *Engine) GameOver(ctx context.Context) (bool, error) {
	v, err := e.call(ctx, e.gameOver, e.game)
	if err != nil {
		return false, err
	}
	return api.DecodeU32(v) != 0, nil
}

// Close frees the game instance and tears down the runtime.
func (e *Engine) Close(ctx context.Context) error {
	if e.free != nil && !e.module.IsClosed() {
		args := []uint64{e.game}
		// Newer bindings pass an extra ownership flag.
		for len(args) < len(e.free.Definition().ParamTypes()) {
			args = append(args, 1)
		}
		if _, err := e.free.Call(ctx, args...); err != nil {
			_ = e.runtime.Close(ctx)
			return fmt.Errorf("%s: %w", exportFree, err)
		}
	}
	return e.runtime.Close(ctx)
}
