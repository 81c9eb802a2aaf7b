package wasm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Memory layout of the test engine module.
const (
	modInstance  = 8
	modTickArgs  = 0x10
	modTicks     = 0x40
	modRandom    = 0x44
	modThrowMsg  = 0x200
	modFieldBuf  = 0x400
	modClearBuf  = 0x500
	modNextBuf   = 0x600
	modHoldBuf   = 0x700
	modLines     = 7
	modOverAfter = 3
)

const (
	valI32 = 0x7f
	valF32 = 0x7d
)

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint64(len(s))), s...)
}

func wasmVec(items ...[]byte) []byte {
	out := uleb(uint64(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func wasmSection(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint64(len(body)))...)
	return append(out, body...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint64(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint64(len(results)))...)
	return append(out, results...)
}

func i32Const(v int64) []byte { return append([]byte{0x41}, sleb(v)...) }
func localGet(i int) []byte   { return []byte{0x20, byte(i)} }

var (
	i32Load  = []byte{0x28, 0x02, 0x00}
	i32Store = []byte{0x36, 0x02, 0x00}
)

func code(instrs ...[]byte) []byte {
	body := []byte{0x00} // no locals
	for _, in := range instrs {
		body = append(body, in...)
	}
	body = append(body, 0x0b)
	return append(uleb(uint64(len(body))), body...)
}

type testFunc struct {
	export string
	typ    byte
	body   []byte
}

// Field, clear, next and hold contents served by the test module.
func testBuffers() (field, cleared, next, hold []byte) {
	field = make([]byte, engine.FieldSize)
	cleared = make([]byte, engine.FieldSize)
	for i := range field {
		field[i] = byte(i % 9)
	}
	for i := engine.FieldSize - engine.FieldCols; i < engine.FieldSize; i++ {
		cleared[i] = engine.ClearFlagSet
	}
	next = make([]byte, engine.NextSize)
	for i := range next {
		next[i] = byte(i % 7)
	}
	hold = make([]byte, engine.HoldSize)
	for i := range hold {
		hold[i] = 3
	}
	return field, cleared, next, hold
}

// testModule assembles a small engine with the same exports and imports as
// the generated bindings. game_tick records its arguments and counts ticks,
// throws when Hold is set, and game_is_gameover turns true after three ticks.
// Exports named in skip are left out.
func testModule(skip ...string) []byte {
	// Types: 0 ()->i32, 1 (i32 x8)->(), 2 (i32)->(), 3 (i32)->i32,
	// 4 (i32)->f32, 5 (i32 i32)->().
	types := wasmVec(
		funcType(nil, []byte{valI32}),
		funcType([]byte{valI32, valI32, valI32, valI32, valI32, valI32, valI32, valI32}, nil),
		funcType([]byte{valI32}, nil),
		funcType([]byte{valI32}, []byte{valI32}),
		funcType([]byte{valI32}, []byte{valF32}),
		funcType([]byte{valI32, valI32}, nil),
	)

	imports := wasmVec(
		append(append(wasmName("wbg"), wasmName("__wbg_randgenjs_5c1e0b9a")...), 0x00, 0x00),
		append(append(wasmName("wbg"), wasmName("__wbindgen_throw")...), 0x00, 0x05),
		append(append(wasmName("wbg"), wasmName("__wbg_log_77aa")...), 0x00, 0x02),
	)
	const (
		callRandom = 0
		callThrow  = 1
		numImports = 3
	)

	var tick [][]byte
	for i := 0; i < tickArgs; i++ {
		tick = append(tick, i32Const(int64(modTickArgs+4*i)), localGet(i), i32Store)
	}
	tick = append(tick,
		i32Const(modTicks), i32Const(modTicks), i32Load, i32Const(1), []byte{0x6a}, i32Store,
		localGet(tickArgs-1), []byte{0x04, 0x40},
		i32Const(modThrowMsg), i32Const(4), []byte{0x10, callThrow},
		[]byte{0x0b},
	)

	ratio := []byte{0x43, 0, 0, 0, 0}
	putF32(ratio[1:], 0.5)

	funcs := []testFunc{
		{exportNew, 0, code(i32Const(modInstance))},
		{exportTick, 1, code(tick...)},
		{exportRender, 2, code(i32Const(modRandom), []byte{0x10, callRandom}, i32Store)},
		{exportFieldPtr, 3, code(i32Const(modFieldBuf))},
		{exportClearPtr, 3, code(i32Const(modClearBuf))},
		{exportNextPtr, 3, code(i32Const(modNextBuf))},
		{exportHoldPtr, 3, code(i32Const(modHoldBuf))},
		{exportRatio, 4, code(ratio)},
		{exportScore, 3, code(i32Const(modTicks), i32Load, i32Const(100), []byte{0x6c})},
		{exportLines, 3, code(i32Const(modLines))},
		{exportCanHold, 3, code(i32Const(1))},
		{exportGameOver, 3, code(i32Const(modTicks), i32Load, i32Const(modOverAfter), []byte{0x4f})},
		// Traps unless the ownership flag is 1.
		{exportFree, 5, code(localGet(1), i32Const(1), []byte{0x47, 0x04, 0x40, 0x00, 0x0b})},
	}

	var typeIdx, exports, bodies [][]byte
	for i, f := range funcs {
		typeIdx = append(typeIdx, []byte{f.typ})
		bodies = append(bodies, f.body)
		skipped := false
		for _, s := range skip {
			skipped = skipped || s == f.export
		}
		if !skipped {
			exports = append(exports, append(append(wasmName(f.export), 0x00), uleb(uint64(numImports+i))...))
		}
	}
	exports = append(exports, append(wasmName("memory"), 0x02, 0x00))

	field, cleared, next, hold := testBuffers()
	segment := func(offset int64, data []byte) []byte {
		out := []byte{0x00}
		out = append(out, i32Const(offset)...)
		out = append(out, 0x0b)
		out = append(out, uleb(uint64(len(data)))...)
		return append(out, data...)
	}

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, wasmSection(1, types)...)
	mod = append(mod, wasmSection(2, imports)...)
	mod = append(mod, wasmSection(3, wasmVec(typeIdx...))...)
	mod = append(mod, wasmSection(5, wasmVec([]byte{0x00, 0x01}))...)
	mod = append(mod, wasmSection(7, wasmVec(exports...))...)
	mod = append(mod, wasmSection(10, wasmVec(bodies...))...)
	mod = append(mod, wasmSection(11, wasmVec(
		segment(modThrowMsg, []byte("boom")),
		segment(modFieldBuf, field),
		segment(modClearBuf, cleared),
		segment(modNextBuf, next),
		segment(modHoldBuf, hold),
	))...)
	return mod
}

func putF32(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func loadTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := Load(context.Background(), testModule(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.runtime.Close(context.Background()) })
	return e
}

func readU32s(t *testing.T, e *Engine, offset uint32, n int) []uint32 {
	t.Helper()
	out := make([]uint32, n)
	for i := range out {
		v, ok := e.module.Memory().ReadUint32Le(offset + uint32(4*i))
		require.True(t, ok)
		out[i] = v
	}
	return out
}

func TestEngineTickArguments(t *testing.T) {
	e := loadTestEngine(t)
	ctx := context.Background()

	var controls input.Controls
	controls[input.ButtonA] = true
	controls[input.ButtonDown] = true
	controls[input.ButtonLeft] = true
	require.NoError(t, e.Tick(ctx, controls))

	// Instance pointer, then A, B, Up, Down, Right, Left, Hold.
	assert.Equal(t, []uint32{modInstance, 1, 0, 0, 1, 0, 1, 0}, readU32s(t, e, modTickArgs, tickArgs))

	controls = input.Controls{}
	controls[input.ButtonB] = true
	controls[input.ButtonRight] = true
	require.NoError(t, e.Tick(ctx, controls))
	assert.Equal(t, []uint32{modInstance, 0, 1, 0, 0, 1, 0, 0}, readU32s(t, e, modTickArgs, tickArgs))
	assert.Equal(t, []uint32{2}, readU32s(t, e, modTicks, 1))
}

func TestEngineSnapshot(t *testing.T) {
	e := loadTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Tick(ctx, input.Controls{}))
	require.NoError(t, e.Tick(ctx, input.Controls{}))
	require.NoError(t, e.Render(ctx))

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	field, cleared, next, hold := testBuffers()
	assert.Equal(t, field, snap.Field)
	assert.Equal(t, cleared, snap.Clear)
	assert.Equal(t, next, snap.Next)
	assert.Equal(t, hold, snap.Hold)
	assert.True(t, snap.Clearing(engine.FieldSize-1))
	assert.False(t, snap.Clearing(0))

	assert.Equal(t, float32(0.5), snap.IntervalRatio)
	assert.Equal(t, uint32(200), snap.Score)
	assert.Equal(t, uint32(modLines), snap.Lines)
	assert.True(t, snap.CanHold)
}

func TestEngineGameOver(t *testing.T) {
	e := loadTestEngine(t)
	ctx := context.Background()

	for i := 0; i < modOverAfter; i++ {
		over, err := e.GameOver(ctx)
		require.NoError(t, err)
		assert.False(t, over, "after %d ticks", i)
		require.NoError(t, e.Tick(ctx, input.Controls{}))
	}

	over, err := e.GameOver(ctx)
	require.NoError(t, err)
	assert.True(t, over)
}

func TestEngineSeededRandom(t *testing.T) {
	const seed = 42
	e := loadTestEngine(t, WithSeed(seed))
	require.NoError(t, e.Render(context.Background()))

	want := rand.New(rand.NewPCG(seed, seed^defaultSeedSalt)).Uint32()
	assert.Equal(t, []uint32{want}, readU32s(t, e, modRandom, 1))
}

func TestEngineThrow(t *testing.T) {
	e := loadTestEngine(t)

	var controls input.Controls
	controls[input.ButtonHold] = true
	err := e.Tick(context.Background(), controls)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrThrown))
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), exportTick+": ")
}

func TestEngineClosePassesOwnershipFlag(t *testing.T) {
	e, err := Load(context.Background(), testModule())
	require.NoError(t, err)
	require.Len(t, e.free.Definition().ParamTypes(), 2)

	assert.NoError(t, e.Close(context.Background()))
	assert.True(t, e.module.IsClosed())
}

func TestEngineCloseAfterRuntimeClosed(t *testing.T) {
	e, err := Load(context.Background(), testModule())
	require.NoError(t, err)
	require.NoError(t, e.module.Close(context.Background()))

	assert.NoError(t, e.Close(context.Background()))
}

func TestLoadMissingExport(t *testing.T) {
	for _, name := range []string{exportNew, exportScore, exportGameOver} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), testModule(name))
			assert.ErrorIs(t, err, engine.ErrMissingExport)
			assert.ErrorContains(t, err, name)
		})
	}
}

func TestLoadWithoutFree(t *testing.T) {
	e, err := Load(context.Background(), testModule(exportFree))
	require.NoError(t, err)
	assert.Nil(t, e.free)
	assert.NoError(t, e.Close(context.Background()))
}

func TestExportName(t *testing.T) {
	e := loadTestEngine(t)
	assert.Equal(t, exportScore, exportName(e.score))
	assert.Equal(t, exportFieldPtr, exportName(e.fieldPtr))
}
