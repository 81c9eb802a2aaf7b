package wasm

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// ErrThrown carries a message the engine raised through __wbindgen_throw.
var ErrThrown = errors.New("engine threw")

type importKind int

const (
	importStub importKind = iota
	importRandom
	importThrow
)

// classifyImport picks a host implementation for an import by name. The
// bindings generator decorates names with a hash suffix, so matching is by
// substring.
func classifyImport(name string) importKind {
	flat := strings.ReplaceAll(strings.ToLower(name), "_", "")
	switch {
	case strings.Contains(flat, "randgenjs"):
		return importRandom
	case strings.HasSuffix(name, "wbindgen_throw"):
		return importThrow
	default:
		return importStub
	}
}

// hostImports satisfies every function the compiled module imports.
type hostImports struct {
	rng *rand.Rand
	log *zap.Logger
}

func (h *hostImports) instantiate(ctx context.Context, r wazero.Runtime, compiled wazero.CompiledModule) error {
	byModule := make(map[string][]api.FunctionDefinition)
	var order []string
	for _, def := range compiled.ImportedFunctions() {
		mod, _, _ := def.Import()
		if _, seen := byModule[mod]; !seen {
			order = append(order, mod)
		}
		byModule[mod] = append(byModule[mod], def)
	}

	for _, mod := range order {
		builder := r.NewHostModuleBuilder(mod)
		for _, def := range byModule[mod] {
			_, name, _ := def.Import()
			kind := classifyImport(name)
			if kind == importStub {
				h.log.Debug("stubbing engine import", zap.String("module", mod), zap.String("name", name))
			}
			builder = builder.NewFunctionBuilder().
				WithGoModuleFunction(h.function(kind, len(def.ResultTypes())), def.ParamTypes(), def.ResultTypes()).
				Export(name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return fmt.Errorf("instantiate host module %q: %w", mod, err)
		}
	}
	return nil
}

func (h *hostImports) function(kind importKind, results int) api.GoModuleFunc {
	switch kind {
	case importRandom:
		return func(ctx context.Context, m api.Module, stack []uint64) {
			if results > 0 {
				stack[0] = uint64(h.rng.Uint32())
			}
		}
	case importThrow:
		return func(ctx context.Context, m api.Module, stack []uint64) {
			msg, _ := m.Memory().Read(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			panic(fmt.Errorf("%w: %s", ErrThrown, string(msg)))
		}
	default:
		return func(ctx context.Context, m api.Module, stack []uint64) {
			for i := 0; i < results; i++ {
				stack[i] = 0
			}
		}
	}
}
