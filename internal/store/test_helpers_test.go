package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type testFunction struct {
	name string
	op   codegen.Op // a unary builtin
}

// createTestModule lowers one unary builtin per function into a module.
func createTestModule(t *testing.T, name string, fns ...testFunction) *ir.Module {
	t.Helper()
	m := ir.NewModule(name)
	for _, fn := range fns {
		f, err := m.NewFunction(fn.name, "x", "result")
		require.NoError(t, err)
		fc := codegen.NewFunctionContext(f)
		require.NoError(t, codegen.Default().Emit(fc, fn.op, codegen.Call{
			Args:   []ir.Value{f.Params[0]},
			Result: f.Params[1],
		}))
		fc.B.Ret()
	}
	return m
}
