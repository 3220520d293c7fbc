package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

func TestNewFunctionRecord(t *testing.T) {
	m := createTestModule(t, "angles", testFunction{"rad", codegen.OpToRadians})
	rec, err := NewFunctionRecord(m.Functions[0])
	require.NoError(t, err)

	assert.Equal(t, ir.MustFunctionID(m.Functions[0]), rec.ID)
	assert.Equal(t, "rad", rec.Name)
	assert.Equal(t, []string{"x", "result"}, rec.Params)
	assert.Equal(t, ir.PrintFunction(m.Functions[0]), rec.Listing)
	assert.Equal(t, m.Functions[0].InstrCount(), rec.InstrCount)
	assert.Equal(t, ir.IRVersion, rec.IRVersion)
}

func TestWriteFunction_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := createTestModule(t, "angles", testFunction{"rad", codegen.OpToRadians})
	rec, err := NewFunctionRecord(m.Functions[0])
	require.NoError(t, err)

	inserted, err := s.WriteFunction(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteFunction(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted, "same content id is stored once")

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM functions").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWriteBuild(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("build-1")))
	ctx := context.Background()
	m := createTestModule(t, "angles",
		testFunction{"rad", codegen.OpToRadians},
		testFunction{"deg", codegen.OpToDegrees},
	)

	b, err := s.WriteBuild(ctx, m, "amd64/sse2/128")
	require.NoError(t, err)

	moduleHash, err := ir.ModuleID(m)
	require.NoError(t, err)
	assert.Equal(t, Build{
		ID:              "build-1",
		Seq:             1,
		Module:          "angles",
		ModuleHash:      moduleHash,
		Target:          "amd64/sse2/128",
		CompilerVersion: ir.CompilerVersion,
		IRVersion:       ir.IRVersion,
	}, b)

	fns, err := s.ListFunctions(ctx, "build-1")
	require.NoError(t, err)
	require.Len(t, fns, 2)
	assert.Equal(t, "rad", fns[0].Name)
	assert.Equal(t, "deg", fns[1].Name)
}

func TestWriteBuild_SharesUnchangedFunctions(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("build-1", "build-2")))
	ctx := context.Background()

	first := createTestModule(t, "angles",
		testFunction{"rad", codegen.OpToRadians},
		testFunction{"deg", codegen.OpToDegrees},
	)
	_, err := s.WriteBuild(ctx, first, "test")
	require.NoError(t, err)

	// same rad body, deg now lowered from a different builtin
	second := createTestModule(t, "angles",
		testFunction{"rad", codegen.OpToRadians},
		testFunction{"deg", codegen.OpToRadians},
	)
	b, err := s.WriteBuild(ctx, second, "test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Seq)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM functions").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestWriteBuild_RollsBackOnFailure(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("dup", "dup")))
	ctx := context.Background()
	m := createTestModule(t, "angles", testFunction{"rad", codegen.OpToRadians})

	_, err := s.WriteBuild(ctx, m, "test")
	require.NoError(t, err)
	_, err = s.WriteBuild(ctx, m, "test")
	require.Error(t, err, "build ids are unique")

	builds, err := s.ListBuilds(ctx)
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}
