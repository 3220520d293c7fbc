package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/ir"
)

func TestArrayCell_Bitmap(t *testing.T) {
	c, err := ArrayCell(
		Slot{Num: Mono(5, ir.FormNone), Active: true},
		Slot{Num: Mono(7, ir.FormNone)},
		Slot{Num: Mono(3, ir.FormNone), Active: true},
	)
	require.NoError(t, err)

	bitmap, err := c.fields[ir.ArrayBitmap].load(ir.I32)
	require.NoError(t, err)
	assert.Equal(t, int64(0b101), bitmap.i[0])

	items := c.fields[ir.ArrayItems]
	assert.False(t, items.fields[0].fields[ir.NumVec].Poisoned())
	assert.True(t, items.fields[1].fields[ir.NumVec].Poisoned())
	assert.False(t, items.fields[1].fields[ir.NumForm].Poisoned())
	assert.True(t, items.fields[ir.ArrayCapacity-1].fields[ir.NumVec].Poisoned())
}

func TestArrayCell_TooManySlots(t *testing.T) {
	_, err := ArrayCell(make([]Slot, ir.ArrayCapacity+1)...)
	assert.Equal(t, ErrCodeBadArgument, ErrorCode(err))
}

func TestVarArgsCell(t *testing.T) {
	a := NumCell(Mono(1, ir.FormNone))
	b := NumCell(Mono(2, ir.FormNone))
	c, err := VarArgsCell(a, b)
	require.NoError(t, err)

	n, err := c.fields[ir.VarArgsLen].load(ir.I32)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.i[0])

	p, err := c.fields[ir.VarArgsItems].fields[1].load(ir.Ptr)
	require.NoError(t, err)
	assert.Same(t, b, p.ptr)
}

func TestVarArgsCell_Rejects(t *testing.T) {
	_, err := VarArgsCell(make([]*Cell, ir.MaxVarArgs+1)...)
	assert.Equal(t, ErrCodeBadArgument, ErrorCode(err))

	arr, err := ArrayCell()
	require.NoError(t, err)
	_, err = VarArgsCell(arr)
	assert.Equal(t, ErrCodeBadArgument, ErrorCode(err))
}

func TestNumCell_RoundTrip(t *testing.T) {
	n := Stereo(-1.25, 3.5, ir.FormBeats)
	got, err := ReadNum(NumCell(n))
	require.NoError(t, err)
	assert.Equal(t, n, got)
	assert.Equal(t, "<-1.25, 3.5> beats", n.String())
}

func TestCell_LoadAggregate(t *testing.T) {
	_, err := NumCell(Num{}).load(ir.NumType)
	assert.Equal(t, ErrCodeTypeMismatch, ErrorCode(err))
}
