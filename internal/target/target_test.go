package target

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHost(t *testing.T) {
	d := detect(false)
	assert.Equal(t, runtime.GOARCH, d.Arch)
	assert.GreaterOrEqual(t, d.Width, 16)
	assert.NotEqual(t, "unknown", d.Level.String())

	switch runtime.GOARCH {
	case "amd64":
		assert.Contains(t, []Level{LevelSSE2, LevelAVX2, LevelAVX512}, d.Level)
	case "arm64":
		assert.Equal(t, LevelNEON, d.Level)
	}
}

func TestHost_NoSIMD(t *testing.T) {
	d := detect(true)
	assert.Equal(t, LevelScalar, d.Level)
	assert.Equal(t, 16, d.Width)
	assert.Equal(t, 1, d.NumsPerRegister())
}

func TestDescriptor(t *testing.T) {
	d := Descriptor{Arch: "amd64", Level: LevelAVX2, Width: 32}
	assert.Equal(t, "amd64/avx2/256", d.String())
	assert.Equal(t, 2, d.NumsPerRegister())

	assert.Equal(t, 4, Descriptor{Width: 64}.NumsPerRegister())
	assert.Equal(t, "unknown", Level(99).String())
}
