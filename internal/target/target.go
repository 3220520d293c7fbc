// Package target describes the host's vector unit. The description is
// stamped on every recorded build so cached functions can be traced back to
// the machine that produced them.
package target

import (
	"fmt"
	"runtime"

	"github.com/xyproto/env/v2"
)

// Level is the widest vector instruction set the host offers.
type Level uint8

const (
	// LevelScalar means no usable vector unit, or vectors disabled.
	LevelScalar Level = iota

	// LevelSSE2 is the x86-64 baseline (128-bit).
	LevelSSE2

	// LevelAVX2 is 256-bit x86 SIMD.
	LevelAVX2

	// LevelAVX512 is 512-bit x86 SIMD.
	LevelAVX512

	// LevelNEON is ARM ASIMD (128-bit).
	LevelNEON
)

// String returns a human-readable name for the level.
func (l Level) String() string {
	switch l {
	case LevelScalar:
		return "scalar"
	case LevelSSE2:
		return "sse2"
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// NoSIMDEnv names the variable that forces LevelScalar when true.
const NoSIMDEnv = "SYNTHGEN_NO_SIMD"

// numBytes is the size of one two-lane f64 vector.
const numBytes = 16

// Descriptor identifies a code generation host.
type Descriptor struct {
	Arch  string `json:"arch"`
	Level Level  `json:"level"`
	Width int    `json:"width"` // register width in bytes
}

// String formats the descriptor as "arch/level/bits", e.g. "amd64/avx2/256".
func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s/%d", d.Arch, d.Level, d.Width*8)
}

// NumsPerRegister is how many num vectors fit in one register.
func (d Descriptor) NumsPerRegister() int {
	return max(1, d.Width/numBytes)
}

// Host detects the running machine. Setting SYNTHGEN_NO_SIMD reports a
// scalar host regardless of CPU features.
func Host() Descriptor {
	return detect(env.Bool(NoSIMDEnv))
}

func detect(noSIMD bool) Descriptor {
	if noSIMD {
		return scalar()
	}
	return detectHost()
}

func scalar() Descriptor {
	// 16-byte vectors even in scalar mode for consistency
	return Descriptor{Arch: runtime.GOARCH, Level: LevelScalar, Width: numBytes}
}
