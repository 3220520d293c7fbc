//go:build amd64

package target

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

func detectHost() Descriptor {
	switch {
	case cpu.X86.HasAVX512F:
		return Descriptor{Arch: runtime.GOARCH, Level: LevelAVX512, Width: 64}
	case cpu.X86.HasAVX2:
		return Descriptor{Arch: runtime.GOARCH, Level: LevelAVX2, Width: 32}
	case cpu.X86.HasSSE2:
		return Descriptor{Arch: runtime.GOARCH, Level: LevelSSE2, Width: 16}
	default:
		return scalar()
	}
}
