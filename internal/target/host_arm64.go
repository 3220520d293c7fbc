//go:build arm64

package target

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

func detectHost() Descriptor {
	// ASIMD is part of the ARMv8-A base architecture
	if cpu.ARM64.HasASIMD {
		return Descriptor{Arch: runtime.GOARCH, Level: LevelNEON, Width: 16}
	}
	return scalar()
}
