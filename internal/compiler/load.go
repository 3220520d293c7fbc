package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadDir builds the CUE package in dir and compiles every entry under its
// top-level `patch` struct, in source order.
func LoadDir(dir string) ([]*Patch, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("patch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("patch directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	return CompilePatches(value)
}

// CompilePatches compiles every field of v's `patch` struct.
func CompilePatches(v cue.Value) ([]*Patch, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	patchesVal := v.LookupPath(cue.ParsePath("patch"))
	if !patchesVal.Exists() {
		return nil, &CompileError{Field: "patch", Message: "no patch definitions found", Pos: v.Pos()}
	}

	iter, err := patchesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var patches []*Patch
	for iter.Next() {
		p, err := CompilePatch(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("patch %q: %w", iter.Label(), err)
		}
		patches = append(patches, p)
	}
	if len(patches) == 0 {
		return nil, &CompileError{Field: "patch", Message: "no patch definitions found", Pos: patchesVal.Pos()}
	}
	return patches, nil
}
