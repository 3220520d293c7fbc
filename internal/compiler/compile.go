package compiler

import (
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

// Warning is a non-fatal finding about a patch.
type Warning struct {
	Patch   string `json:"patch"`
	Node    string `json:"node"`
	Message string `json:"message"`
}

// CompileModule lowers every patch into one module named name. Patches are
// lowered in order; the first failure aborts the whole module.
func CompileModule(name string, patches []*Patch, opts Options) (*ir.Module, []Warning, error) {
	m := ir.NewModule(name)
	var warnings []Warning
	for _, p := range patches {
		if _, err := Lower(m, p, opts); err != nil {
			return nil, nil, err
		}
		for _, node := range Unreachable(p) {
			warnings = append(warnings, Warning{
				Patch:   p.Name,
				Node:    node,
				Message: fmt.Sprintf("node %q does not contribute to result %q", node, p.Result),
			})
		}
	}
	return m, warnings, nil
}
