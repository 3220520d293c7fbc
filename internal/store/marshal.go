package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

// FunctionRecord is a stored compiled function.
type FunctionRecord struct {
	ID         string   `json:"id"` // ir.FunctionID
	Name       string   `json:"name"`
	Params     []string `json:"params"`
	Listing    string   `json:"listing"`
	InstrCount int      `json:"instr_count"`
	IRVersion  string   `json:"ir_version"`
}

// Build is one recorded compile run.
type Build struct {
	ID              string `json:"id"`
	Seq             int64  `json:"seq"`
	Module          string `json:"module"`
	ModuleHash      string `json:"module_hash"`
	Target          string `json:"target"`
	CompilerVersion string `json:"compiler_version"`
	IRVersion       string `json:"ir_version"`
}

// NewFunctionRecord captures f's listing under its content-addressed id.
func NewFunctionRecord(f *ir.Function) (FunctionRecord, error) {
	id, err := ir.FunctionID(f)
	if err != nil {
		return FunctionRecord{}, fmt.Errorf("function record: %w", err)
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	return FunctionRecord{
		ID:         id,
		Name:       f.Name,
		Params:     params,
		Listing:    ir.PrintFunction(f),
		InstrCount: f.InstrCount(),
		IRVersion:  ir.IRVersion,
	}, nil
}

// marshalParams converts parameter names to canonical JSON TEXT.
func marshalParams(params []string) (string, error) {
	if params == nil {
		params = []string{}
	}
	data, err := ir.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// unmarshalParams parses canonical JSON TEXT to parameter names.
func unmarshalParams(data string) ([]string, error) {
	params := []string{}
	if data == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(data), &params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return params, nil
}
