package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change without collisions.
const (
	DomainFunction = "synthgen/function/v1"
	DomainModule   = "synthgen/module/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// functionDocument is the canonical form of a function: its signature, the
// module-level declarations it depends on, and its listing.
func functionDocument(f *Function) map[string]any {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	var globals, intrinsics []string
	if m := f.module; m != nil {
		for _, g := range m.Globals {
			globals = append(globals, fmt.Sprintf("@%s %s", g.Name, g.Elem))
		}
		for _, in := range m.Intrinsics {
			intrinsics = append(intrinsics, fmt.Sprintf("@%s %s", in.Name, in.Ret))
		}
	}
	if globals == nil {
		globals = []string{}
	}
	if intrinsics == nil {
		intrinsics = []string{}
	}
	return map[string]any{
		"ir_version": IRVersion,
		"name":       f.Name,
		"params":     params,
		"globals":    globals,
		"intrinsics": intrinsics,
		"listing":    PrintFunction(f),
	}
}

// FunctionID computes the content-addressed id of a generated function.
// The id is stable across runs given identical generated code.
func FunctionID(f *Function) (string, error) {
	canonical, err := MarshalCanonical(functionDocument(f))
	if err != nil {
		return "", fmt.Errorf("FunctionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFunction, canonical), nil
}

// ModuleID computes the content-addressed id of a whole module listing.
func ModuleID(m *Module) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"ir_version": IRVersion,
		"name":       m.Name,
		"listing":    Print(m),
	})
	if err != nil {
		return "", fmt.Errorf("ModuleID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModule, canonical), nil
}

// MustFunctionID is like FunctionID but panics on error.
// Use only in tests or when the function is known to be well formed.
func MustFunctionID(f *Function) string {
	id, err := FunctionID(f)
	if err != nil {
		panic(err)
	}
	return id
}
