package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func validPatch() *Patch {
	return &Patch{
		Name: "voice",
		Params: []Param{
			{Name: "pitch", Kind: codegen.ArgNum, Form: ir.FormNote},
			{Name: "position", Kind: codegen.ArgNum},
			{Name: "step", Kind: codegen.ArgNum},
			{Name: "voices", Kind: codegen.ArgArray},
		},
		Nodes: []Node{
			{Name: "hz", Op: codegen.OpFrequency, Args: []string{"pitch"}},
			{Name: "beat", Op: codegen.OpFrequency, From: ir.FormBeats, Args: []string{"step"}},
			{Name: "sum", Op: codegen.OpMixdown, Args: []string{"voices"}},
			{Name: "pick", Op: codegen.OpSequence, Args: []string{"step"}, Items: []string{"hz", "beat", "sum"}},
			{Name: "out", Op: codegen.OpPan, Args: []string{"pick", "position"}},
		},
		Result: "out",
	}
}

func TestValidateValid(t *testing.T) {
	assert.Empty(t, Validate(validPatch(), codegen.Default()))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Patch)
		code   string
	}{
		{"no nodes", func(p *Patch) { p.Nodes = nil }, ErrNoNodes},
		{"node shadows param", func(p *Patch) { p.Nodes[0].Name = "position" }, ErrDuplicateName},
		{"duplicate param", func(p *Patch) { p.Params[1].Name = "pitch" }, ErrDuplicateName},
		{"reserved param", func(p *Patch) { p.Params[1].Name = "result" }, ErrInvalidName},
		{"unusable param", func(p *Patch) { p.Params[1].Name = "left side" }, ErrInvalidName},
		{"unknown operand", func(p *Patch) { p.Nodes[4].Args[1] = "ghost" }, ErrUnknownRef},
		{"unknown item", func(p *Patch) { p.Nodes[3].Items[0] = "ghost" }, ErrUnknownRef},
		{"too few operands", func(p *Patch) { p.Nodes[4].Args = []string{"pick"} }, ErrArity},
		{"items on fixed op", func(p *Patch) { p.Nodes[4].Items = []string{"hz"} }, ErrArity},
		{"sequence without items", func(p *Patch) { p.Nodes[3].Items = nil }, ErrArity},
		{"array where num expected", func(p *Patch) { p.Nodes[4].Args[1] = "voices" }, ErrKindMismatch},
		{"num where array expected", func(p *Patch) { p.Nodes[2].Args[0] = "position" }, ErrKindMismatch},
		{"array item", func(p *Patch) { p.Nodes[3].Items[1] = "voices" }, ErrKindMismatch},
		{"frequency without form", func(p *Patch) { p.Nodes[0].Args[0] = "position" }, ErrMissingForm},
		{"frequency without from", func(p *Patch) { p.Nodes[1].From = ir.FormNone }, ErrMissingForm},
		{"from on builtin", func(p *Patch) { p.Nodes[4].From = ir.FormNote }, ErrUnexpectedForm},
		{"unconvertible form", func(p *Patch) { p.Nodes[1].From = ir.FormDb }, ErrUnsupportedForm},
		{"unknown op", func(p *Patch) { p.Nodes[4].Op = 0 }, ErrUnknownOp},
		{"unknown result", func(p *Patch) { p.Result = "nowhere" }, ErrUnknownResult},
		{"cycle", func(p *Patch) { p.Nodes[0] = Node{Name: "hz", Op: codegen.OpToRadians, Args: []string{"out"}} }, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatch()
			tt.mutate(p)
			errs := Validate(p, codegen.Default())
			require.NotEmpty(t, errs)
			assert.Contains(t, codes(errs), tt.code)
		})
	}
}

func TestValidateTooManyItems(t *testing.T) {
	p := validPatch()
	items := make([]string, ir.MaxVarArgs+1)
	for i := range items {
		items[i] = "hz"
	}
	p.Nodes[3].Items = items
	assert.Equal(t, []string{ErrTooManyItems}, codes(Validate(p, codegen.Default())))

	p.Nodes[3].Items = items[:ir.MaxVarArgs]
	assert.Empty(t, Validate(p, codegen.Default()))
}

func TestValidateCollectsAll(t *testing.T) {
	p := validPatch()
	p.Nodes[4].Args = []string{"ghost"}
	p.Result = "nowhere"
	got := codes(Validate(p, codegen.Default()))
	assert.Equal(t, []string{ErrUnknownRef, ErrArity, ErrUnknownResult}, got)
}

func TestValidateRegistryScoped(t *testing.T) {
	// a registry without frequency converters rejects every conversion
	reg := codegen.NewRegistry()
	require.NoError(t, codegen.RegisterBuiltins(reg))
	got := codes(Validate(validPatch(), reg))
	assert.Equal(t, []string{ErrUnsupportedForm, ErrUnsupportedForm}, got)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "nodes.a", Message: "boom", Code: ErrArity}
	assert.Equal(t, "[E105] nodes.a: boom", e.Error())
	e.Line = 7
	assert.Equal(t, "[E105] line 7: nodes.a: boom", e.Error())

	err := fmt.Errorf("patch: %w", ValidationErrors{e, e})
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "; ")
	assert.False(t, IsValidationError(fmt.Errorf("other")))
}
