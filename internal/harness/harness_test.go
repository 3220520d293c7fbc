package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAndRun(t *testing.T, name string) *Result {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"tone", "steps", "bus", "pulse", "detune"} {
		t.Run(name, func(t *testing.T) {
			result := loadAndRun(t, name)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Equal(t, name, result.Patch)
			assert.Contains(t, result.Listing, "func @"+name+"(")
			for _, c := range result.Cases {
				assert.True(t, c.Pass, c.Name)
			}
		})
	}
}

func TestRun_RecordsOutcome(t *testing.T) {
	result := loadAndRun(t, "steps")
	require.Len(t, result.Cases, 5)

	first := result.Cases[0]
	assert.Equal(t, [2]float64{1, 1}, first.Lanes)
	assert.Equal(t, "none", first.Form)
	assert.Positive(t, first.Steps)
	assert.Empty(t, first.ErrorCode)

	last := result.Cases[4]
	assert.Equal(t, "BAD_ARGUMENT", last.ErrorCode)
	assert.True(t, last.Pass)
}

func TestRun_ReportsMismatch(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "steps.yaml"))
	require.NoError(t, err)
	s.Cases = s.Cases[:1]
	s.Cases[0].Expect.Lanes = []float64{2}
	s.Cases[0].Expect.Form = "note"

	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "first: assertion failed: lanes")
	assert.Contains(t, result.Errors[1], "assertion failed: form")
}

func TestRun_UnexpectedError(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "steps.yaml"))
	require.NoError(t, err)
	nan := s.Cases[4]
	nan.Expect = Expect{Lanes: []float64{1}}
	s.Cases = []Case{nan}

	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "BAD_ARGUMENT", result.Cases[0].ErrorCode)
	assert.Contains(t, result.Errors[0], "expected: no error")
}

func TestRun_ArgErrors(t *testing.T) {
	base := func() *Scenario {
		s, err := LoadScenario(filepath.Join("testdata", "scenarios", "bus.yaml"))
		require.NoError(t, err)
		s.Cases = s.Cases[:1]
		return s
	}
	tests := []struct {
		name   string
		mutate func(args map[string]Arg)
		want   string
	}{
		{"missing", func(a map[string]Arg) { delete(a, "hi") }, `missing arg "hi"`},
		{"unknown", func(a map[string]Arg) { a["gain"] = Arg{Lanes: []float64{1}} }, `no param "gain"`},
		{"num for array", func(a map[string]Arg) { a["voices"] = Arg{Lanes: []float64{1}} }, `param is array`},
		{"array for num", func(a map[string]Arg) { a["lo"] = Arg{Slots: []*Arg{}} }, `param is num`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s.Cases[0].Args)
			result, err := Run(t.Context(), s)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestRun_FixedTransport(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "pulse.yaml"))
	require.NoError(t, err)
	s.Transport.Fixed = true

	result, err := Run(t.Context(), s)
	require.NoError(t, err)
	// the baked 120 BPM ignores the second case's tempo override
	assert.True(t, result.Cases[0].Pass)
	assert.False(t, result.Cases[1].Pass)
	assert.Equal(t, [2]float64{4, 4}, result.Cases[1].Lanes)
	assert.NotContains(t, result.Listing, "transport.bpm")
}

func TestRun_UnknownPatch(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "tone.yaml"))
	require.NoError(t, err)
	s.Patch = "reverb"
	_, err = Run(t.Context(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `patch "reverb" not found`)
}

func TestRun_BadSpecs(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "tone.yaml"))
	require.NoError(t, err)
	s.Specs = t.TempDir()
	_, err = Run(t.Context(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load patches")
}

func TestRun_Cancelled(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "tone.yaml"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_StepQuota(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "bus.yaml"))
	require.NoError(t, err)
	result, err := New(WithMaxSteps(10)).Run(t.Context(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected: no error")
}

func TestSnapshot(t *testing.T) {
	result := NewResult("p")
	result.AddCase(CaseResult{Name: "a", Pass: true, Lanes: [2]float64{0.1, 2}, Form: "note", Steps: 3})
	result.AddCase(CaseResult{Name: "b", ErrorCode: "POISON_READ", Errors: []string{"boom"}})

	got, err := Snapshot(result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"cases":[{"form":"note","lanes":["0.1","2"],"name":"a","pass":true,"steps":3},`+
			`{"error_code":"POISON_READ","lanes":["0","0"],"name":"b","pass":false,"steps":0}],`+
			`"pass":false,"patch":"p"}`,
		string(got))
	assert.Equal(t, []string{"b: boom"}, result.Errors)
}
