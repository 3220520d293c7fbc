package harness

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "patches"), 0o755))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/bus.yaml")
	require.NoError(t, err)

	assert.Equal(t, "bus", s.Name)
	assert.Equal(t, "bus", s.Patch)
	assert.Equal(t, filepath.Join("testdata", "patches"), s.Specs)
	require.Len(t, s.Cases, 4)

	voices := s.Cases[0].Args["voices"]
	require.True(t, voices.IsArray())
	require.Len(t, voices.Slots, 3)
	assert.Equal(t, []float64{0.5, 0.25}, voices.Slots[0].Lanes)
	assert.Equal(t, "amplitude", voices.Slots[0].Form)
	assert.Nil(t, voices.Slots[1])

	lo := s.Cases[0].Args["lo"]
	assert.False(t, lo.IsArray())
	assert.Equal(t, []float64{0}, lo.Lanes)

	assert.True(t, s.Cases[2].Args["voices"].Slots[0].Inactive)
	assert.True(t, s.Cases[3].Args["voices"].IsArray())
	assert.Empty(t, s.Cases[3].Args["voices"].Slots)
}

func TestLoadScenario_NaNLane(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/steps.yaml")
	require.NoError(t, err)
	last := s.Cases[len(s.Cases)-1]
	require.Len(t, last.Args["i"].Lanes, 1)
	assert.True(t, math.IsNaN(last.Args["i"].Lanes[0]))
	assert.Equal(t, "BAD_ARGUMENT", last.Expect.Error)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown field",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncase: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing description",
			body: "name: x\nspecs: patches\npatch: p\ncases: [{name: a, args: {}, expect: {lanes: [0]}}]\n",
			want: "description is required",
		},
		{
			name: "missing specs dir",
			body: "name: x\ndescription: d\nspecs: nowhere\npatch: p\ncases: [{name: a, args: {}, expect: {lanes: [0]}}]\n",
			want: "specs directory not found",
		},
		{
			name: "missing patch",
			body: "name: x\ndescription: d\nspecs: patches\ncases: [{name: a, args: {}, expect: {lanes: [0]}}]\n",
			want: "patch is required",
		},
		{
			name: "no cases",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\n",
			want: "cases list is required",
		},
		{
			name: "duplicate case",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, expect: {lanes: [0]}}, {name: a, expect: {lanes: [0]}}]\n",
			want: "duplicate case name",
		},
		{
			name: "three lanes",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, args: {x: {lanes: [1, 2, 3]}}, expect: {lanes: [0]}}]\n",
			want: "lanes must hold 1 or 2 values",
		},
		{
			name: "unknown form",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, args: {x: {lanes: [1], form: parsecs}}, expect: {lanes: [0]}}]\n",
			want: "parsecs",
		},
		{
			name: "nested slots",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, args: {x: {slots: [{slots: []}]}}, expect: {lanes: [0]}}]\n",
			want: "slots cannot nest",
		},
		{
			name: "inactive num",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, args: {x: {inactive: true}}, expect: {lanes: [0]}}]\n",
			want: "inactive is only valid on array slots",
		},
		{
			name: "error with lanes",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, expect: {lanes: [0], error: POISON_READ}}]\n",
			want: "error excludes lanes and form",
		},
		{
			name: "no expectation",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, expect: {}}]\n",
			want: "lanes must hold 1 or 2 values",
		},
		{
			name: "bad scalar",
			body: "name: x\ndescription: d\nspecs: patches\npatch: p\ncases: [{name: a, args: {x: loud}, expect: {lanes: [0]}}]\n",
			want: "arg must be a number or a mapping",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_TooManySlots(t *testing.T) {
	body := "name: x\ndescription: d\nspecs: patches\npatch: p\ncases:\n  - name: a\n    expect: {lanes: [0]}\n    args:\n      v:\n        slots: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17]\n"
	_, err := LoadScenario(writeScenario(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds array capacity")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
