package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Detune(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "detune.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_LoadFailure(t *testing.T) {
	s := &Scenario{Name: "broken", Specs: t.TempDir(), Patch: "p"}
	_, err := RunWithGolden(t, s)
	assert.Error(t, err)
}
