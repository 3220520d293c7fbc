package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/store"
)

// recordBuild compiles dir into a fresh database and returns its path.
func recordBuild(t *testing.T, dir string) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "builds.db")
	_, err := execute(t, NewCompileCommand, "text", dir, "--db", db)
	require.NoError(t, err)
	return db
}

func TestBuildsList(t *testing.T) {
	db := recordBuild(t, patchesDir)

	out, err := execute(t, NewBuildsCommand, "json", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Status string        `json:"status"`
		Data   []store.Build `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
	assert.Equal(t, "patches", resp.Data[0].Module)

	out, err = execute(t, NewBuildsCommand, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, resp.Data[0].ID)
}

func TestBuildsFilter(t *testing.T) {
	db := recordBuild(t, patchesDir)

	out, err := execute(t, NewBuildsCommand, "json", "--db", db, "--function", "tone", "--module", "patches")
	require.NoError(t, err)
	var resp struct {
		Data []store.Build `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data, 1)

	out, err = execute(t, NewBuildsCommand, "text", "--db", db, "--function", "choir")
	require.NoError(t, err)
	assert.Equal(t, "No builds recorded.\n", out)
}

func TestBuildsEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	out, err := execute(t, NewBuildsCommand, "text", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No builds recorded.\n", out)
}

func TestBuildsShow(t *testing.T) {
	db := recordBuild(t, patchesDir)
	st, err := store.Open(db)
	require.NoError(t, err)
	builds, err := st.ListBuilds(t.Context())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, builds, 1)
	id := builds[0].ID

	out, err := execute(t, NewBuildsCommand, "json", "--db", db, id)
	require.NoError(t, err)
	var resp struct {
		Data BuildDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, id, resp.Data.Build.ID)
	var names []string
	for _, f := range resp.Data.Functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"tone", "steps", "bus", "detune", "pulse"}, names)

	out, err = execute(t, NewBuildsCommand, "text", "--db", db, id, "--listing")
	require.NoError(t, err)
	assert.Contains(t, out, "Build "+id)
	assert.Contains(t, out, "func @detune(")
}

func TestBuildsErrors(t *testing.T) {
	_, err := execute(t, NewBuildsCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")

	db := recordBuild(t, patchesDir)
	_, err = execute(t, NewBuildsCommand, "text", "--db", db, "no-such-build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
}

// editablePatches copies the fixture patches into a temp directory named
// "patches" so the module name matches the recorded build.
func editablePatches(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "patches")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := os.ReadFile(filepath.Join(patchesDir, "voices.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voices.cue"), data, 0o644))
	return dir
}

func TestVerifyUnchanged(t *testing.T) {
	db := recordBuild(t, patchesDir)

	out, err := execute(t, NewVerifyCommand, "text", patchesDir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tone: unchanged")
	assert.Contains(t, out, "✓ All recorded functions unchanged")
}

func TestVerifyDetectsChange(t *testing.T) {
	dir := editablePatches(t)
	db := recordBuild(t, dir)

	path := filepath.Join(dir, "voices.cue")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(data), `args: ["r", "x"]`, `args: ["x", "r"]`, 1)
	require.NotEqual(t, string(data), edited)
	edited += `
patch: octave: {
	params: x: "num"
	nodes: d: {op: "to_degrees", args: ["x"]}
	result: "d"
}
`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	out, err := execute(t, NewVerifyCommand, "json", dir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   VerifyResult `json:"data"`
		Error  CLIError     `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "E_DRIFT", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Changed)
	assert.Equal(t, 1, resp.Data.New)
	assert.False(t, resp.Data.Unchanged)

	status := map[string]string{}
	for _, v := range resp.Data.Functions {
		status[v.Name] = v.Status
	}
	assert.Equal(t, map[string]string{
		"tone":   VerifyUnchanged,
		"steps":  VerifyUnchanged,
		"bus":    VerifyUnchanged,
		"detune": VerifyChanged,
		"pulse":  VerifyUnchanged,
		"octave": VerifyNew,
	}, status)
}

func TestVerifyRequiresDatabase(t *testing.T) {
	_, err := execute(t, NewVerifyCommand, "text", patchesDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
