package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
)

func TestListOps(t *testing.T) {
	ops, err := ListOps(codegen.Default())
	require.NoError(t, err)

	byKey := make(map[string]OpInfo, len(ops))
	for _, op := range ops {
		byKey[op.Key] = op
	}
	assert.Equal(t, OpInfo{Key: "pan", Op: "pan", Signature: "[num num]"}, byKey["pan"])
	assert.Equal(t, OpInfo{Key: "clamp", Op: "clamp", Signature: "[num num num]"}, byKey["clamp"])
	assert.Equal(t, OpInfo{Key: "sequence", Op: "sequence", Signature: "[num]..."}, byKey["sequence"])
	assert.Equal(t, OpInfo{Key: "mixdown", Op: "mixdown", Signature: "[array]"}, byKey["mixdown"])

	for _, form := range []string{"beats", "control", "note", "samples", "seconds"} {
		key := "frequency/" + form
		require.Contains(t, byKey, key)
		assert.Equal(t, OpInfo{Key: key, Op: "frequency", Form: form, Signature: "[num]"}, byKey[key])
	}
	assert.NotContains(t, byKey, "frequency/db")
	assert.Len(t, ops, 13)
}

func TestListOpsEmptyRegistry(t *testing.T) {
	ops, err := ListOps(codegen.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestOpsCommand(t *testing.T) {
	out, err := execute(t, NewOpsCommand, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "frequency/note")
	assert.Contains(t, out, "[num]...")

	out, err = execute(t, NewOpsCommand, "json")
	require.NoError(t, err)
	var resp struct {
		Status string   `json:"status"`
		Data   []OpInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data)

	_, err = execute(t, NewOpsCommand, "text", "extra")
	assert.Error(t, err)
}
