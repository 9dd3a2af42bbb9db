package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewStateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestStateCommandSetThenGet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "state.db")

	tests := []struct {
		table string
		key   string
		value string
		want  string
	}{
		{"switch", "event:door_open", "true", "switch event:door_open = true"},
		{"variable", "event:visits", "3", "variable event:visits = 3"},
		{"timestamp", "event:last_rest", "1700000000", "timestamp event:last_rest = 1700000000"},
		{"currency", "gold", "250", "currency gold = 250"},
		{"inventory", "potion", "4", "inventory potion = 4"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			out, err := runStateCmd(t, "text", "set", tt.table, tt.key, tt.value, "--db", db)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)

			out, err = runStateCmd(t, "text", "get", tt.table, tt.key, "--db", db)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestStateCommandMissingKeyReadsZero(t *testing.T) {
	db := filepath.Join(t.TempDir(), "state.db")

	out, err := runStateCmd(t, "json", "get", "variable", "never_set", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   StateEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, StateEntry{Table: "variable", Key: "never_set", Value: 0}, resp.Data)
}

func TestStateCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "state.db")

	t.Run("unknown table", func(t *testing.T) {
		_, err := runStateCmd(t, "text", "get", "quests", "q1", "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), `unknown table "quests"`)
	})

	t.Run("bad switch value", func(t *testing.T) {
		_, err := runStateCmd(t, "text", "set", "switch", "k", "maybe", "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "invalid switch value")
	})

	t.Run("bad integer", func(t *testing.T) {
		_, err := runStateCmd(t, "text", "set", "currency", "gold", "lots", "--db", db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want an integer")
	})
}

func TestParseStateValue(t *testing.T) {
	v, err := parseStateValue("switch", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = parseStateValue("switch", "false")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = parseStateValue("inventory", "-2")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), v)
}
