package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/engine"
)

func runRunCmd(t *testing.T, opts *RunOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRunCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunCommandPersistsBattle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "battles.db")
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		BattleIDs:   engine.NewFixedGenerator("battle-1"),
	}

	out, err := runRunCmd(t, opts, filepath.Join(scenariosDir, "wolf_bites_hero.yaml"), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "Battle battle-1: 4 steps, 5 results\n", out)

	out, err = runLogCmd(t, "text", "--db", db, "battle-1")
	require.NoError(t, err)
	assert.Contains(t, out, "[1.0] HPChange -> hero -12")
	assert.Contains(t, out, "[3.1] RemoveEffect -> hero poison tier 1")
}

func TestRunCommandJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "battles.db")
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "json"},
		BattleIDs:   engine.NewFixedGenerator("battle-2"),
	}

	out, err := runRunCmd(t, opts, filepath.Join(scenariosDir, "fanged_wolf.yaml"), "--db", db)
	require.NoError(t, err)

	var resp struct {
		Data RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "battle-2", resp.Data.BattleID)
	assert.Equal(t, int64(1), resp.Data.Steps)
	assert.Positive(t, resp.Data.Results)
}

func TestRunCommandDefaultsToUUIDv7(t *testing.T) {
	db := filepath.Join(t.TempDir(), "battles.db")

	_, err := runRunCmd(t, &RunOptions{RootOptions: &RootOptions{Format: "text"}},
		filepath.Join(scenariosDir, "wolf_bites_hero.yaml"), "--db", db)
	require.NoError(t, err)

	out, err := runLogCmd(t, "json", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Data []struct {
			BattleID string `json:"battle_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Len(t, resp.Data[0].BattleID, 36)
	assert.Equal(t, byte('7'), resp.Data[0].BattleID[14], "UUID version nibble")
}

func TestRunCommandMissingScenario(t *testing.T) {
	_, err := runRunCmd(t, &RunOptions{RootOptions: &RootOptions{Format: "text"}}, "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}
