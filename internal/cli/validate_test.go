package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contentDir = filepath.Join("..", "harness", "testdata", "content")

// runValidateCmd runs validate against dir and returns stdout and the error.
func runValidateCmd(t *testing.T, format, dir string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	return buf.String(), err
}

func writeContent(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func TestValidateValidContent(t *testing.T) {
	out, err := runValidateCmd(t, "text", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All content valid")
	assert.Contains(t, out, "in 4 files")
	assert.NotContains(t, out, "warning:")
}

func TestValidateValidContentJSON(t *testing.T) {
	out, err := runValidateCmd(t, "json", contentDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 4, resp.Data.Files)
	assert.Positive(t, resp.Data.Records)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := runValidateCmd(t, "text", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := runValidateCmd(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no content files found")
}

func TestValidateMalformedYAML(t *testing.T) {
	dir := writeContent(t, map[string]string{"broken.yaml": "entity: [\n"})

	out, err := runValidateCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "load failed")
	assert.Contains(t, out, "✗ Content failed to load")
	assert.Contains(t, out, "E009")
}

func TestValidateUnknownSkill(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"entities.yaml": "entity:\n  slime:\n    stats: {MaxHP: 10}\n    skills: [fireball]\n",
	})

	t.Run("text", func(t *testing.T) {
		out, err := runValidateCmd(t, "text", dir)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
		assert.Contains(t, out, "✗ Validation failed")
		assert.Contains(t, out, "entity.slime.skills[0]")
		assert.Contains(t, out, `unknown skill "fireball"`)
	})

	t.Run("json", func(t *testing.T) {
		out, err := runValidateCmd(t, "json", dir)
		require.Error(t, err)

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "E202", resp.Error.Code)
	})
}

func TestValidateCycleIsWarning(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"effects.yaml": `effect:
  echo:
    extra:
      type: Entity.AttachEffect
      name: echo
      turns: {type: Value.Constant, value: 1}
`,
	})

	out, err := runValidateCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All content valid")
	assert.Contains(t, out, "warning: Self-attaching effect detected: echo → echo")
}
