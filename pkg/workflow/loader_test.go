package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `workflow:
  name: review
  type: custom
  steps:
    - id: fetch
      role: crawler
    - id: summarize
      role: writer
      depends_on: [fetch]
      outputs: [summary.md]
  models:
    writer: claude-sonnet-4-20250514
`

func writeDef(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeDef(t, "review.yaml", validYAML)

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "review", def.Workflow.Name)
	assert.Equal(t, TypeCustom, def.Workflow.Type)
	require.Len(t, def.Workflow.Steps, 2)
	assert.Equal(t, []string{"fetch"}, def.Workflow.Steps[1].DependsOn)
	assert.Equal(t, []string{"summary.md"}, def.Workflow.Steps[1].Outputs)
	assert.Equal(t, "claude-sonnet-4-20250514", def.Workflow.Models["writer"])
}

func TestLoad_ValidJSON(t *testing.T) {
	content := `{
		"workflow": {
			"name": "review",
			"type": "custom",
			"steps": [
				{"id": "fetch", "role": "crawler"},
				{"id": "summarize", "role": "writer", "depends_on": ["fetch"]}
			]
		}
	}`
	path := writeDef(t, "review.json", content)

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "review", def.Workflow.Name)
	assert.Len(t, def.Workflow.Steps, 2)
}

func TestLoad_FileNotFound(t *testing.T) {
	def, err := Load("/nonexistent/review.yaml")
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeDef(t, "empty.yaml", "")

	def, err := Load(path)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeDef(t, "review.toml", "[workflow]\nname = \"x\"\n")

	def, err := Load(path)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeDef(t, "broken.yaml", "workflow:\n  name: [unclosed\n")

	def, err := Load(path)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeDef(t, "broken.json", "{ not json }")

	def, err := Load(path)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `workflow:
  name: cyclic
  type: custom
  steps:
    - id: a
      role: r
      depends_on: [b]
    - id: b
      role: r
      depends_on: [a]
`
	path := writeDef(t, "cyclic.yaml", content)

	def, err := Load(path)
	assert.Nil(t, def)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestLoad_Directory(t *testing.T) {
	def, err := Load(t.TempDir())
	assert.Nil(t, def)
	assert.Error(t, err)
}

func TestLoadGlob_Recursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(validYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.yaml"), []byte(validYAML), 0644))

	defs, err := LoadGlob(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	// Sorted by path, so the top-level file comes first.
	assert.Equal(t, filepath.Join(dir, "a.yaml"), defs[0].Path)
	assert.Equal(t, "review", defs[0].Definition.Workflow.Name)
}

func TestLoadGlob_NoMatches(t *testing.T) {
	defs, err := LoadGlob(filepath.Join(t.TempDir(), "*.yaml"))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoadGlob_BadFileAborts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(validYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("workflow:\n  name: x\n"), 0644))

	_, err := LoadGlob(filepath.Join(dir, "*.yaml"))
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestGlob_SimplePattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(validYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(validYAML), 0644))

	matches, err := Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), matches[0])
}
