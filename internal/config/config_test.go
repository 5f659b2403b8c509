package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "survey", cfg.Root)
	assert.Equal(t, "en", cfg.Language)
	assert.Empty(t, cfg.Declarations)
	assert.False(t, cfg.StoreDefaults)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "surveymeta.yaml")
	content := `root: page
language: ja
store_defaults: true
declarations:
  - classes.yaml
  - more.json
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := Load(NewViper(file))
	require.NoError(t, err)
	assert.Equal(t, "page", cfg.Root)
	assert.Equal(t, "ja", cfg.Language)
	assert.True(t, cfg.StoreDefaults)
	assert.Equal(t, []string{"classes.yaml", "more.json"}, cfg.Declarations)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SURVEYMETA_ROOT", "question")

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "question", cfg.Root)
}

func TestLoad_InvalidLanguage(t *testing.T) {
	t.Chdir(t.TempDir())
	v := NewViper("")
	v.Set("language", "fr")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "language")
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
}
