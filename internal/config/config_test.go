package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.ExcludeDirs)
	assert.False(t, cfg.UseGitignore)
	assert.Zero(t, cfg.CacheSize)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := `excludeDirs:
  - gen
  - third_party
useGitignore: true
cacheSize: 128
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codescope.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"gen", "third_party"}, cfg.ExcludeDirs)
	assert.True(t, cfg.UseGitignore)
	assert.Equal(t, 128, cfg.CacheSize)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codescope.yml"), []byte("excludeDirs: {bad"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "cacheSize: 32\nuseGitignore: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codescope.yml"), []byte(content), 0o644))

	t.Setenv("CODESCOPE_CACHE_SIZE", "256")
	t.Setenv("CODESCOPE_USE_GITIGNORE", "true")
	t.Setenv("CODESCOPE_EXCLUDE_DIRS", "gen, tmp ,")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.True(t, cfg.UseGitignore)
	assert.Equal(t, []string{"gen", "tmp"}, cfg.ExcludeDirs)
}

func TestLoad_MalformedEnvIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codescope.yml"), []byte("cacheSize: 32\n"), 0o644))

	t.Setenv("CODESCOPE_CACHE_SIZE", "not-a-number")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.CacheSize, "file value survives an unparseable override")
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CODESCOPE_VERBOSE=true\n"), 0o644))
	t.Setenv("CODESCOPE_VERBOSE", "")
	os.Unsetenv("CODESCOPE_VERBOSE")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}
