package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "", cfg.Profiler.Python)
	assert.Equal(t, "universal_profiler.py", cfg.Profiler.Script)
	assert.Empty(t, cfg.Profiler.Args)
	assert.Equal(t, "braces", cfg.Framing.Mode)
	assert.Equal(t, "@@@PROFILER_START@@@", cfg.Framing.Start)
	assert.Equal(t, "@@@PROFILER_END@@@", cfg.Framing.End)
	assert.Equal(t, 60, cfg.Dashboard.Window)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval())
	assert.Equal(t, "reject", cfg.Session.Policy)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceInterval())
	assert.Equal(t, "", cfg.Path())
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
version: 1
profiler:
  python: /usr/bin/python3.12
  script: tools/profiler.py
  args: [--interval, "0.05"]
framing:
  mode: lines
dashboard:
  window: 120
  refresh: 500ms
session:
  policy: queue
watch:
  debounce: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/python3.12", cfg.Profiler.Python)
	assert.Equal(t, "tools/profiler.py", cfg.Profiler.Script)
	assert.Equal(t, []string{"--interval", "0.05"}, cfg.Profiler.Args)
	assert.Equal(t, "lines", cfg.Framing.Mode)
	assert.Equal(t, "@@@PROFILER_START@@@", cfg.Framing.Start, "unset keys keep defaults")
	assert.Equal(t, 120, cfg.Dashboard.Window)
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshInterval())
	assert.Equal(t, "queue", cfg.Session.Policy)
	assert.Equal(t, time.Second, cfg.DebounceInterval())
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, filepath.Join(dir, "tools", "profiler.py"), cfg.ScriptPath())
	assert.NoError(t, Validate(cfg))
}

func TestLoad_MinimalFileGetsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Framing, cfg.Framing)
	assert.Equal(t, 60, cfg.Dashboard.Window)
	assert.Equal(t, "reject", cfg.Session.Policy)
}

func TestLoad_ExpandsPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeConfig(t, dir, `
profiler:
  python: ~/.pyenv/shims/python
  script: ${HOME}/profiler.py
  args: ["--out", "${CONFIG_DIR}/profile.json"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".pyenv/shims/python"), cfg.Profiler.Python)
	assert.Equal(t, home+"/profiler.py", cfg.Profiler.Script)
	assert.Equal(t, home+"/profiler.py", cfg.ScriptPath(), "absolute scripts are untouched")
	assert.Equal(t, []string{"--out", filepath.Join(dir, "profile.json")}, cfg.Profiler.Args)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "framing: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("wrong type", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "dashboard:\n  window: lots\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "version: 1\n")
		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "version: 1\n")
		chdir(t, dir)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, resolved(t, path), resolved(t, found))
	})

	t.Run("parent directory within repo", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
		path := writeConfig(t, root, "version: 1\n")
		sub := filepath.Join(root, "pkg", "deep")
		require.NoError(t, os.MkdirAll(sub, 0755))
		chdir(t, sub)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, resolved(t, path), resolved(t, found))
	})

	t.Run("stops at git root", func(t *testing.T) {
		outer := t.TempDir()
		writeConfig(t, outer, "version: 1\n")
		repo := filepath.Join(outer, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
		t.Setenv("HOME", t.TempDir())
		chdir(t, repo)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, "", found)
	})
}

func resolved(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return p
}

func TestLoadOrDefault(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0755))
	t.Setenv("HOME", t.TempDir())
	chdir(t, repo)

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_ProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	sub := filepath.Join(root, "tools")
	require.NoError(t, os.Mkdir(sub, 0755))
	path := writeConfig(t, sub, "version: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, sub, cfg.Dir())
	assert.Equal(t, root, cfg.ProjectRoot())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}
