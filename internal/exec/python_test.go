package exec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePython writes an executable that answers --version like an interpreter.
func fakePython(t *testing.T, path, version string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	script := "#!/bin/sh\necho '" + version + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
}

func TestResolve_PrefersVenv(t *testing.T) {
	root := t.TempDir()
	venv := filepath.Join(root, ".venv", "bin", "python3")
	fakePython(t, venv, "Python 3.12.1")

	got, err := Resolve(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, venv, got)
}

func TestResolve_SkipsBrokenVenv(t *testing.T) {
	root := t.TempDir()
	broken := filepath.Join(root, ".venv", "bin", "python3")
	require.NoError(t, os.MkdirAll(filepath.Dir(broken), 0755))
	require.NoError(t, os.WriteFile(broken, []byte("#!/bin/sh\nexit 1\n"), 0755))
	fallback := filepath.Join(root, ".venv", "bin", "python")
	fakePython(t, fallback, "Python 3.11.0")

	got, err := Resolve(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, fallback, got)
}

func TestResolve_Configured(t *testing.T) {
	dir := t.TempDir()
	py := filepath.Join(dir, "mypython")
	fakePython(t, py, "Python 3.10.4")

	got, err := Resolve(context.Background(), "", py)
	require.NoError(t, err)
	assert.Equal(t, py, got)
}

func TestResolve_ConfiguredMissing(t *testing.T) {
	_, err := Resolve(context.Background(), "", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "profiler.python")
}

func TestResolve_NothingFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Resolve(context.Background(), t.TempDir(), "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestPythonVersion(t *testing.T) {
	py := filepath.Join(t.TempDir(), "python3")
	fakePython(t, py, "Python 3.12.1")

	v, err := PythonVersion(context.Background(), py)
	require.NoError(t, err)
	assert.Equal(t, "Python 3.12.1", v)
}
