package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rileyhilliard/profdash/internal/config"
	"github.com/stretchr/testify/require"
)

// fakeInterpreter writes an executable that answers --version like Python
// and otherwise runs body as a shell script.
func fakeInterpreter(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-python")
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--version\" ]; then echo 'Python 3.12.1'; exit 0; fi\n" +
		body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// writeConfig writes a .profdash.yaml into dir.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolate runs the test in a fresh project directory with its own HOME so no
// real config is found.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	chdir(t, dir)
	useConfigFlag(t, "")
	return dir
}

// useConfigFlag sets --config for one test.
func useConfigFlag(t *testing.T, path string) {
	t.Helper()
	orig := cfgFile
	t.Cleanup(func() { cfgFile = orig })
	cfgFile = path
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
