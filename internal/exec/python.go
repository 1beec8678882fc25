package exec

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/util"
)

// versionTimeout bounds the interpreter probe.
const versionTimeout = 10 * time.Second

// Resolve picks the Python interpreter used to run the profiler. A configured
// interpreter wins; otherwise a project .venv is preferred over python3 and
// python on PATH. Each candidate must answer --version.
func Resolve(ctx context.Context, projectRoot, configured string) (string, error) {
	if configured != "" {
		path, err := exec.LookPath(configured)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Configured Python interpreter %q not found", configured),
				"Fix profiler.python in .profdash.yaml or leave it empty to auto-detect")
		}
		if _, err := PythonVersion(ctx, path); err != nil {
			return "", err
		}
		return path, nil
	}

	var candidates []string
	if projectRoot != "" {
		root, err := filepath.Abs(projectRoot)
		if err == nil {
			candidates = append(candidates,
				filepath.Join(root, ".venv", "bin", "python3"),
				filepath.Join(root, ".venv", "bin", "python"),
			)
		}
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			candidates = append(candidates, p)
		}
	}

	for _, c := range candidates {
		if _, err := PythonVersion(ctx, c); err == nil {
			return c, nil
		}
	}

	return "", errors.New(errors.ErrExec,
		"No usable Python interpreter found",
		"Checked .venv/bin/python3, .venv/bin/python, python3 and python. Install Python or set profiler.python.")
}

// PythonVersion returns the interpreter's version string, e.g. "Python 3.12.1".
func PythonVersion(ctx context.Context, python string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	stdout, stderr, exitCode, err := ExecuteLocalCapture(ctx, util.ShellQuote(python)+" --version", "")
	if err != nil {
		return "", err
	}
	if exitCode != 0 {
		return "", errors.New(errors.ErrExec,
			fmt.Sprintf("%s --version exited with code %d", python, exitCode),
			"Check that the interpreter is installed correctly")
	}

	// Python 2 prints its version on stderr.
	out := strings.TrimSpace(string(stdout))
	if out == "" {
		out = strings.TrimSpace(string(stderr))
	}
	return out, nil
}
