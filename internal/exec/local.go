package exec

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/rileyhilliard/profdash/internal/errors"
)

// localShell returns the user's shell, falling back to /bin/sh.
func localShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// ExecuteLocal runs a command line through the user's shell, wiring the given
// streams. A nil stdin leaves the command without input.
// Returns the exit code and any execution error; a non-zero exit is not an error.
func ExecuteLocal(ctx context.Context, cmd string, workDir string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int, err error) {
	command := exec.CommandContext(ctx, localShell(), "-c", cmd)

	if workDir != "" {
		command.Dir = workDir
	}

	command.Stdin = stdin
	command.Stdout = stdout
	command.Stderr = stderr

	runErr := command.Run()
	if runErr != nil {
		// Command ran but returned non-zero
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.WrapWithCode(runErr, errors.ErrExec,
			"Couldn't run the command locally",
			"Make sure the command exists and is executable.")
	}

	return 0, nil
}

// ExecuteLocalCapture runs a command line through the user's shell and
// captures all output.
func ExecuteLocalCapture(ctx context.Context, cmd string, workDir string) (stdout, stderr []byte, exitCode int, err error) {
	var outBuf, errBuf bytes.Buffer
	exitCode, err = ExecuteLocal(ctx, cmd, workDir, nil, &outBuf, &errBuf)
	return outBuf.Bytes(), errBuf.Bytes(), exitCode, err
}
