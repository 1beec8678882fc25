package exec

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sh(script string) Command {
	return Command{Name: "/bin/sh", Args: []string{"-c", script}}
}

func TestStart_StreamsAndExitCode(t *testing.T) {
	p, err := Start(context.Background(), sh("echo frame; echo oops >&2; exit 3"))
	require.NoError(t, err)
	assert.NotZero(t, p.PID())

	out, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	errOut, err := io.ReadAll(p.Stderr())
	require.NoError(t, err)

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "frame\n", string(out))
	assert.Equal(t, "oops\n", string(errOut))

	code, err = p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code, "Wait is repeatable")
}

func TestStart_Env(t *testing.T) {
	c := sh(`printf %s "$PYTHONUNBUFFERED"`)
	c.Env = []string{"PYTHONUNBUFFERED=1"}

	p, err := Start(context.Background(), c)
	require.NoError(t, err)
	out, _ := io.ReadAll(p.Stdout())
	_, _ = io.ReadAll(p.Stderr())
	_, err = p.Wait()
	require.NoError(t, err)
	assert.Equal(t, "1", string(out))
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Command{Name: "/definitely/not/here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't start the profiler")
}

func TestProcess_Kill(t *testing.T) {
	p, err := Start(context.Background(), sh("exec sleep 30"))
	require.NoError(t, err)

	require.NoError(t, p.Kill())

	done := make(chan int)
	go func() {
		_, _ = io.ReadAll(p.Stdout())
		_, _ = io.ReadAll(p.Stderr())
		code, _ := p.Wait()
		done <- code
	}()

	select {
	case code := <-done:
		assert.Equal(t, -1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("killed process never exited")
	}

	assert.NoError(t, p.Kill(), "killing an exited process is a no-op")
}
