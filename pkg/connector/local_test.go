package connector

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExecSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell semantics differ on windows")
	}
	l := NewLocalConnector()
	stdout, stderr, err := l.Exec(context.Background(), "echo hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(stdout))
	assert.Empty(t, stderr)
}

func TestLocalExecExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell semantics differ on windows")
	}
	l := NewLocalConnector()
	_, _, err := l.Exec(context.Background(), "exit 42", nil)
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 42, cmdErr.ExitCode)
	assert.Equal(t, "exit 42", cmdErr.Cmd)
}

func TestLocalExecStderrCaptured(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell semantics differ on windows")
	}
	l := NewLocalConnector()
	_, stderr, err := l.Exec(context.Background(), "echo oops >&2; exit 1", nil)
	require.Error(t, err)
	assert.Contains(t, string(stderr), "oops")

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Stderr, "oops")
}

func TestLocalExecStream(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell semantics differ on windows")
	}
	l := NewLocalConnector()
	var stream bytes.Buffer
	stdout, _, err := l.Exec(context.Background(), "echo streamed", &ExecOptions{Stream: &stream})
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", string(stdout))
	assert.Equal(t, "streamed\n", stream.String())
}

func TestLocalExecTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell semantics differ on windows")
	}
	l := NewLocalConnector()
	start := time.Now()
	_, _, err := l.Exec(context.Background(), "sleep 10", &ExecOptions{Timeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLocalLookPath(t *testing.T) {
	l := NewLocalConnector()
	_, err := l.LookPath(context.Background(), "definitely-not-a-real-binary-kubeboot")
	assert.Error(t, err)
}
