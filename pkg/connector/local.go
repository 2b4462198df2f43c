package connector

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// LocalConnector executes commands on the local host through the shell.
type LocalConnector struct{}

// NewLocalConnector returns a connector for the local host.
func NewLocalConnector() *LocalConnector {
	return &LocalConnector{}
}

func (l *LocalConnector) Exec(ctx context.Context, cmd string, opts *ExecOptions) (stdout, stderr []byte, err error) {
	effective := ExecOptions{}
	if opts != nil {
		effective = *opts
	}

	runCtx := ctx
	if effective.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, effective.Timeout)
		defer cancel()
	}

	shell := []string{"/bin/sh", "-c"}
	if runtime.GOOS == "windows" {
		shell = []string{"cmd", "/C"}
	}
	c := exec.CommandContext(runCtx, shell[0], append(shell[1:], cmd)...)

	if len(effective.Env) > 0 {
		c.Env = append(os.Environ(), effective.Env...)
	}
	if len(effective.Stdin) > 0 {
		c.Stdin = bytes.NewReader(effective.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	if effective.Stream != nil {
		c.Stdout = io.MultiWriter(&stdoutBuf, effective.Stream)
		c.Stderr = io.MultiWriter(&stderrBuf, effective.Stream)
	} else {
		c.Stdout = &stdoutBuf
		c.Stderr = &stderrBuf
	}

	runErr := c.Run()
	stdout, stderr = stdoutBuf.Bytes(), stderrBuf.Bytes()
	if runErr == nil {
		return stdout, stderr, nil
	}

	exitCode := -1
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	if ctxErr := runCtx.Err(); ctxErr != nil {
		runErr = ctxErr
	}
	return stdout, stderr,
		NewCommandError(cmd, exitCode, string(stdout), strings.TrimSpace(string(stderr)), runErr)
}

func (l *LocalConnector) LookPath(ctx context.Context, file string) (string, error) {
	return exec.LookPath(file)
}

func (l *LocalConnector) Close() error {
	return nil
}

var _ Connector = (*LocalConnector)(nil)
