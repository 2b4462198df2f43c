package connector

import (
	"fmt"
	"strings"
)

// CommandError carries the detail of a failed command execution, including
// the exit code of the invoked program so callers can propagate it.
type CommandError struct {
	Cmd        string
	ExitCode   int
	Stdout     string
	Stderr     string
	Underlying error
}

// NewCommandError records one failed execution attempt. exitCode is -1 when
// the program never reported one (killed, timed out, not started).
func NewCommandError(cmd string, exitCode int, stdout, stderr string, underlying error) *CommandError {
	return &CommandError{Cmd: cmd, ExitCode: exitCode, Stdout: stdout, Stderr: stderr, Underlying: underlying}
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command %q failed with exit code %d", e.Cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, " (%v)", e.Underlying)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Underlying }

// ConnectionError wraps a failure to establish or keep a connection to a
// host.
type ConnectionError struct {
	Host string
	Err  error
}

func NewConnectionError(host string, err error) *ConnectionError {
	return &ConnectionError{Host: host, Err: err}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
