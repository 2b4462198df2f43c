// Package connector abstracts command execution and file transfer against
// the local host and the remote cluster master. The bootstrap pipeline runs
// kubectl through a LocalConnector and fetches certificates through an
// SSHConnector.
package connector

import (
	"context"
	"io"
	"time"

	"golang.org/x/crypto/ssh"
)

// ConnectionCfg holds the parameters to reach a remote host.
type ConnectionCfg struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKey     []byte
	PrivateKeyPath string
	Timeout        time.Duration

	// HostKeyCallback verifies the server key. When nil the connector falls
	// back to InsecureIgnoreHostKey and logs a warning.
	HostKeyCallback ssh.HostKeyCallback
}

// ExecOptions controls a single command execution.
type ExecOptions struct {
	Timeout time.Duration
	Env     []string
	Stdin   []byte

	// Stream receives combined output as it is produced, in addition to the
	// captured stdout/stderr returned by Exec.
	Stream io.Writer
}

// Connector executes commands on a host.
type Connector interface {
	Exec(ctx context.Context, cmd string, opts *ExecOptions) (stdout, stderr []byte, err error)
	LookPath(ctx context.Context, file string) (string, error)
	Close() error
}
