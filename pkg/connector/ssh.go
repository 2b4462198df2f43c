package connector

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mensylisir/kubeboot/pkg/logger"
)

// SSHConnector executes commands and transfers files over an SSH session.
type SSHConnector struct {
	client      *ssh.Client
	sftpClient  *sftp.Client
	connCfg     ConnectionCfg
	isConnected bool
}

// NewSSHConnector returns an unconnected SSH connector.
func NewSSHConnector() *SSHConnector {
	return &SSHConnector{}
}

// Connect dials the host described by cfg.
func (s *SSHConnector) Connect(ctx context.Context, cfg ConnectionCfg) error {
	log := logger.Get()
	s.connCfg = cfg

	authMethods, err := buildAuthMethods(cfg)
	if err != nil {
		return NewConnectionError(cfg.Host, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         timeout,
	}
	if sshConfig.HostKeyCallback == nil {
		log.Warnf("No host key callback configured for %s, falling back to InsecureIgnoreHostKey", cfg.Host)
		sshConfig.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return NewConnectionError(cfg.Host, fmt.Errorf("dial failed: %w", err))
	}
	s.client = client
	s.isConnected = true
	return nil
}

func (s *SSHConnector) IsConnected() bool {
	if s.client == nil || !s.isConnected {
		return false
	}
	_, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil)
	if err != nil {
		s.isConnected = false
		return false
	}
	return true
}

func (s *SSHConnector) Close() error {
	s.isConnected = false
	var firstErr error
	if s.sftpClient != nil {
		if err := s.sftpClient.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close SFTP client for %s: %w", s.connCfg.Host, err)
		}
		s.sftpClient = nil
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.client = nil
	}
	return firstErr
}

func (s *SSHConnector) Exec(ctx context.Context, cmd string, opts *ExecOptions) (stdout, stderr []byte, err error) {
	if s.client == nil {
		return nil, nil, NewConnectionError(s.connCfg.Host, fmt.Errorf("not connected"))
	}

	session, err := s.client.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create SSH session on %s: %w", s.connCfg.Host, err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf safeBuffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return stdoutBuf.Bytes(), stderrBuf.Bytes(),
			NewCommandError(cmd, -1, stdoutBuf.String(), stderrBuf.String(), ctx.Err())
	case runErr := <-done:
		if runErr == nil {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), nil
		}
		exitCode := -1
		if exitErr, ok := runErr.(*ssh.ExitError); ok {
			exitCode = exitErr.ExitStatus()
		}
		return stdoutBuf.Bytes(), stderrBuf.Bytes(),
			NewCommandError(cmd, exitCode, stdoutBuf.String(), stderrBuf.String(), runErr)
	}
}

func (s *SSHConnector) LookPath(ctx context.Context, file string) (string, error) {
	stdout, _, err := s.Exec(ctx, "command -v "+file, nil)
	if err != nil {
		return "", fmt.Errorf("%s not found on %s: %w", file, s.connCfg.Host, err)
	}
	return string(stdout), nil
}

func (s *SSHConnector) ensureSftp() error {
	if s.sftpClient != nil {
		return nil
	}
	if s.client == nil {
		return NewConnectionError(s.connCfg.Host, fmt.Errorf("not connected"))
	}
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("failed to create SFTP client for %s: %w", s.connCfg.Host, err)
	}
	s.sftpClient = client
	return nil
}

// DownloadDir recursively copies a remote directory tree into localDir,
// overwriting existing local files. Remote file modes are preserved.
func (s *SSHConnector) DownloadDir(ctx context.Context, remoteDir, localDir string) error {
	log := logger.Get()

	if err := s.ensureSftp(); err != nil {
		return err
	}

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return fmt.Errorf("failed to create local directory %s: %w", localDir, err)
	}

	walker := s.sftpClient.Walk(remoteDir)
	for walker.Step() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := walker.Err(); err != nil {
			log.Warnf("Skipping remote path %s: %v", walker.Path(), err)
			continue
		}

		remotePath := walker.Path()
		info := walker.Stat()

		relPath, err := filepath.Rel(remoteDir, remotePath)
		if err != nil {
			return fmt.Errorf("failed to relativize %s against %s: %w", remotePath, remoteDir, err)
		}
		localPath := filepath.Join(localDir, relPath)

		if info.IsDir() {
			if err := os.MkdirAll(localPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create local directory %s: %w", localPath, err)
			}
			continue
		}

		if err := s.downloadTo(remotePath, localPath); err != nil {
			return err
		}
		if err := os.Chmod(localPath, info.Mode().Perm()); err != nil {
			log.Warnf("Failed to set permissions on %s: %v", localPath, err)
		}
		log.Debugf("Copied %s -> %s", remotePath, localPath)
	}
	return nil
}

func (s *SSHConnector) downloadTo(remotePath, localPath string) error {
	srcFile, err := s.sftpClient.Open(remotePath)
	if err != nil {
		return fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("failed to copy %s to %s: %w", remotePath, localPath, err)
	}
	return nil
}

func buildAuthMethods(cfg ConnectionCfg) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(cfg.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	} else if cfg.PrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file %s: %w", cfg.PrivateKeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key from %s: %w", cfg.PrivateKeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH authentication method provided for host %s", cfg.Host)
	}
	return methods, nil
}

var _ Connector = (*SSHConnector)(nil)
