// Package certs implements the certificate retrieval stage: a recursive
// secure copy of the master's certificate directory to the local machine.
package certs

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/logger"
)

// ErrNoCopyTool means no secure-copy capability is configured; the pipeline
// maps it to its dedicated exit code before any connection attempt.
var ErrNoCopyTool = errors.New("no secure-copy capability available: configure an SSH password, private key, or key path")

// remoteCopier is the slice of the SSH connector this stage needs.
type remoteCopier interface {
	Connect(ctx context.Context, cfg connector.ConnectionCfg) error
	IsConnected() bool
	DownloadDir(ctx context.Context, remoteDir, localDir string) error
	Close() error
}

// Step copies the certificate directory from the cluster master.
type Step struct {
	cfg    *config.Config
	copier remoteCopier
}

// NewStep builds the certificate retrieval stage.
func NewStep(cfg *config.Config) *Step {
	return &Step{cfg: cfg, copier: connector.NewSSHConnector()}
}

func (s *Step) Name() string {
	return "Fetch certificates"
}

// Precheck always reports not-done: the master's certificate directory is
// authoritative and local contents are refreshed on every run.
func (s *Step) Precheck(ctx context.Context) (bool, error) {
	return false, nil
}

func (s *Step) Run(ctx context.Context) error {
	log := logger.Get().With("step", s.Name())

	if !s.cfg.HasCopyCredentials() {
		return ErrNoCopyTool
	}

	host := s.cfg.MasterHostname()
	if host == "" {
		return errors.New("master address is empty, cannot derive certificate host")
	}

	connCfg := connector.ConnectionCfg{
		Host:           host,
		Port:           s.cfg.SSH.Port,
		User:           s.cfg.SSH.User,
		Password:       s.cfg.SSH.Password,
		PrivateKey:     []byte(s.cfg.SSH.PrivateKey),
		PrivateKeyPath: s.cfg.SSH.PrivateKeyPath,
		Timeout:        common.DefaultSSHTimeout,
	}

	log.Infof("Copying %s from %s@%s to %s", s.cfg.RemoteCertDir, s.cfg.SSH.User, host, s.cfg.LocalCertDir)
	start := time.Now()

	if err := s.copier.Connect(ctx, connCfg); err != nil {
		return err
	}
	defer s.copier.Close()

	// Keepalive probe: a session that died right after the handshake should
	// fail here, not partway through the recursive copy.
	if !s.copier.IsConnected() {
		return connector.NewConnectionError(host, errors.New("ssh session did not answer keepalive"))
	}

	if err := s.copier.DownloadDir(ctx, s.cfg.RemoteCertDir, s.cfg.LocalCertDir); err != nil {
		return errors.Wrapf(err, "failed to copy certificates from %s", host)
	}
	log.Successf("Certificates copied in %s", time.Since(start).Round(time.Millisecond))

	for _, p := range []string{s.cfg.Certs.CACert, s.cfg.Certs.AdminCert, s.cfg.Certs.AdminKey} {
		if _, err := os.Stat(p); err != nil {
			log.Warnf("Expected certificate file %s not present after copy", p)
		}
	}
	return nil
}
