// Package kubeconfig implements the configuration writing and connectivity
// verification stages, both driving the installed kubectl binary.
package kubeconfig

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/runner"
)

// WriteStep registers the cluster, credential, and context entries and
// activates the context. The four mutations are chained fail-fast; a failed
// one aborts the rest.
type WriteStep struct {
	cfg         *config.Config
	conn        connector.Connector
	runner      *runner.Runner
	kubectlPath string
	now         func() time.Time
}

// NewWriteStep builds the config writing stage. kubectlPath is the binary
// installed by the download stage.
func NewWriteStep(cfg *config.Config, conn connector.Connector, r *runner.Runner, kubectlPath string) *WriteStep {
	return &WriteStep{cfg: cfg, conn: conn, runner: r, kubectlPath: kubectlPath, now: time.Now}
}

func (s *WriteStep) Name() string {
	return "Write kubeconfig"
}

// Precheck always reports not-done: the mutations are idempotent and
// re-running them converges the config file to the requested state.
func (s *WriteStep) Precheck(ctx context.Context) (bool, error) {
	return false, nil
}

// BackupPath returns path suffixed with t's date in 8-digit form, e.g.
// config.20260828.
func BackupPath(path string, t time.Time) string {
	return path + "." + t.Format(common.BackupDateFormat)
}

func (s *WriteStep) Run(ctx context.Context) error {
	log := logger.Get().With("step", s.Name())

	s.backup(log)

	opts := runner.CommonOptions{BinaryPath: s.kubectlPath, KubeconfigPath: s.cfg.KubeconfigPath}

	if err := s.runner.ConfigSetCluster(ctx, s.conn, runner.SetClusterOptions{
		CommonOptions:        opts,
		ClusterName:          s.cfg.ClusterName,
		Server:               "https://" + s.cfg.MasterAddress,
		CertificateAuthority: s.cfg.Certs.CACert,
	}); err != nil {
		return err
	}
	if err := s.runner.ConfigSetCredentials(ctx, s.conn, runner.SetCredentialsOptions{
		CommonOptions:     opts,
		UserName:          s.cfg.UserName,
		ClientCertificate: s.cfg.Certs.AdminCert,
		ClientKey:         s.cfg.Certs.AdminKey,
	}); err != nil {
		return err
	}
	if err := s.runner.ConfigSetContext(ctx, s.conn, runner.SetContextOptions{
		CommonOptions: opts,
		ContextName:   s.cfg.ContextName,
		ClusterName:   s.cfg.ClusterName,
		UserName:      s.cfg.UserName,
	}); err != nil {
		return err
	}
	if err := s.runner.ConfigUseContext(ctx, s.conn, opts, s.cfg.ContextName); err != nil {
		return err
	}

	log.Successf("Context %s active in %s", s.cfg.ContextName, s.cfg.KubeconfigPath)
	return nil
}

// backup copies the existing config file aside before mutation. Best-effort:
// a failure is logged but does not abort the run, and a same-day backup is
// silently overwritten.
func (s *WriteStep) backup(log *logger.Logger) {
	path := s.cfg.KubeconfigPath
	if _, err := os.Stat(path); err != nil {
		return
	}

	backupPath := BackupPath(path, s.now())
	if err := copyFile(path, backupPath); err != nil {
		log.Warnf("Failed to back up %s to %s: %v", path, backupPath, err)
		return
	}
	log.Infof("Backed up existing config to %s", backupPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
