// Package download implements the fetch-and-install stage for the kubectl
// binary.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/platform"
	"github.com/mensylisir/kubeboot/pkg/runner"
	"github.com/mensylisir/kubeboot/pkg/transfer"
)

// BuildDownloadURL constructs the release artifact URL:
// <base>/<version>/bin/<platform>/<arch>/kubectl.
func BuildDownloadURL(base, version string, pair platform.Pair) string {
	return fmt.Sprintf("%s/%s/bin/%s/%s/%s",
		strings.TrimRight(base, "/"), version, pair.Platform, pair.Arch, common.KubectlBinaryName)
}

// Step downloads kubectl for the detected target pair and installs it.
type Step struct {
	cfg    *config.Config
	pair   platform.Pair
	local  *connector.LocalConnector
	runner *runner.Runner
	out    io.Writer
}

// NewStep builds the download stage. out receives the post-install sanity
// echo of the tool's configuration.
func NewStep(cfg *config.Config, pair platform.Pair, local *connector.LocalConnector, r *runner.Runner, out io.Writer) *Step {
	if out == nil {
		out = os.Stdout
	}
	return &Step{cfg: cfg, pair: pair, local: local, runner: r, out: out}
}

func (s *Step) Name() string {
	return "Download kubectl"
}

// InstallPath is the final location of the binary.
func (s *Step) InstallPath() string {
	return filepath.Join(s.cfg.InstallDir, common.KubectlBinaryName)
}

// Precheck is satisfied when the installed binary already reports the
// requested client version.
func (s *Step) Precheck(ctx context.Context) (bool, error) {
	log := logger.Get().With("step", s.Name())

	if _, err := os.Stat(s.InstallPath()); err != nil {
		return false, nil
	}
	version, err := s.runner.ClientVersion(ctx, s.local, runner.CommonOptions{BinaryPath: s.InstallPath()})
	if err != nil {
		log.Debugf("Installed kubectl did not report a version, re-downloading: %v", err)
		return false, nil
	}
	if version != s.cfg.KubernetesVersion {
		log.Infof("Installed kubectl is %s, want %s", version, s.cfg.KubernetesVersion)
		return false, nil
	}
	log.Infof("kubectl %s already installed at %s", version, s.InstallPath())
	return true, nil
}

func (s *Step) Run(ctx context.Context) error {
	log := logger.Get().With("step", s.Name())

	if err := config.ValidateReleaseVersion(s.cfg.KubernetesVersion); err != nil {
		return err
	}

	tool, err := transfer.Select(ctx, s.local, s.cfg.Transfer.DisableNative)
	if err != nil {
		return err
	}

	url := BuildDownloadURL(s.cfg.ReleaseBaseURL, s.cfg.KubernetesVersion, s.pair)
	log.Infof("Downloading %s via %s", url, tool.Name())

	tmpDir, err := os.MkdirTemp("", "kubeboot-download-")
	if err != nil {
		return errors.Wrap(err, "failed to create download directory")
	}
	defer os.RemoveAll(tmpDir)

	binPath := filepath.Join(tmpDir, common.KubectlBinaryName)

	if s.cfg.Transfer.VerifyChecksum {
		sumPath := binPath + ".sha256"
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return tool.Fetch(gctx, url, binPath) })
		g.Go(func() error { return tool.Fetch(gctx, url+".sha256", sumPath) })
		if err := g.Wait(); err != nil {
			return err
		}
		if err := verifyChecksum(binPath, sumPath); err != nil {
			return err
		}
		log.Infof("Checksum verified for %s", binPath)
	} else {
		if err := tool.Fetch(ctx, url, binPath); err != nil {
			return err
		}
	}

	if err := os.Chmod(binPath, 0755); err != nil {
		return errors.Wrapf(err, "failed to make %s executable", binPath)
	}
	if err := moveFile(binPath, s.InstallPath()); err != nil {
		return errors.Wrapf(err, "failed to install kubectl to %s", s.InstallPath())
	}
	log.Successf("Installed kubectl %s at %s", s.cfg.KubernetesVersion, s.InstallPath())

	// Sanity echo of the freshly installed tool's configuration.
	view, err := s.runner.ConfigView(ctx, s.local, runner.CommonOptions{
		BinaryPath:     s.InstallPath(),
		KubeconfigPath: s.cfg.KubeconfigPath,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, view)
	return nil
}

// verifyChecksum compares the binary's SHA-256 digest against the first
// field of the published checksum file.
func verifyChecksum(binPath, sumPath string) error {
	sumData, err := os.ReadFile(sumPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read checksum file %s", sumPath)
	}
	fields := strings.Fields(strings.TrimSpace(string(sumData)))
	if len(fields) == 0 {
		return errors.Errorf("checksum file %s is empty", sumPath)
	}
	expected := strings.ToLower(fields[0])

	f, err := os.Open(binPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s for checksum", binPath)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return errors.Wrapf(err, "failed to hash %s", binPath)
	}
	actual := hex.EncodeToString(h.Sum(nil))

	if !strings.EqualFold(actual, expected) {
		return errors.Errorf("checksum mismatch for %s: expected %s, got %s", binPath, expected, actual)
	}
	return nil
}

// moveFile renames src to dst, copying across filesystems when rename is
// not possible.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

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
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
