package kubeconfig

import (
	"context"
	"io"

	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/runner"
)

// VerifyStep asks the cluster for its node list through the freshly written
// config. It runs last; its failure, typically an unreachable or unhealthy
// apiserver, carries kubectl's own exit code.
type VerifyStep struct {
	cfg         *config.Config
	conn        connector.Connector
	runner      *runner.Runner
	kubectlPath string
	out         io.Writer
}

func NewVerifyStep(cfg *config.Config, conn connector.Connector, r *runner.Runner, kubectlPath string, out io.Writer) *VerifyStep {
	return &VerifyStep{cfg: cfg, conn: conn, runner: r, kubectlPath: kubectlPath, out: out}
}

func (s *VerifyStep) Name() string {
	return "Verify cluster connectivity"
}

func (s *VerifyStep) Precheck(ctx context.Context) (bool, error) {
	return false, nil
}

func (s *VerifyStep) Run(ctx context.Context) error {
	log := logger.Get().With("step", s.Name())
	log.Infof("Querying nodes from https://%s", s.cfg.MasterAddress)

	opts := runner.CommonOptions{BinaryPath: s.kubectlPath, KubeconfigPath: s.cfg.KubeconfigPath}
	if err := s.runner.GetNodes(ctx, s.conn, opts, s.out); err != nil {
		return err
	}

	log.Successf("Cluster at %s answered", s.cfg.MasterAddress)
	return nil
}
