// Package pipeline sequences the bootstrap stages: platform detection,
// kubectl download, certificate retrieval, kubeconfig writing, and cluster
// verification.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mensylisir/kubeboot/pkg/config"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/platform"
	"github.com/mensylisir/kubeboot/pkg/runner"
	"github.com/mensylisir/kubeboot/pkg/step"
	"github.com/mensylisir/kubeboot/pkg/step/certs"
	"github.com/mensylisir/kubeboot/pkg/step/download"
	"github.com/mensylisir/kubeboot/pkg/step/kubeconfig"
)

// Pipeline owns the ordered stage list for one bootstrap run.
type Pipeline struct {
	cfg   *config.Config
	steps []step.Step
	runID string
}

// New assembles the full bootstrap pipeline. Platform detection happens here
// rather than as a stage of its own, since every later stage needs its
// output and an unsupported host should fail before any work starts.
func New(cfg *config.Config, out io.Writer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pair, err := platform.Detect()
	if err != nil {
		return nil, err
	}
	logger.Get().Infof("Detected platform %s", pair)

	local := &connector.LocalConnector{}
	r := runner.New()

	downloadStep := download.NewStep(cfg, pair, local, r, out)
	kubectlPath := downloadStep.InstallPath()

	return &Pipeline{
		cfg:   cfg,
		runID: uuid.NewString(),
		steps: []step.Step{
			downloadStep,
			certs.NewStep(cfg),
			kubeconfig.NewWriteStep(cfg, local, r, kubectlPath),
			kubeconfig.NewVerifyStep(cfg, local, r, kubectlPath, out),
		},
	}, nil
}

// RunID identifies this run in logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the stages in order, fail-fast. It returns the per-stage
// results alongside the first error; results for stages never reached are
// absent.
func (p *Pipeline) Run(ctx context.Context) ([]step.Result, error) {
	log := logger.Get().With("run", p.runID)
	results := make([]step.Result, 0, len(p.steps))

	for i, s := range p.steps {
		log.Infof("[%d/%d] %s", i+1, len(p.steps), s.Name())
		start := time.Now()

		done, err := s.Precheck(ctx)
		if err != nil {
			log.Warnf("Precheck for %q failed, running anyway: %v", s.Name(), err)
		}
		if done {
			log.Infof("Skipping %q, already satisfied", s.Name())
			results = append(results, step.Result{
				Name:     s.Name(),
				Status:   step.StatusSkipped,
				Duration: time.Since(start),
			})
			continue
		}

		if err := s.Run(ctx); err != nil {
			log.Errorf("Stage %q failed: %v", s.Name(), err)
			results = append(results, step.Result{
				Name:     s.Name(),
				Status:   step.StatusFailed,
				Err:      err,
				Duration: time.Since(start),
			})
			return results, err
		}

		results = append(results, step.Result{
			Name:     s.Name(),
			Status:   step.StatusSucceeded,
			Duration: time.Since(start),
		})
	}

	log.Successf("Bootstrap complete, %d stage(s) run", len(results))
	return results, nil
}
