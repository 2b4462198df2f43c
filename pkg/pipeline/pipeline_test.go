package pipeline

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/platform"
	"github.com/mensylisir/kubeboot/pkg/step"
	"github.com/mensylisir/kubeboot/pkg/step/certs"
	"github.com/mensylisir/kubeboot/pkg/transfer"
)

type scriptedStep struct {
	name    string
	done    bool
	runErr  error
	ran     *[]string
	prechkd *[]string
}

func (s *scriptedStep) Name() string { return s.name }

func (s *scriptedStep) Precheck(ctx context.Context) (bool, error) {
	if s.prechkd != nil {
		*s.prechkd = append(*s.prechkd, s.name)
	}
	return s.done, nil
}

func (s *scriptedStep) Run(ctx context.Context) error {
	if s.ran != nil {
		*s.ran = append(*s.ran, s.name)
	}
	return s.runErr
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	var ran []string
	p := &Pipeline{runID: "test", steps: []step.Step{
		&scriptedStep{name: "download", ran: &ran},
		&scriptedStep{name: "certs", ran: &ran},
		&scriptedStep{name: "kubeconfig", ran: &ran},
	}}

	results, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"download", "certs", "kubeconfig"}, ran)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, step.StatusSucceeded, r.Status)
	}
}

func TestRunFailFast(t *testing.T) {
	var ran []string
	bang := errors.New("connection refused")
	p := &Pipeline{runID: "test", steps: []step.Step{
		&scriptedStep{name: "download", ran: &ran},
		&scriptedStep{name: "certs", ran: &ran, runErr: bang},
		&scriptedStep{name: "kubeconfig", ran: &ran},
	}}

	results, err := p.Run(context.Background())
	require.ErrorIs(t, err, bang)
	assert.Equal(t, []string{"download", "certs"}, ran)
	require.Len(t, results, 2)
	assert.Equal(t, step.StatusFailed, results[1].Status)
}

func TestRunSkipsSatisfiedStage(t *testing.T) {
	var ran []string
	p := &Pipeline{runID: "test", steps: []step.Step{
		&scriptedStep{name: "download", ran: &ran, done: true},
		&scriptedStep{name: "certs", ran: &ran},
	}}

	results, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"certs"}, ran)
	assert.Equal(t, step.StatusSkipped, results[0].Status)
	assert.Equal(t, step.StatusSucceeded, results[1].Status)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"unsupported os", &platform.UnsupportedPlatformError{OS: "plan9"}, 1},
		{"unsupported arch", &platform.UnsupportedArchitectureError{Arch: "riscv64"}, 2},
		{"no transfer tool", transfer.ErrNoTransferTool, 3},
		{"wrapped transfer tool", errors.Wrap(transfer.ErrNoTransferTool, "selecting downloader"), 3},
		{"no copy tool", certs.ErrNoCopyTool, 4},
		{"command exit code propagates", &connector.CommandError{Cmd: "kubectl get nodes", ExitCode: 7}, 7},
		{"wrapped command error", errors.Wrap(&connector.CommandError{Cmd: "x", ExitCode: 42}, "verify"), 42},
		{"generic error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
