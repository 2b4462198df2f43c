package pipeline

import (
	"github.com/pkg/errors"

	"github.com/mensylisir/kubeboot/pkg/common"
	"github.com/mensylisir/kubeboot/pkg/connector"
	"github.com/mensylisir/kubeboot/pkg/platform"
	"github.com/mensylisir/kubeboot/pkg/step/certs"
	"github.com/mensylisir/kubeboot/pkg/transfer"
)

// ExitCode maps a pipeline error to the process exit code. Failures of an
// executed command propagate that command's own exit code; everything else
// falls back to the general failure code.
func ExitCode(err error) int {
	if err == nil {
		return common.ExitSuccess
	}

	var platErr *platform.UnsupportedPlatformError
	if errors.As(err, &platErr) {
		return common.ExitUnsupportedPlatform
	}
	var archErr *platform.UnsupportedArchitectureError
	if errors.As(err, &archErr) {
		return common.ExitUnsupportedArch
	}
	if errors.Is(err, transfer.ErrNoTransferTool) {
		return common.ExitNoTransferTool
	}
	if errors.Is(err, certs.ErrNoCopyTool) {
		return common.ExitNoCopyTool
	}

	var cmdErr *connector.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return common.ExitGeneralFailure
}
