// Package runner wraps invocations of the installed kubectl binary. The
// binary is treated as an opaque collaborator: the runner only knows its
// command-line contract.
package runner

// Runner executes kubectl operations through a connector.
type Runner struct{}

// New returns a kubectl runner.
func New() *Runner {
	return &Runner{}
}
