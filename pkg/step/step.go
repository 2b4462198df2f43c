// Package step defines the unit of work the bootstrap pipeline executes.
// Stages run strictly in order; the first error aborts the rest of the run.
package step

import (
	"context"
	"time"
)

// Step is one bootstrap stage.
type Step interface {
	// Name identifies the stage in logs.
	Name() string
	// Precheck reports whether the stage's outcome is already in place,
	// allowing a re-run to skip completed work.
	Precheck(ctx context.Context) (done bool, err error)
	// Run performs the stage.
	Run(ctx context.Context) error
}

// Status of an executed step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result records the outcome of one step for the run summary.
type Result struct {
	Name     string
	Status   Status
	Err      error
	Duration time.Duration
}
