package model

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus represents the lifecycle state of a scan execution.
type ExecutionStatus string

// Execution lifecycle states.
// An execution starts as Running, and ends as either Finished or Error.
// Error is only set when a failure escapes the top-level run; per-page and
// per-domain failures are absorbed by the pipeline and never change status.
const (
	StatusRunning  ExecutionStatus = "RUNNING"
	StatusFinished ExecutionStatus = "FINISHED"
	StatusError    ExecutionStatus = "ERROR"
)

// Execution identifies one full reconnaissance run against a single target
// domain. It owns all transient per-run state (dedup context, tallies) and
// its lifecycle brackets the whole pipeline.
//
// Design decision: We generate the ID here rather than letting the database
// assign one because findings are inserted throughout the run and need a
// stable execution ID before the run completes.
type Execution struct {
	// ID is a unique identifier for this execution.
	ID string

	// Target is the domain under reconnaissance (e.g., "example.com").
	Target string

	// Start is when the execution began.
	Start time.Time

	// End is when the execution finished or failed. Zero while running.
	End time.Time

	// Status is the current lifecycle state.
	Status ExecutionStatus
}

// NewExecution creates a running execution for the given target domain.
func NewExecution(target string) *Execution {
	return &Execution{
		ID:     uuid.NewString(),
		Target: target,
		Start:  time.Now().UTC(),
		Status: StatusRunning,
	}
}

// Finish marks the execution as completed successfully.
func (e *Execution) Finish() {
	e.End = time.Now().UTC()
	e.Status = StatusFinished
}

// Fail marks the execution as failed.
func (e *Execution) Fail() {
	e.End = time.Now().UTC()
	e.Status = StatusError
}

// Duration returns the elapsed time of the execution, or zero if it is
// still running.
func (e *Execution) Duration() time.Duration {
	if e.End.IsZero() {
		return 0
	}
	return e.End.Sub(e.Start)
}
