package inbound

import (
	"context"
	"time"

	"video-generation-orchestrator/domain"
)

// Step is one named, checkpointed unit of work. Requires lists the step names
// whose checkpoints must exist before this step may run; the executor derives
// the fan-out/fan-in schedule from that dependency map alone.
type Step struct {
	Name     string
	Requires []string

	// Timeout and MaxAttempts override the executor defaults when non-zero.
	Timeout     time.Duration
	MaxAttempts int

	// Run receives the outputs of every already checkpointed step, keyed by
	// step name, and returns this step's own output reference.
	Run func(ctx context.Context, outputs map[string]string) (string, error)
}

// StepPlanner builds the step graph for a request. Planning is pure; all side
// effects live in the step closures.
type StepPlanner interface {
	Plan(request domain.GenerationRequest) []Step
}

// StepExecutorPort drives a job through its step graph to a terminal status.
// A non-nil error means no terminal status was reached and the dispatch
// message should be redelivered.
type StepExecutorPort interface {
	Run(ctx context.Context, request domain.GenerationRequest) error
}
