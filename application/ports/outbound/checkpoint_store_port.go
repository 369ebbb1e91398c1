package outbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// CheckpointStorePort persists one row per (generationId, stepName). The
// executor consults it before every step and writes it after, so a re-entered
// run resumes at the first missing checkpoint.
type CheckpointStorePort interface {
	// Put stores a checkpoint. Writing the same (generationId, stepName) twice
	// must be safe; a retried step always produces the same output reference.
	Put(ctx context.Context, checkpoint domain.StepCheckpoint) error

	List(ctx context.Context, generationID string) ([]domain.StepCheckpoint, error)
}
