package outbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// JobStorePort is the durable table of generation jobs. All transitions are
// status guarded so that concurrent executor instances cannot race each other
// into a second terminal state.
type JobStorePort interface {
	// Insert creates the job in PENDING. Inserting an id that already exists
	// is a no-op, which makes submission retries single-shot per generationId.
	Insert(ctx context.Context, job domain.GenerationJob) error

	Get(ctx context.Context, generationID string) (*domain.GenerationJob, error)

	// MarkProcessing transitions PENDING -> PROCESSING. Returns false when the
	// job was not in PENDING, i.e. another delivery got there first.
	MarkProcessing(ctx context.Context, generationID string) (bool, error)

	// Complete transitions PROCESSING -> COMPLETED and records the generated
	// asset in one conditional update. Returns false when the job was no
	// longer PROCESSING.
	Complete(ctx context.Context, generationID, assetID string) (bool, error)

	// Fail transitions PROCESSING -> FAILED with the failure detail. Returns
	// false when the job was no longer PROCESSING.
	Fail(ctx context.Context, generationID, errorMessage string) (bool, error)
}
