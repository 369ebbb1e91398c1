package outbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// DispatchPublisherPort enqueues dispatch messages for the worker. Delivery is
// at-least-once; consumers must tolerate duplicates.
type DispatchPublisherPort interface {
	Publish(ctx context.Context, message domain.DispatchMessage) error
}
