package outbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// ActorCatalogPort looks up actors and their reference-image asset keys.
type ActorCatalogPort interface {
	GetActor(ctx context.Context, actorID string) (*domain.Actor, error)
}

// StoryboardStorePort reads storyboard templates for request expansion.
type StoryboardStorePort interface {
	GetStoryboard(ctx context.Context, storyboardID string) (*domain.Storyboard, error)
}

// AssetStorePort registers generated assets so the job can reference them by
// id. Registration is keyed on the asset key and idempotent.
type AssetStorePort interface {
	RegisterVideoAsset(ctx context.Context, assetKey string, durationSeconds int) (string, error)
}
