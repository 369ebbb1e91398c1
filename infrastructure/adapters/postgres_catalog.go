package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/domain"
)

type postgresActorCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresActorCatalog resolves actors together with the asset key of
// their reference image.
func NewPostgresActorCatalog(pool *pgxpool.Pool) outbound.ActorCatalogPort {
	return &postgresActorCatalog{pool: pool}
}

func (c *postgresActorCatalog) GetActor(ctx context.Context, actorID string) (*domain.Actor, error) {
	query := `
SELECT actors.id, actors.name, assets.asset_key
FROM actors
INNER JOIN assets ON assets.id = actors.asset_id
WHERE actors.id = $1;
`
	row := c.pool.QueryRow(ctx, query, actorID)

	var actor domain.Actor
	if err := row.Scan(&actor.ID, &actor.Name, &actor.ImageKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActorNotFound
		}
		return nil, err
	}
	return &actor, nil
}

type postgresStoryboardStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStoryboardStore reads storyboard templates; the full template
// lives in a single JSONB column.
func NewPostgresStoryboardStore(pool *pgxpool.Pool) outbound.StoryboardStorePort {
	return &postgresStoryboardStore{pool: pool}
}

func (s *postgresStoryboardStore) GetStoryboard(ctx context.Context, storyboardID string) (*domain.Storyboard, error) {
	query := `SELECT data FROM storyboards WHERE id = $1;`
	row := s.pool.QueryRow(ctx, query, storyboardID)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoryboardNotFound
		}
		return nil, err
	}

	var storyboard domain.Storyboard
	if err := json.Unmarshal(data, &storyboard); err != nil {
		return nil, fmt.Errorf("decoding storyboard %s: %w", storyboardID, err)
	}
	return &storyboard, nil
}

type postgresAssetStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAssetStore registers generated assets. Registration is keyed on
// asset_key, so re-running finalize returns the already assigned id.
func NewPostgresAssetStore(pool *pgxpool.Pool) outbound.AssetStorePort {
	return &postgresAssetStore{pool: pool}
}

func (s *postgresAssetStore) RegisterVideoAsset(ctx context.Context, assetKey string, durationSeconds int) (string, error) {
	query := `
INSERT INTO assets (asset_type, asset_key, duration_seconds)
VALUES ('VIDEO', $1, $2)
ON CONFLICT (asset_key) DO UPDATE SET updated_at = NOW()
RETURNING id;
`
	var assetID string
	if err := s.pool.QueryRow(ctx, query, assetKey, durationSeconds).Scan(&assetID); err != nil {
		return "", err
	}
	return assetID, nil
}
