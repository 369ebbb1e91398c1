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

type postgresJobStore struct {
	logger outbound.LoggerPort
	pool   *pgxpool.Pool
}

// NewPostgresJobStore creates the generations table gateway. Every transition
// is a conditional update on the current status so concurrent executor
// instances can never produce a second terminal transition.
func NewPostgresJobStore(logger outbound.LoggerPort, pool *pgxpool.Pool) outbound.JobStorePort {
	return &postgresJobStore{
		logger: logger,
		pool:   pool,
	}
}

func (s *postgresJobStore) Insert(ctx context.Context, job domain.GenerationJob) error {
	requestJSON, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("encoding generation request: %w", err)
	}

	query := `
INSERT INTO generations (id, user_id, generation_request, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING;
`
	_, err = s.pool.Exec(ctx, query, job.ID, job.UserID, requestJSON, job.Status)
	return err
}

func (s *postgresJobStore) Get(ctx context.Context, generationID string) (*domain.GenerationJob, error) {
	query := `
SELECT id, user_id, generation_request, status, COALESCE(generated_asset_id::text, ''), COALESCE(error_message, ''), created_at, updated_at
FROM generations
WHERE id = $1;
`
	row := s.pool.QueryRow(ctx, query, generationID)

	var job domain.GenerationJob
	var requestJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&requestJSON,
		&job.Status,
		&job.GeneratedAssetID,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(requestJSON, &job.Request); err != nil {
		return nil, fmt.Errorf("decoding generation request for job %s: %w", generationID, err)
	}
	return &job, nil
}

func (s *postgresJobStore) MarkProcessing(ctx context.Context, generationID string) (bool, error) {
	query := `
UPDATE generations
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = $3;
`
	tag, err := s.pool.Exec(ctx, query, generationID, domain.JobStatusProcessing, domain.JobStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *postgresJobStore) Complete(ctx context.Context, generationID, assetID string) (bool, error) {
	query := `
UPDATE generations
SET status = $2, generated_asset_id = $3, updated_at = NOW()
WHERE id = $1 AND status = $4;
`
	tag, err := s.pool.Exec(ctx, query, generationID, domain.JobStatusCompleted, assetID, domain.JobStatusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *postgresJobStore) Fail(ctx context.Context, generationID, errorMessage string) (bool, error) {
	query := `
UPDATE generations
SET status = $2, error_message = $3, updated_at = NOW()
WHERE id = $1 AND status = $4;
`
	tag, err := s.pool.Exec(ctx, query, generationID, domain.JobStatusFailed, errorMessage, domain.JobStatusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
