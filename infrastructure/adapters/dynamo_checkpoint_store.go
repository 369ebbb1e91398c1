package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/domain"
)

type dynamoCheckpointItem struct {
	GenerationID string `dynamodbav:"generation_id"`
	StepName     string `dynamodbav:"step_name"`
	Output       string `dynamodbav:"output"`
	CompletedAt  int64  `dynamodbav:"completed_at"`
}

type dynamoCheckpointStore struct {
	logger    outbound.LoggerPort
	dynamoSvc *dynamodb.DynamoDB
	cfg       *config.CheckpointsConfig
}

// NewDynamoCheckpointStore persists step checkpoints in a table keyed by
// (generation_id, step_name). Re-writing a checkpoint is a plain overwrite; a
// retried step always carries the same output reference.
func NewDynamoCheckpointStore(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB,
	cfg *config.CheckpointsConfig) outbound.CheckpointStorePort {
	return &dynamoCheckpointStore{
		logger:    logger,
		dynamoSvc: dynamoSvc,
		cfg:       cfg,
	}
}

func (s *dynamoCheckpointStore) Put(ctx context.Context, checkpoint domain.StepCheckpoint) error {
	item := dynamoCheckpointItem{
		GenerationID: checkpoint.GenerationID,
		StepName:     checkpoint.StepName,
		Output:       checkpoint.Output,
		CompletedAt:  checkpoint.CompletedAt.Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to marshal checkpoint item", map[string]interface{}{
			"generationId": checkpoint.GenerationID,
			"step":         checkpoint.StepName,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(s.cfg.TableName),
	}
	_, err = s.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to save checkpoint item", map[string]interface{}{
			"generationId": checkpoint.GenerationID,
			"step":         checkpoint.StepName,
		})
	}
	return err
}

func (s *dynamoCheckpointStore) List(ctx context.Context, generationID string) ([]domain.StepCheckpoint, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.cfg.TableName),
		KeyConditionExpression: aws.String("generation_id = :gid"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":gid": {S: aws.String(generationID)},
		},
	}

	checkpoints := make([]domain.StepCheckpoint, 0)
	err := s.dynamoSvc.QueryPagesWithContext(ctx, input,
		func(page *dynamodb.QueryOutput, _ bool) bool {
			for _, raw := range page.Items {
				var item dynamoCheckpointItem
				if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
					s.logger.ErrorWithFields(err, "Failed to unmarshal checkpoint item", map[string]interface{}{
						"generationId": generationID,
					})
					continue
				}
				checkpoints = append(checkpoints, domain.StepCheckpoint{
					GenerationID: item.GenerationID,
					StepName:     item.StepName,
					Output:       item.Output,
					CompletedAt:  time.Unix(item.CompletedAt, 0).UTC(),
				})
			}
			return true
		})
	if err != nil {
		return nil, err
	}
	return checkpoints, nil
}
