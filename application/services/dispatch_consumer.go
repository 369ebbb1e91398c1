package services

import (
	"context"
	"encoding/json"
	"errors"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/domain"
)

type dispatchConsumer struct {
	logger   outbound.LoggerPort
	jobs     outbound.JobStorePort
	executor inbound.StepExecutorPort
}

// NewDispatchConsumer wires the at-least-once queue policy: poison messages
// are acknowledged, duplicate deliveries of terminal jobs are no-ops, and
// transient failures request redelivery so the durable run resumes.
func NewDispatchConsumer(logger outbound.LoggerPort, jobs outbound.JobStorePort,
	executor inbound.StepExecutorPort) inbound.DispatchConsumerPort {
	return &dispatchConsumer{
		logger:   logger,
		jobs:     jobs,
		executor: executor,
	}
}

func (c *dispatchConsumer) HandleMessage(ctx context.Context, body []byte) inbound.Disposition {
	var message domain.DispatchMessage
	if err := json.Unmarshal(body, &message); err != nil || message.GenerationRequest.GenerationID == "" {
		// Malformed bodies can never succeed; retrying risks a poison loop.
		c.logger.ErrorWithFields(err, "dropping malformed dispatch message", map[string]interface{}{
			"body": string(body),
		})
		return inbound.AckMessage
	}

	generationID := message.GenerationRequest.GenerationID
	job, err := c.jobs.Get(ctx, generationID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.logger.ErrorWithFields(err, "dispatch message for unknown job", map[string]interface{}{
				"generationId": generationID,
			})
			return inbound.AckMessage
		}
		c.logger.Error(err, "failed to load job for dispatch message")
		return inbound.RetryMessage
	}

	switch job.Status {
	case domain.JobStatusCompleted, domain.JobStatusFailed:
		// Expected under at-least-once delivery.
		c.logger.InfoWithFields("duplicate delivery for terminal job", map[string]interface{}{
			"generationId": generationID,
			"status":       string(job.Status),
		})
		return inbound.AckMessage
	case domain.JobStatusPending:
		transitioned, err := c.jobs.MarkProcessing(ctx, generationID)
		if err != nil {
			c.logger.Error(err, "failed to mark job processing")
			return inbound.RetryMessage
		}
		if !transitioned {
			// Another delivery won the PENDING->PROCESSING race and owns the run.
			c.logger.InfoWithFields("job claimed by a concurrent delivery", map[string]interface{}{
				"generationId": generationID,
			})
			return inbound.AckMessage
		}
	case domain.JobStatusProcessing:
		// Redelivery of a run that died mid-flight. Re-entering is safe: the
		// checkpoints short-circuit completed steps and finalize is guarded.
		c.logger.InfoWithFields("resuming job from redelivered message", map[string]interface{}{
			"generationId": generationID,
		})
	}

	// Run on the durably stored request; it is identical to the message body
	// but survives payload drift between enqueue and delivery.
	if err := c.executor.Run(ctx, job.Request); err != nil {
		c.logger.ErrorWithFields(err, "run did not reach a terminal status", map[string]interface{}{
			"generationId": generationID,
		})
		return inbound.RetryMessage
	}
	return inbound.AckMessage
}
