package adapters

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/domain"
)

type sqsDispatchPublisher struct {
	logger outbound.LoggerPort
	sqsSvc *sqs.SQS
	cfg    *config.SqsConfig
}

func NewSqsDispatchPublisher(logger outbound.LoggerPort, sqsSvc *sqs.SQS,
	cfg *config.SqsConfig) outbound.DispatchPublisherPort {
	return &sqsDispatchPublisher{
		logger: logger,
		sqsSvc: sqsSvc,
		cfg:    cfg,
	}
}

func (p *sqsDispatchPublisher) Publish(ctx context.Context, message domain.DispatchMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.cfg.QueueURL),
		MessageBody: aws.String(string(body)),
	}
	_, err = p.sqsSvc.SendMessageWithContext(ctx, input)
	if err != nil {
		p.logger.ErrorWithFields(err, "Failed to enqueue dispatch message", map[string]interface{}{
			"generationId": message.GenerationRequest.GenerationID,
		})
	}
	return err
}

// SqsDispatchConsumer long-polls the dispatch queue and feeds message bodies
// to the handler. Acked messages are deleted; retried ones are left for the
// visibility timeout to redeliver, with the queue's redrive policy providing
// backoff limits and the dead-letter path.
type SqsDispatchConsumer struct {
	logger  outbound.LoggerPort
	sqsSvc  *sqs.SQS
	cfg     *config.SqsConfig
	handler inbound.DispatchConsumerPort
}

func NewSqsDispatchConsumer(logger outbound.LoggerPort, sqsSvc *sqs.SQS,
	cfg *config.SqsConfig, handler inbound.DispatchConsumerPort) *SqsDispatchConsumer {
	return &SqsDispatchConsumer{
		logger:  logger,
		sqsSvc:  sqsSvc,
		cfg:     cfg,
		handler: handler,
	}
}

// Poll receives and processes batches until the context is canceled.
func (c *SqsDispatchConsumer) Poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		output, err := c.sqsSvc.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: aws.Int64(c.cfg.MaxMessages),
			WaitTimeSeconds:     aws.Int64(c.cfg.WaitTimeSeconds),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error(err, "Failed to receive dispatch messages")
			continue
		}

		for _, message := range output.Messages {
			c.process(ctx, message)
		}
	}
}

func (c *SqsDispatchConsumer) process(ctx context.Context, message *sqs.Message) {
	disposition := c.handler.HandleMessage(ctx, []byte(aws.StringValue(message.Body)))
	if disposition != inbound.AckMessage {
		return
	}

	_, err := c.sqsSvc.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		// The message will be redelivered; the handler treats duplicates of
		// terminal jobs as no-ops, so this only costs a wasted delivery.
		c.logger.Error(err, "Failed to delete acked dispatch message")
	}
}
