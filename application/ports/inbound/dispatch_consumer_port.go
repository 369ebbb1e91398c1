package inbound

import "context"

// Disposition tells the queue adapter what to do with a delivered message.
type Disposition int

const (
	// AckMessage removes the message; it is never redelivered.
	AckMessage Disposition = iota
	// RetryMessage leaves the message for redelivery with provider backoff,
	// up to the provider's limit, after which it goes to the dead-letter path.
	RetryMessage
)

// DispatchConsumerPort handles one raw queue message body.
type DispatchConsumerPort interface {
	HandleMessage(ctx context.Context, body []byte) Disposition
}
