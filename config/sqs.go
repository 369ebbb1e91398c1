package config

import (
	"fmt"
	"os"
	"strconv"
)

type SqsConfig struct {
	QueueURL        string
	WaitTimeSeconds int64
	MaxMessages     int64
}

func GetSqsConfig() (*SqsConfig, error) {
	queueURL := os.Getenv("DISPATCH_QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("DISPATCH_QUEUE_URL must be set")
	}

	waitTime := int64(20)
	if raw := os.Getenv("DISPATCH_QUEUE_WAIT_SECONDS"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DISPATCH_QUEUE_WAIT_SECONDS must be an integer: %w", err)
		}
		waitTime = parsed
	}

	maxMessages := int64(5)
	if raw := os.Getenv("DISPATCH_QUEUE_MAX_MESSAGES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DISPATCH_QUEUE_MAX_MESSAGES must be an integer: %w", err)
		}
		maxMessages = parsed
	}

	return &SqsConfig{
		QueueURL:        queueURL,
		WaitTimeSeconds: waitTime,
		MaxMessages:     maxMessages,
	}, nil
}
