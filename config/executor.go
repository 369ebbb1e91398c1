package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ExecutorConfig struct {
	// MaxAttempts bounds retries per step; permanent errors are never retried.
	MaxAttempts int
	// StepTimeout caps one attempt of a step unless the step overrides it.
	StepTimeout    time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	WorkerPoolSize int
}

func GetExecutorConfig() (*ExecutorConfig, error) {
	cfg := &ExecutorConfig{
		MaxAttempts:    3,
		StepTimeout:    10 * time.Minute,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     time.Minute,
		WorkerPoolSize: 120,
	}

	if raw := os.Getenv("STEP_MAX_ATTEMPTS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("STEP_MAX_ATTEMPTS must be a positive integer")
		}
		cfg.MaxAttempts = parsed
	}
	if raw := os.Getenv("STEP_TIMEOUT_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("STEP_TIMEOUT_SECONDS must be a positive integer")
		}
		cfg.StepTimeout = time.Duration(parsed) * time.Second
	}
	if raw := os.Getenv("STEP_INITIAL_BACKOFF_MS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("STEP_INITIAL_BACKOFF_MS must be a positive integer")
		}
		cfg.InitialBackoff = time.Duration(parsed) * time.Millisecond
	}
	if raw := os.Getenv("WORKER_POOL_SIZE"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("WORKER_POOL_SIZE must be a positive integer")
		}
		cfg.WorkerPoolSize = parsed
	}

	return cfg, nil
}
