package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/domain"
)

// errRunInterrupted marks failures of the executor machinery itself (shutdown,
// checkpoint writes). The run reached no terminal status and the dispatch
// message must be redelivered to resume it.
var errRunInterrupted = errors.New("run interrupted")

type stepExecutor struct {
	logger      outbound.LoggerPort
	workerPool  outbound.TaskDispatcher
	jobs        outbound.JobStorePort
	checkpoints outbound.CheckpointStorePort
	planner     inbound.StepPlanner
	cfg         *config.ExecutorConfig
}

func NewStepExecutor(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	jobs outbound.JobStorePort, checkpoints outbound.CheckpointStorePort,
	planner inbound.StepPlanner, cfg *config.ExecutorConfig) inbound.StepExecutorPort {
	return &stepExecutor{
		logger:      logger,
		workerPool:  workerPool,
		jobs:        jobs,
		checkpoints: checkpoints,
		planner:     planner,
		cfg:         cfg,
	}
}

// Run executes the step graph for one job. Steps whose checkpoints already
// exist are skipped, so re-entry after a crash redoes at most the steps that
// were in flight. Steps whose dependencies are all checkpointed run
// concurrently on the worker pool; the schedule is pure fan-out/fan-in over
// the dependency map.
func (e *stepExecutor) Run(ctx context.Context, request domain.GenerationRequest) error {
	generationID := request.GenerationID
	plan := e.planner.Plan(request)

	existing, err := e.checkpoints.List(ctx, generationID)
	if err != nil {
		return fmt.Errorf("%w: listing checkpoints: %v", errRunInterrupted, err)
	}

	outputs := make(map[string]string, len(plan))
	for _, checkpoint := range existing {
		outputs[checkpoint.StepName] = checkpoint.Output
	}

	pending := make([]inbound.Step, 0, len(plan))
	for _, step := range plan {
		if _, done := outputs[step.Name]; !done {
			pending = append(pending, step)
		}
	}
	if len(pending) < len(plan) {
		e.logger.InfoWithFields("resuming generation run", map[string]interface{}{
			"generationId":   generationID,
			"checkpointed":   len(plan) - len(pending),
			"remainingSteps": len(pending),
		})
	}

	for len(pending) > 0 {
		var ready, blocked []inbound.Step
		for _, step := range pending {
			if e.satisfied(step, outputs) {
				ready = append(ready, step)
			} else {
				blocked = append(blocked, step)
			}
		}
		if len(ready) == 0 {
			err := &domain.ConsistencyError{
				GenerationID: generationID,
				Reason:       fmt.Sprintf("no runnable step among %d remaining", len(blocked)),
			}
			return e.failJob(ctx, generationID, "schedule", err, outputs)
		}

		results, stepName, waveErr := e.runWave(ctx, generationID, ready, outputs)
		for name, output := range results {
			outputs[name] = output
		}
		if waveErr != nil {
			if errors.Is(waveErr, errRunInterrupted) || ctx.Err() != nil {
				return waveErr
			}
			return e.failJob(ctx, generationID, stepName, waveErr, outputs)
		}
		pending = blocked
	}

	return nil
}

func (e *stepExecutor) satisfied(step inbound.Step, outputs map[string]string) bool {
	for _, dep := range step.Requires {
		if _, ok := outputs[dep]; !ok {
			return false
		}
	}
	return true
}

// runWave executes one set of independent steps concurrently and returns the
// outputs of the ones that checkpointed. On error it also reports the name of
// the first step that failed.
func (e *stepExecutor) runWave(ctx context.Context, generationID string, steps []inbound.Step,
	outputs map[string]string) (map[string]string, string, error) {
	waveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		results    = make(map[string]string, len(steps))
		firstErr   error
		failedStep string
	)

	for _, step := range steps {
		step := step
		wg.Add(1)
		submitErr := e.workerPool.Submit(func() {
			defer wg.Done()
			output, err := e.runStep(waveCtx, generationID, step, outputs)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Prefer a permanent error over a sibling's cancellation
				// fallout so the recorded failure names the real cause.
				if firstErr == nil || (domain.IsPermanent(err) && !domain.IsPermanent(firstErr)) {
					firstErr = err
					failedStep = step.Name
					cancel()
				}
				return
			}
			results[step.Name] = output
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: submitting step %s: %v", errRunInterrupted, step.Name, submitErr)
				failedStep = step.Name
			}
			mu.Unlock()
			cancel()
		}
	}
	wg.Wait()

	// A sibling canceled by another step's failure is not itself the failure.
	if firstErr != nil && ctx.Err() != nil && !errors.Is(firstErr, errRunInterrupted) && !domain.IsPermanent(firstErr) {
		firstErr = fmt.Errorf("%w: %v", errRunInterrupted, firstErr)
	}

	return results, failedStep, firstErr
}

// runStep executes a single step with its bounded retry policy and writes the
// checkpoint on success. Permanent errors short-circuit the retries.
func (e *stepExecutor) runStep(ctx context.Context, generationID string, step inbound.Step,
	outputs map[string]string) (string, error) {
	timeout := step.Timeout
	if timeout == 0 {
		timeout = e.cfg.StepTimeout
	}
	maxAttempts := step.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = e.cfg.MaxAttempts
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = e.cfg.InitialBackoff
	expo.MaxInterval = e.cfg.MaxBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxAttempts-1)), ctx)

	var output string
	attempt := 0
	operation := func() error {
		attempt++
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		out, err := step.Run(stepCtx, outputs)
		if err != nil {
			if domain.IsPermanent(err) {
				return backoff.Permanent(err)
			}
			e.logger.WarnWithFields("step attempt failed", map[string]interface{}{
				"generationId": generationID,
				"step":         step.Name,
				"attempt":      attempt,
				"error":        err.Error(),
			})
			return err
		}
		output = out
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if ctx.Err() != nil && !domain.IsPermanent(err) {
			return "", fmt.Errorf("%w: step %s: %v", errRunInterrupted, step.Name, err)
		}
		return "", err
	}

	checkpoint := domain.StepCheckpoint{
		GenerationID: generationID,
		StepName:     step.Name,
		Output:       output,
		CompletedAt:  time.Now().UTC(),
	}
	if err := e.checkpoints.Put(ctx, checkpoint); err != nil {
		return "", fmt.Errorf("%w: checkpointing step %s: %v", errRunInterrupted, step.Name, err)
	}

	e.logger.DebugWithFields("step checkpointed", map[string]interface{}{
		"generationId": generationID,
		"step":         step.Name,
		"attempts":     attempt,
	})

	return output, nil
}

// failJob records the terminal FAILED status. A FAILED job is never re-run;
// resubmission needs a new generationId.
func (e *stepExecutor) failJob(ctx context.Context, generationID, stepName string,
	stepErr error, outputs map[string]string) error {
	var consistencyErr *domain.ConsistencyError
	if errors.As(stepErr, &consistencyErr) {
		// Full checkpoint dump for investigation; never silently patched.
		e.logger.ErrorWithFields(stepErr, "checkpoint set is inconsistent", map[string]interface{}{
			"generationId": generationID,
			"checkpoints":  outputs,
		})
	}

	message := fmt.Sprintf("step %s: %s: %v", stepName, classify(stepErr), stepErr)
	updated, err := e.jobs.Fail(ctx, generationID, message)
	if err != nil {
		return fmt.Errorf("%w: recording failure: %v", errRunInterrupted, err)
	}
	if !updated {
		e.logger.WarnWithFields("job already terminal while recording failure", map[string]interface{}{
			"generationId": generationID,
		})
		return nil
	}

	e.logger.ErrorWithFields(stepErr, "generation failed", map[string]interface{}{
		"generationId": generationID,
		"step":         stepName,
	})
	return nil
}

func classify(err error) string {
	var bindingErr *domain.BindingError
	var consistencyErr *domain.ConsistencyError
	switch {
	case errors.As(err, &bindingErr):
		return "binding error"
	case errors.As(err, &consistencyErr):
		return "consistency error"
	default:
		return "retries exhausted"
	}
}
