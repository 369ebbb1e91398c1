package domain

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound        = errors.New("generation job not found")
	ErrStoryboardNotFound = errors.New("storyboard not found")
	ErrActorNotFound      = errors.New("actor not found")
)

// ValidationError rejects a request before any job is created. Client
// correctable, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// BindingError means a role references a missing or unresolvable actor. It is
// permanent and fails the job at role resolution.
type BindingError struct {
	RoleID  string
	ActorID string
	Reason  string
}

func (e *BindingError) Error() string {
	if e.ActorID != "" {
		return fmt.Sprintf("binding role %s to actor %s: %s", e.RoleID, e.ActorID, e.Reason)
	}
	return fmt.Sprintf("binding role %s: %s", e.RoleID, e.Reason)
}

// ConsistencyError means the checkpoint set contradicts itself, e.g. a scene
// segment is missing at assembly time. Permanent; never silently repaired.
type ConsistencyError struct {
	GenerationID string
	Reason       string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent checkpoints for generation %s: %s", e.GenerationID, e.Reason)
}

// StorageError wraps a failed write at submission time; the whole submission
// is safe to retry because nothing durable happened yet.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// IsPermanent reports whether an error must not be retried. Anything else is
// treated as transient and retried with bounded backoff at the step level.
func IsPermanent(err error) bool {
	var ve *ValidationError
	var be *BindingError
	var ce *ConsistencyError
	return errors.As(err, &ve) || errors.As(err, &be) || errors.As(err, &ce)
}
