package inbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// RoleResolverPort turns a scene's role bindings into a fully bound execution
// spec. Resolution must be deterministic: resolving the same scene twice, on
// different attempts, yields the same cast.
type RoleResolverPort interface {
	Resolve(ctx context.Context, scene domain.SceneSpec) (domain.SceneExecutionSpec, error)
}
