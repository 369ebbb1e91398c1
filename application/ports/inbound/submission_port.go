package inbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

// AutoCastActorID marks a role assignment left to the casting policy.
const AutoCastActorID = "auto"

type RoleAssignment struct {
	RoleID  string
	ActorID string
}

// StartGenerationParams is the compact submission form: the storyboard
// template plus role assignments, expanded internally into a full
// GenerationRequest.
type StartGenerationParams struct {
	UserID       string
	StoryboardID string
	Assignments  []RoleAssignment
}

type SubmissionPort interface {
	// Submit validates the request, durably creates the PENDING job and
	// enqueues its dispatch message. Calling it twice with the same
	// generationId creates exactly one job.
	Submit(ctx context.Context, request domain.GenerationRequest) (string, error)

	// StartGeneration expands the compact form against the storyboard template
	// and actor catalog, then submits the result.
	StartGeneration(ctx context.Context, params StartGenerationParams) (string, error)

	// Status reads back the job for polling collaborators.
	Status(ctx context.Context, generationID string) (*domain.GenerationJob, error)
}
