package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/domain"
)

const (
	defaultModel        = "wan-2.5-i2v"
	defaultOutputFormat = "mp4"
	currentSpecVersion  = 1
)

type submissionService struct {
	logger      outbound.LoggerPort
	jobs        outbound.JobStorePort
	queue       outbound.DispatchPublisherPort
	storyboards outbound.StoryboardStorePort
	actors      outbound.ActorCatalogPort
}

func NewSubmissionService(logger outbound.LoggerPort, jobs outbound.JobStorePort,
	queue outbound.DispatchPublisherPort, storyboards outbound.StoryboardStorePort,
	actors outbound.ActorCatalogPort) inbound.SubmissionPort {
	return &submissionService{
		logger:      logger,
		jobs:        jobs,
		queue:       queue,
		storyboards: storyboards,
		actors:      actors,
	}
}

func (s *submissionService) Submit(ctx context.Context, request domain.GenerationRequest) (string, error) {
	if err := request.Validate(); err != nil {
		return "", err
	}

	job := domain.GenerationJob{
		ID:      request.GenerationID,
		UserID:  request.UserID,
		Request: request,
		Status:  domain.JobStatusPending,
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return "", &domain.StorageError{Op: "insert job", Err: err}
	}

	if err := s.queue.Publish(ctx, domain.DispatchMessage{GenerationRequest: request}); err != nil {
		// The PENDING row already exists; a client retry of the whole
		// submission is a no-op insert followed by a fresh enqueue.
		return "", &domain.StorageError{Op: "enqueue dispatch", Err: err}
	}

	s.logger.InfoWithFields("generation job submitted", map[string]interface{}{
		"generationId": request.GenerationID,
		"storyboardId": request.StoryboardID,
		"scenes":       len(request.Scenes),
	})

	return request.GenerationID, nil
}

// StartGeneration expands the compact storyboard+assignments form into a full
// request and submits it.
func (s *submissionService) StartGeneration(ctx context.Context, params inbound.StartGenerationParams) (string, error) {
	if params.StoryboardID == "" {
		return "", &domain.ValidationError{Field: "storyboardId", Reason: "required"}
	}
	if len(params.Assignments) == 0 {
		return "", &domain.ValidationError{Field: "assignments", Reason: "at least one role assignment is required"}
	}
	for _, assignment := range params.Assignments {
		if assignment.RoleID == "" || assignment.ActorID == "" {
			return "", &domain.ValidationError{Field: "assignments", Reason: "each assignment needs roleId and actorId"}
		}
	}

	storyboard, err := s.storyboards.GetStoryboard(ctx, params.StoryboardID)
	if err != nil {
		if errors.Is(err, domain.ErrStoryboardNotFound) {
			return "", &domain.ValidationError{Field: "storyboardId", Reason: "storyboard not found"}
		}
		return "", &domain.StorageError{Op: "load storyboard", Err: err}
	}

	explicit := make(map[string]*domain.Actor)
	for _, assignment := range params.Assignments {
		if assignment.ActorID == inbound.AutoCastActorID {
			continue
		}
		actor, err := s.actors.GetActor(ctx, assignment.ActorID)
		if err != nil {
			if errors.Is(err, domain.ErrActorNotFound) {
				return "", &domain.ValidationError{
					Field:  "assignments",
					Reason: fmt.Sprintf("actor %s not found", assignment.ActorID),
				}
			}
			return "", &domain.StorageError{Op: "load actor", Err: err}
		}
		explicit[assignment.RoleID] = actor
	}

	generationID := uuid.NewString()
	request := domain.GenerationRequest{
		GenerationID:     generationID,
		StoryboardID:     storyboard.ID,
		UserID:           params.UserID,
		AspectRatio:      storyboard.AspectRatio,
		Model:            defaultModel,
		OutputFormat:     defaultOutputFormat,
		OutputStorageKey: fmt.Sprintf("users/%s/generations/%s", params.UserID, generationID),
		Scenes:           expandScenes(storyboard, explicit),
		SpecVersion:      currentSpecVersion,
	}

	return s.Submit(ctx, request)
}

func (s *submissionService) Status(ctx context.Context, generationID string) (*domain.GenerationJob, error) {
	return s.jobs.Get(ctx, generationID)
}

func expandScenes(storyboard *domain.Storyboard, explicit map[string]*domain.Actor) []domain.SceneSpec {
	scenes := make([]domain.SceneSpec, 0, len(storyboard.Scenes))
	for _, scene := range storyboard.Scenes {
		roles := scene.Roles
		if len(roles) == 0 {
			roles = storyboard.Roles
		}
		bindings := make([]domain.RoleBinding, 0, len(roles))
		for _, role := range roles {
			binding := domain.RoleBinding{Role: role}
			if actor, ok := explicit[role.ID]; ok {
				bound := *actor
				binding.Actor = &bound
			}
			bindings = append(bindings, binding)
		}
		scenes = append(scenes, domain.SceneSpec{
			SceneID:          scene.SceneID,
			Order:            scene.Order,
			FirstFramePrompt: scene.FirstFramePrompt,
			ScenePrompt:      scene.ScenePrompt,
			DurationSeconds:  scene.DurationSeconds,
			CameraStyle:      scene.CameraStyle,
			LocationHint:     scene.LocationHint,
			Mood:             scene.Mood,
			Audio:            scene.Audio,
			Roles:            bindings,
		})
	}
	return scenes
}
