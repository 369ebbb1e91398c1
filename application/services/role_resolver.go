package services

import (
	"context"
	"errors"
	"fmt"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/domain"
)

type roleResolver struct {
	logger  outbound.LoggerPort
	actors  outbound.ActorCatalogPort
	casting *config.CastingConfig
}

// NewRoleResolver builds the resolver. Auto-cast picks the configured default
// actor for the role's name, then the global default; because both come from
// static configuration, re-resolving a scene on retry yields the same cast.
func NewRoleResolver(logger outbound.LoggerPort, actors outbound.ActorCatalogPort,
	casting *config.CastingConfig) inbound.RoleResolverPort {
	return &roleResolver{
		logger:  logger,
		actors:  actors,
		casting: casting,
	}
}

func (r *roleResolver) Resolve(ctx context.Context, scene domain.SceneSpec) (domain.SceneExecutionSpec, error) {
	cast := make([]domain.CastMember, 0, len(scene.Roles))
	for _, binding := range scene.Roles {
		actorID := ""
		if binding.Actor != nil {
			actorID = binding.Actor.ID
		} else {
			actorID = r.casting.ActorFor(binding.Role.Name)
			if actorID == "" {
				return domain.SceneExecutionSpec{}, &domain.BindingError{
					RoleID: binding.Role.ID,
					Reason: "no casting policy for unbound role",
				}
			}
		}

		actor, err := r.actors.GetActor(ctx, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrActorNotFound) {
				return domain.SceneExecutionSpec{}, &domain.BindingError{
					RoleID:  binding.Role.ID,
					ActorID: actorID,
					Reason:  "actor not found",
				}
			}
			return domain.SceneExecutionSpec{}, fmt.Errorf("looking up actor %s: %w", actorID, err)
		}
		if actor.ImageKey == "" {
			return domain.SceneExecutionSpec{}, &domain.BindingError{
				RoleID:  binding.Role.ID,
				ActorID: actorID,
				Reason:  "actor has no reference image",
			}
		}

		cast = append(cast, domain.CastMember{Role: binding.Role, Actor: *actor})
	}

	return domain.SceneExecutionSpec{
		SceneID:          scene.SceneID,
		Order:            scene.Order,
		FirstFramePrompt: scene.FirstFramePrompt,
		ScenePrompt:      scene.ScenePrompt,
		DurationSeconds:  scene.DurationSeconds,
		CameraStyle:      scene.CameraStyle,
		LocationHint:     scene.LocationHint,
		Mood:             scene.Mood,
		Audio:            scene.Audio,
		Cast:             cast,
	}, nil
}
