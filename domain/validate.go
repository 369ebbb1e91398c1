package domain

import "fmt"

// Validate checks the request invariants: scenes non-empty, scene orders
// dense and unique starting at 1, positive durations, and no role bound twice
// within a scene.
func (r GenerationRequest) Validate() error {
	if r.GenerationID == "" {
		return &ValidationError{Field: "generationId", Reason: "required"}
	}
	if r.UserID == "" {
		return &ValidationError{Field: "userId", Reason: "required"}
	}
	if r.OutputStorageKey == "" {
		return &ValidationError{Field: "outputStorageKey", Reason: "required"}
	}
	switch r.AspectRatio {
	case AspectRatioPortrait, AspectRatioLandscape, AspectRatioSquare:
	default:
		return &ValidationError{Field: "aspectRatio", Reason: fmt.Sprintf("unsupported value %q", r.AspectRatio)}
	}
	if len(r.Scenes) == 0 {
		return &ValidationError{Field: "scenes", Reason: "must not be empty"}
	}

	seen := make(map[int]string, len(r.Scenes))
	for _, scene := range r.Scenes {
		if scene.SceneID == "" {
			return &ValidationError{Field: "scenes", Reason: "scene without sceneId"}
		}
		if other, ok := seen[scene.Order]; ok {
			return &ValidationError{
				Field:  "scenes",
				Reason: fmt.Sprintf("scenes %s and %s share order %d", other, scene.SceneID, scene.Order),
			}
		}
		seen[scene.Order] = scene.SceneID

		if scene.DurationSeconds <= 0 {
			return &ValidationError{
				Field:  "scenes",
				Reason: fmt.Sprintf("scene %s has non-positive duration", scene.SceneID),
			}
		}

		roles := make(map[string]struct{}, len(scene.Roles))
		for _, binding := range scene.Roles {
			if binding.Role.ID == "" {
				return &ValidationError{
					Field:  "scenes",
					Reason: fmt.Sprintf("scene %s has a role without id", scene.SceneID),
				}
			}
			if _, ok := roles[binding.Role.ID]; ok {
				return &ValidationError{
					Field:  "scenes",
					Reason: fmt.Sprintf("scene %s binds role %s twice", scene.SceneID, binding.Role.ID),
				}
			}
			roles[binding.Role.ID] = struct{}{}
		}
	}

	// Dense ordering starting at 1.
	for order := 1; order <= len(r.Scenes); order++ {
		if _, ok := seen[order]; !ok {
			return &ValidationError{
				Field:  "scenes",
				Reason: fmt.Sprintf("scene order %d is missing", order),
			}
		}
	}

	return nil
}
