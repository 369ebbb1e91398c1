package dto

type RoleAssignment struct {
	RoleID  string `json:"roleId" binding:"required"`
	ActorID string `json:"actorId" binding:"required"`
}

type StartGenerationRequest struct {
	StoryboardID string           `json:"storyboardId" binding:"required"`
	Assignments  []RoleAssignment `json:"assignments" binding:"required"`
}

type StartGenerationResponse struct {
	GenerationID string `json:"generationId"`
}

type GenerationStatusResponse struct {
	GenerationID     string `json:"generationId"`
	Status           string `json:"status"`
	GeneratedAssetID string `json:"generatedAssetId,omitempty"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
}
