package domain

import "time"

type AspectRatio string

const (
	AspectRatioPortrait  AspectRatio = "9:16"
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioSquare    AspectRatio = "1:1"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether a job in this status will never transition again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageKey string `json:"imageKey"`
}

// RoleBinding ties a role slot to a concrete actor. A nil Actor means the
// role is auto-cast by the resolver before any model call.
type RoleBinding struct {
	Role  Role   `json:"role"`
	Actor *Actor `json:"actor,omitempty"`
}

type DialogueLine struct {
	RoleID string `json:"roleId"`
	Text   string `json:"text"`
}

type AudioConfig struct {
	Dialogue         []DialogueLine `json:"dialogue,omitempty"`
	AmbienceTrackKey string         `json:"ambienceTrackKey,omitempty"`
	SfxTrackKey      string         `json:"sfxTrackKey,omitempty"`
}

type SceneSpec struct {
	SceneID          string        `json:"sceneId"`
	Order            int           `json:"order"`
	FirstFramePrompt string        `json:"firstFramePrompt"`
	ScenePrompt      string        `json:"scenePrompt"`
	DurationSeconds  int           `json:"durationSeconds"`
	CameraStyle      string        `json:"cameraStyle,omitempty"`
	LocationHint     string        `json:"locationHint,omitempty"`
	Mood             string        `json:"mood,omitempty"`
	Audio            *AudioConfig  `json:"audioConfig,omitempty"`
	Roles            []RoleBinding `json:"roles"`
}

// GenerationRequest is the immutable input of one pipeline run. GenerationID
// doubles as the idempotency key for every downstream operation.
type GenerationRequest struct {
	GenerationID     string      `json:"generationId"`
	StoryboardID     string      `json:"storyboardId"`
	UserID           string      `json:"userId"`
	AspectRatio      AspectRatio `json:"aspectRatio"`
	Model            string      `json:"model"`
	OutputFormat     string      `json:"outputFormat"`
	OutputStorageKey string      `json:"outputStorageKey"`
	Scenes           []SceneSpec `json:"scenes"`
	SpecVersion      int         `json:"specVersion"`
}

// GenerationJob is the durable record tracking one run. It is owned
// exclusively by the orchestrator; GeneratedAssetID is set only on COMPLETED
// and ErrorMessage only on FAILED.
type GenerationJob struct {
	ID               string
	UserID           string
	Request          GenerationRequest
	Status           JobStatus
	GeneratedAssetID string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StepCheckpoint marks a pipeline step as durably complete, together with the
// output reference it produced. One row per (GenerationID, StepName).
type StepCheckpoint struct {
	GenerationID string
	StepName     string
	Output       string
	CompletedAt  time.Time
}

// CastMember is a role slot resolved to a concrete actor.
type CastMember struct {
	Role  Role  `json:"role"`
	Actor Actor `json:"actor"`
}

// SceneExecutionSpec is a SceneSpec with every role bound; only fully bound
// scenes ever reach a model invocation.
type SceneExecutionSpec struct {
	SceneID          string       `json:"sceneId"`
	Order            int          `json:"order"`
	FirstFramePrompt string       `json:"firstFramePrompt"`
	ScenePrompt      string       `json:"scenePrompt"`
	DurationSeconds  int          `json:"durationSeconds"`
	CameraStyle      string       `json:"cameraStyle,omitempty"`
	LocationHint     string       `json:"locationHint,omitempty"`
	Mood             string       `json:"mood,omitempty"`
	Audio            *AudioConfig `json:"audioConfig,omitempty"`
	Cast             []CastMember `json:"cast"`
}

// StoryboardScene is a template scene: the same shape as SceneSpec but its
// roles are unbound slots.
type StoryboardScene struct {
	SceneID          string       `json:"id"`
	Order            int          `json:"order"`
	FirstFramePrompt string       `json:"firstFramePrompt"`
	ScenePrompt      string       `json:"scenePrompt"`
	DurationSeconds  int          `json:"durationSeconds"`
	CameraStyle      string       `json:"cameraStyle,omitempty"`
	LocationHint     string       `json:"locationHint,omitempty"`
	Mood             string       `json:"mood,omitempty"`
	Audio            *AudioConfig `json:"audioConfig,omitempty"`
	Roles            []Role       `json:"roles"`
}

type Storyboard struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AspectRatio AspectRatio       `json:"aspectRatio"`
	Scenes      []StoryboardScene `json:"scenes"`
	Roles       []Role            `json:"roles"`
	Tags        []string          `json:"tags,omitempty"`
}

// DispatchMessage is the work-queue payload. It carries the full request so
// the worker can reconstruct the run without re-joining the storyboard.
type DispatchMessage struct {
	GenerationRequest GenerationRequest `json:"generationRequest"`
}
