package outbound

import (
	"context"

	"video-generation-orchestrator/domain"
)

type SynthesizeImageParams struct {
	Prompt          string
	ReferenceImages [][]byte
	AspectRatio     domain.AspectRatio
	Model           string
}

type SynthesizeVideoParams struct {
	Prompt          string
	FirstFrame      []byte
	DurationSeconds int
	AspectRatio     domain.AspectRatio
	Model           string
}

// ImageSynthesizerPort is the first-frame half of the external model
// capability. Face and likeness compositing is the model's job; callers only
// supply the prompt and reference images.
type ImageSynthesizerPort interface {
	Synthesize(ctx context.Context, params SynthesizeImageParams) ([]byte, error)
}

// VideoSynthesizerPort animates a scene from its conditioning first frame.
type VideoSynthesizerPort interface {
	Synthesize(ctx context.Context, params SynthesizeVideoParams) ([]byte, error)
}
