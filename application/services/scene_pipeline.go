package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/channel_utils"
	"video-generation-orchestrator/domain"
)

const (
	StepResolveRoles = "resolve-roles"
	StepAssemble     = "assemble"
	StepFinalize     = "finalize"
)

func FirstFrameStep(sceneID string) string { return "first-frame:" + sceneID }

func SceneVideoStep(sceneID string) string { return "scene-video:" + sceneID }

type scenePipeline struct {
	logger     outbound.LoggerPort
	workerPool outbound.TaskDispatcher
	resolver   inbound.RoleResolverPort
	images     outbound.ImageSynthesizerPort
	videos     outbound.VideoSynthesizerPort
	media      outbound.MediaStorePort
	assembler  outbound.VideoAssemblerPort
	assets     outbound.AssetStorePort
	jobs       outbound.JobStorePort
}

// NewScenePipeline builds the planner for the generation step graph:
// resolve-roles -> {first-frame:sceneId} -> {scene-video:sceneId} -> assemble
// -> finalize. All request context a step needs flows through checkpoint
// outputs, so any step can re-derive its inputs after a restart.
func NewScenePipeline(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	resolver inbound.RoleResolverPort, images outbound.ImageSynthesizerPort,
	videos outbound.VideoSynthesizerPort, media outbound.MediaStorePort,
	assembler outbound.VideoAssemblerPort, assets outbound.AssetStorePort,
	jobs outbound.JobStorePort) inbound.StepPlanner {
	return &scenePipeline{
		logger:     logger,
		workerPool: workerPool,
		resolver:   resolver,
		images:     images,
		videos:     videos,
		media:      media,
		assembler:  assembler,
		assets:     assets,
		jobs:       jobs,
	}
}

func (p *scenePipeline) Plan(request domain.GenerationRequest) []inbound.Step {
	steps := make([]inbound.Step, 0, 2*len(request.Scenes)+3)

	steps = append(steps, inbound.Step{
		Name: StepResolveRoles,
		Run: func(ctx context.Context, _ map[string]string) (string, error) {
			return p.resolveAll(ctx, request)
		},
	})

	videoDeps := make([]string, 0, len(request.Scenes))
	for _, scene := range request.Scenes {
		sceneID := scene.SceneID
		steps = append(steps, inbound.Step{
			Name:     FirstFrameStep(sceneID),
			Requires: []string{StepResolveRoles},
			Run: func(ctx context.Context, outputs map[string]string) (string, error) {
				return p.generateFirstFrame(ctx, request, sceneID, outputs)
			},
		})
		steps = append(steps, inbound.Step{
			Name:     SceneVideoStep(sceneID),
			Requires: []string{FirstFrameStep(sceneID)},
			Run: func(ctx context.Context, outputs map[string]string) (string, error) {
				return p.generateSceneVideo(ctx, request, sceneID, outputs)
			},
		})
		videoDeps = append(videoDeps, SceneVideoStep(sceneID))
	}

	steps = append(steps, inbound.Step{
		Name:     StepAssemble,
		Requires: videoDeps,
		Run: func(ctx context.Context, outputs map[string]string) (string, error) {
			return p.assemble(ctx, request, outputs)
		},
	})

	steps = append(steps, inbound.Step{
		Name:     StepFinalize,
		Requires: []string{StepAssemble},
		Run: func(ctx context.Context, outputs map[string]string) (string, error) {
			return p.finalize(ctx, request, outputs)
		},
	})

	return steps
}

func (p *scenePipeline) resolveAll(ctx context.Context, request domain.GenerationRequest) (string, error) {
	specs := make([]domain.SceneExecutionSpec, 0, len(request.Scenes))
	for _, scene := range request.Scenes {
		spec, err := p.resolver.Resolve(ctx, scene)
		if err != nil {
			return "", err
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Order < specs[j].Order })

	payload, err := json.Marshal(specs)
	if err != nil {
		return "", fmt.Errorf("encoding execution specs: %w", err)
	}
	return string(payload), nil
}

func (p *scenePipeline) generateFirstFrame(ctx context.Context, request domain.GenerationRequest,
	sceneID string, outputs map[string]string) (string, error) {
	spec, err := boundScene(request.GenerationID, sceneID, outputs)
	if err != nil {
		return "", err
	}

	references := make([][]byte, 0, len(spec.Cast))
	for _, member := range spec.Cast {
		image, err := p.media.Get(ctx, member.Actor.ImageKey)
		if err != nil {
			return "", fmt.Errorf("fetching reference image for actor %s: %w", member.Actor.ID, err)
		}
		references = append(references, image)
	}

	frame, err := p.images.Synthesize(ctx, outbound.SynthesizeImageParams{
		Prompt:          composeFirstFramePrompt(spec),
		ReferenceImages: references,
		AspectRatio:     request.AspectRatio,
		Model:           request.Model,
	})
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/frames/%s.png", request.OutputStorageKey, sceneID)
	if err := p.media.Put(ctx, key, frame, "image/png"); err != nil {
		return "", err
	}
	return key, nil
}

func (p *scenePipeline) generateSceneVideo(ctx context.Context, request domain.GenerationRequest,
	sceneID string, outputs map[string]string) (string, error) {
	spec, err := boundScene(request.GenerationID, sceneID, outputs)
	if err != nil {
		return "", err
	}

	frameKey, ok := outputs[FirstFrameStep(sceneID)]
	if !ok {
		return "", &domain.ConsistencyError{
			GenerationID: request.GenerationID,
			Reason:       fmt.Sprintf("scene %s has no first-frame checkpoint", sceneID),
		}
	}
	frame, err := p.media.Get(ctx, frameKey)
	if err != nil {
		return "", fmt.Errorf("fetching first frame %s: %w", frameKey, err)
	}

	video, err := p.videos.Synthesize(ctx, outbound.SynthesizeVideoParams{
		Prompt:          composeScenePrompt(spec),
		FirstFrame:      frame,
		DurationSeconds: spec.DurationSeconds,
		AspectRatio:     request.AspectRatio,
		Model:           request.Model,
	})
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/scenes/%03d-%s.%s", request.OutputStorageKey, spec.Order, sceneID, request.OutputFormat)
	if err := p.media.Put(ctx, key, video, "video/"+request.OutputFormat); err != nil {
		return "", err
	}
	return key, nil
}

func (p *scenePipeline) assemble(ctx context.Context, request domain.GenerationRequest,
	outputs map[string]string) (string, error) {
	specs, err := decodeSpecs(request.GenerationID, outputs)
	if err != nil {
		return "", err
	}

	segmentFiles, err := p.downloadSegments(ctx, request, specs, outputs)
	if err != nil {
		return "", err
	}

	ambienceFile, err := p.downloadAmbience(ctx, request, specs)
	if err != nil {
		return "", err
	}

	assembled, err := p.assembler.Assemble(outbound.AssembleVideosParams{
		SegmentFiles: segmentFiles,
		AmbienceFile: ambienceFile,
		OutputFormat: request.OutputFormat,
	})
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/final.%s", request.OutputStorageKey, request.OutputFormat)
	if err := p.media.UploadFile(ctx, key, assembled); err != nil {
		return "", err
	}
	return key, nil
}

func (p *scenePipeline) finalize(ctx context.Context, request domain.GenerationRequest,
	outputs map[string]string) (string, error) {
	assetKey, ok := outputs[StepAssemble]
	if !ok || assetKey == "" {
		return "", &domain.ConsistencyError{
			GenerationID: request.GenerationID,
			Reason:       "no assemble checkpoint at finalize",
		}
	}

	totalDuration := 0
	if specs, err := decodeSpecs(request.GenerationID, outputs); err == nil {
		for _, spec := range specs {
			totalDuration += spec.DurationSeconds
		}
	}

	assetID, err := p.assets.RegisterVideoAsset(ctx, assetKey, totalDuration)
	if err != nil {
		return "", fmt.Errorf("registering final asset: %w", err)
	}

	updated, err := p.jobs.Complete(ctx, request.GenerationID, assetID)
	if err != nil {
		return "", fmt.Errorf("completing job: %w", err)
	}
	if !updated {
		// A concurrent executor instance finalized first; the conditional
		// update makes this a no-op rather than a second transition.
		p.logger.WarnWithFields("job no longer PROCESSING at finalize", map[string]interface{}{
			"generationId": request.GenerationID,
		})
	}
	return assetID, nil
}

type segmentResult struct {
	order int
	file  string
	err   error
}

// downloadSegments fetches every scene video concurrently and returns the
// local files in scene order. A missing or duplicated segment means the
// checkpoint set is corrupt and fails the job.
func (p *scenePipeline) downloadSegments(ctx context.Context, request domain.GenerationRequest,
	specs []domain.SceneExecutionSpec, outputs map[string]string) ([]string, error) {
	channels := make([]<-chan segmentResult, 0, len(specs))
	for _, spec := range specs {
		key, ok := outputs[SceneVideoStep(spec.SceneID)]
		if !ok || key == "" {
			return nil, &domain.ConsistencyError{
				GenerationID: request.GenerationID,
				Reason:       fmt.Sprintf("scene %s (order %d) has no scene-video checkpoint", spec.SceneID, spec.Order),
			}
		}
		channels = append(channels, p.fetchSegment(ctx, request.GenerationID, spec, key))
	}

	merged, err := channel_utils.MergeChannels(p.workerPool, channels...)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[int]string, len(specs))
	var firstErr error
	for result := range merged {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		byOrder[result.order] = result.file
	}
	if firstErr != nil {
		for _, file := range byOrder {
			_ = os.Remove(file)
		}
		return nil, firstErr
	}

	ordered := make([]string, 0, len(specs))
	for order := 1; order <= len(specs); order++ {
		file, ok := byOrder[order]
		if !ok {
			return nil, &domain.ConsistencyError{
				GenerationID: request.GenerationID,
				Reason:       fmt.Sprintf("segment for order %d missing after download", order),
			}
		}
		ordered = append(ordered, file)
	}
	return ordered, nil
}

func (p *scenePipeline) fetchSegment(ctx context.Context, generationID string,
	spec domain.SceneExecutionSpec, key string) <-chan segmentResult {
	out := make(chan segmentResult, 1)
	err := p.workerPool.Submit(func() {
		defer close(out)
		body, err := p.media.Get(ctx, key)
		if err != nil {
			out <- segmentResult{err: fmt.Errorf("fetching segment %s: %w", key, err)}
			return
		}
		file := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%03d-%s.mp4", generationID, spec.Order, spec.SceneID))
		if err := os.WriteFile(file, body, 0o644); err != nil {
			out <- segmentResult{err: fmt.Errorf("writing segment file: %w", err)}
			return
		}
		out <- segmentResult{order: spec.Order, file: file}
	})
	if err != nil {
		out <- segmentResult{err: err}
		close(out)
	}
	return out
}

// downloadAmbience stages the first configured ambience track, if any.
func (p *scenePipeline) downloadAmbience(ctx context.Context, request domain.GenerationRequest,
	specs []domain.SceneExecutionSpec) (string, error) {
	for _, spec := range specs {
		if spec.Audio == nil || spec.Audio.AmbienceTrackKey == "" {
			continue
		}
		body, err := p.media.Get(ctx, spec.Audio.AmbienceTrackKey)
		if err != nil {
			return "", fmt.Errorf("fetching ambience track %s: %w", spec.Audio.AmbienceTrackKey, err)
		}
		file := filepath.Join(os.TempDir(), fmt.Sprintf("%s-ambience%s", request.GenerationID, filepath.Ext(spec.Audio.AmbienceTrackKey)))
		if err := os.WriteFile(file, body, 0o644); err != nil {
			return "", fmt.Errorf("writing ambience file: %w", err)
		}
		return file, nil
	}
	return "", nil
}

func decodeSpecs(generationID string, outputs map[string]string) ([]domain.SceneExecutionSpec, error) {
	payload, ok := outputs[StepResolveRoles]
	if !ok || payload == "" {
		return nil, &domain.ConsistencyError{
			GenerationID: generationID,
			Reason:       "no resolve-roles checkpoint",
		}
	}
	var specs []domain.SceneExecutionSpec
	if err := json.Unmarshal([]byte(payload), &specs); err != nil {
		return nil, &domain.ConsistencyError{
			GenerationID: generationID,
			Reason:       fmt.Sprintf("resolve-roles checkpoint is not decodable: %v", err),
		}
	}
	return specs, nil
}

func boundScene(generationID, sceneID string, outputs map[string]string) (domain.SceneExecutionSpec, error) {
	specs, err := decodeSpecs(generationID, outputs)
	if err != nil {
		return domain.SceneExecutionSpec{}, err
	}
	for _, spec := range specs {
		if spec.SceneID == sceneID {
			return spec, nil
		}
	}
	return domain.SceneExecutionSpec{}, &domain.ConsistencyError{
		GenerationID: generationID,
		Reason:       fmt.Sprintf("scene %s absent from resolve-roles checkpoint", sceneID),
	}
}

func composeFirstFramePrompt(spec domain.SceneExecutionSpec) string {
	var b strings.Builder
	b.WriteString(spec.FirstFramePrompt)
	if spec.LocationHint != "" {
		fmt.Fprintf(&b, ", %s", spec.LocationHint)
	}
	if spec.Mood != "" {
		fmt.Fprintf(&b, ", %s mood", spec.Mood)
	}
	for i, member := range spec.Cast {
		fmt.Fprintf(&b, ". %s is portrayed by the person in reference image %d", member.Role.DisplayName, i+1)
	}
	return b.String()
}

func composeScenePrompt(spec domain.SceneExecutionSpec) string {
	var b strings.Builder
	b.WriteString(spec.ScenePrompt)
	if spec.CameraStyle != "" {
		fmt.Fprintf(&b, ", %s", spec.CameraStyle)
	}
	if spec.Mood != "" {
		fmt.Fprintf(&b, ", %s mood", spec.Mood)
	}
	return b.String()
}
