package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/domain"
)

type pipelineEnv struct {
	jobs        *memJobStore
	checkpoints *memCheckpointStore
	catalog     *fakeCatalog
	media       *memMediaStore
	images      *fakeImageSynth
	videos      *fakeVideoSynth
	assembler   *fakeAssembler
	assets      *fakeAssets
	planner     inbound.StepPlanner
	executor    inbound.StepExecutorPort
}

func newPipelineEnv() *pipelineEnv {
	env := &pipelineEnv{
		jobs:        newMemJobStore(),
		checkpoints: newMemCheckpointStore(),
		catalog: newFakeCatalog(
			domain.Actor{ID: "actor-hero", Name: "Hero Default", ImageKey: "actors/hero.png"},
			domain.Actor{ID: "actor-default", Name: "Fallback", ImageKey: "actors/fallback.png"},
			domain.Actor{ID: "actor-lee", Name: "Lee", ImageKey: "actors/lee.png"},
		),
		media:     newMemMediaStore(),
		images:    &fakeImageSynth{output: []byte("png-bytes")},
		videos:    &fakeVideoSynth{output: []byte("mp4-bytes")},
		assembler: &fakeAssembler{},
		assets:    &fakeAssets{assetID: "asset-1"},
	}
	env.media.seed("actors/hero.png", []byte("hero-reference"))
	env.media.seed("actors/fallback.png", []byte("fallback-reference"))
	env.media.seed("actors/lee.png", []byte("lee-reference"))

	resolver := NewRoleResolver(nopLogger{}, env.catalog, testCasting())
	env.planner = NewScenePipeline(nopLogger{}, goDispatcher{}, resolver, env.images,
		env.videos, env.media, env.assembler, env.assets, env.jobs)
	env.executor = NewStepExecutor(nopLogger{}, goDispatcher{}, env.jobs,
		env.checkpoints, env.planner, testExecutorConfig())
	return env
}

func pipelineRequest(scenes ...domain.SceneSpec) domain.GenerationRequest {
	return domain.GenerationRequest{
		GenerationID:     "gen-1",
		StoryboardID:     "sb-1",
		UserID:           "user-1",
		AspectRatio:      domain.AspectRatioLandscape,
		Model:            "wan-2.5-i2v",
		OutputFormat:     "mp4",
		OutputStorageKey: "users/user-1/generations/gen-1",
		Scenes:           scenes,
		SpecVersion:      1,
	}
}

func pipelineScene(sceneID string, order int, bindings ...domain.RoleBinding) domain.SceneSpec {
	return domain.SceneSpec{
		SceneID:          sceneID,
		Order:            order,
		FirstFramePrompt: fmt.Sprintf("first frame of %s", sceneID),
		ScenePrompt:      fmt.Sprintf("action of %s", sceneID),
		DurationSeconds:  5,
		Roles:            bindings,
	}
}

func TestPipelineCompletesJob(t *testing.T) {
	env := newPipelineEnv()

	// Scenes arrive out of order; assembly must still be in scene order.
	request := pipelineRequest(
		pipelineScene("scene-b", 2, domain.RoleBinding{Role: domain.Role{ID: "role-1", Name: "hero"}}),
		pipelineScene("scene-a", 1, domain.RoleBinding{
			Role:  domain.Role{ID: "role-1", Name: "hero", DisplayName: "The Hero"},
			Actor: &domain.Actor{ID: "actor-lee"},
		}),
	)
	env.jobs.seed(domain.GenerationJob{ID: "gen-1", UserID: "user-1", Request: request, Status: domain.JobStatusProcessing})

	err := env.executor.Run(context.Background(), request)
	require.NoError(t, err)

	job := env.jobs.job("gen-1")
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, "asset-1", job.GeneratedAssetID)

	// resolve-roles, two first frames, two scene videos, assemble, finalize.
	assert.Equal(t, 7, env.checkpoints.count("gen-1"))
	assert.True(t, env.checkpoints.has("gen-1", StepResolveRoles))
	assert.True(t, env.checkpoints.has("gen-1", FirstFrameStep("scene-a")))
	assert.True(t, env.checkpoints.has("gen-1", SceneVideoStep("scene-b")))
	assert.True(t, env.checkpoints.has("gen-1", StepAssemble))
	assert.True(t, env.checkpoints.has("gen-1", StepFinalize))

	assert.True(t, env.media.has("users/user-1/generations/gen-1/frames/scene-a.png"))
	assert.True(t, env.media.has("users/user-1/generations/gen-1/scenes/001-scene-a.mp4"))
	assert.True(t, env.media.has("users/user-1/generations/gen-1/scenes/002-scene-b.mp4"))
	assert.True(t, env.media.has("users/user-1/generations/gen-1/final.mp4"))

	require.NotNil(t, env.assembler.params)
	require.Len(t, env.assembler.params.SegmentFiles, 2)
	assert.Contains(t, env.assembler.params.SegmentFiles[0], "-001-scene-a")
	assert.Contains(t, env.assembler.params.SegmentFiles[1], "-002-scene-b")

	assert.Equal(t, "users/user-1/generations/gen-1/final.mp4", env.assets.key)
	assert.Equal(t, 10, env.assets.duration)
}

func TestPipelineBindingFailure(t *testing.T) {
	env := newPipelineEnv()

	request := pipelineRequest(pipelineScene("scene-a", 1, domain.RoleBinding{
		Role:  domain.Role{ID: "role-1", Name: "hero"},
		Actor: &domain.Actor{ID: "ghost"},
	}))
	env.jobs.seed(domain.GenerationJob{ID: "gen-1", UserID: "user-1", Request: request, Status: domain.JobStatusProcessing})

	err := env.executor.Run(context.Background(), request)
	require.NoError(t, err)

	job := env.jobs.job("gen-1")
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "binding error")

	// Resolution failed before any model call, so nothing checkpointed.
	assert.Equal(t, 0, env.checkpoints.count("gen-1"))
	assert.Equal(t, 0, env.images.callCount())
	assert.Equal(t, 0, env.videos.callCount())
}

func TestPipelineRetriesTransientSynthesis(t *testing.T) {
	env := newPipelineEnv()
	env.videos.failures = 2

	request := pipelineRequest(pipelineScene("scene-a", 1,
		domain.RoleBinding{Role: domain.Role{ID: "role-1", Name: "hero"}}))
	env.jobs.seed(domain.GenerationJob{ID: "gen-1", UserID: "user-1", Request: request, Status: domain.JobStatusProcessing})

	err := env.executor.Run(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, env.jobs.job("gen-1").Status)
	assert.Equal(t, 3, env.videos.callCount())
}

func TestPipelineResumesFromCheckpoints(t *testing.T) {
	env := newPipelineEnv()

	request := pipelineRequest(pipelineScene("scene-a", 1,
		domain.RoleBinding{Role: domain.Role{ID: "role-1", Name: "hero"}}))
	env.jobs.seed(domain.GenerationJob{ID: "gen-1", UserID: "user-1", Request: request, Status: domain.JobStatusProcessing})

	specs := []domain.SceneExecutionSpec{{
		SceneID:          "scene-a",
		Order:            1,
		FirstFramePrompt: "first frame of scene-a",
		ScenePrompt:      "action of scene-a",
		DurationSeconds:  5,
		Cast: []domain.CastMember{{
			Role:  domain.Role{ID: "role-1", Name: "hero"},
			Actor: domain.Actor{ID: "actor-hero", ImageKey: "actors/hero.png"},
		}},
	}}
	payload, err := json.Marshal(specs)
	require.NoError(t, err)

	frameKey := "users/user-1/generations/gen-1/frames/scene-a.png"
	env.media.seed(frameKey, []byte("frame-from-previous-run"))
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: StepResolveRoles, Output: string(payload)})
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: FirstFrameStep("scene-a"), Output: frameKey})

	err = env.executor.Run(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, env.jobs.job("gen-1").Status)
	assert.Equal(t, 0, env.images.callCount(), "checkpointed first frame must not regenerate")
	assert.Equal(t, 1, env.videos.callCount())

	// The scene video was conditioned on the frame from the previous run.
	require.Len(t, env.videos.params, 1)
	assert.Equal(t, []byte("frame-from-previous-run"), env.videos.params[0].FirstFrame)
}

func TestPipelineFinalizeIsIdempotent(t *testing.T) {
	env := newPipelineEnv()

	request := pipelineRequest(pipelineScene("scene-a", 1,
		domain.RoleBinding{Role: domain.Role{ID: "role-1", Name: "hero"}}))
	env.jobs.seed(domain.GenerationJob{
		ID: "gen-1", UserID: "user-1", Request: request,
		Status: domain.JobStatusCompleted, GeneratedAssetID: "asset-1",
	})

	specs := []domain.SceneExecutionSpec{{SceneID: "scene-a", Order: 1, DurationSeconds: 5}}
	payload, err := json.Marshal(specs)
	require.NoError(t, err)
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: StepResolveRoles, Output: string(payload)})
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: FirstFrameStep("scene-a"), Output: "k1"})
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: SceneVideoStep("scene-a"), Output: "k2"})
	env.checkpoints.seed(domain.StepCheckpoint{GenerationID: "gen-1", StepName: StepAssemble, Output: "users/user-1/generations/gen-1/final.mp4"})

	err = env.executor.Run(context.Background(), request)
	require.NoError(t, err)

	// Finalize re-registers the same key and leaves the completed job alone.
	job := env.jobs.job("gen-1")
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, "asset-1", job.GeneratedAssetID)
	assert.Equal(t, "users/user-1/generations/gen-1/final.mp4", env.assets.key)
}

func TestPlanGraphShape(t *testing.T) {
	env := newPipelineEnv()

	request := pipelineRequest(
		pipelineScene("scene-a", 1),
		pipelineScene("scene-b", 2),
	)
	plan := env.planner.Plan(request)
	require.Len(t, plan, 7)

	byName := make(map[string]inbound.Step, len(plan))
	for _, step := range plan {
		byName[step.Name] = step
	}

	assert.Empty(t, byName[StepResolveRoles].Requires)
	assert.Equal(t, []string{StepResolveRoles}, byName[FirstFrameStep("scene-a")].Requires)
	assert.Equal(t, []string{FirstFrameStep("scene-b")}, byName[SceneVideoStep("scene-b")].Requires)
	assert.ElementsMatch(t,
		[]string{SceneVideoStep("scene-a"), SceneVideoStep("scene-b")},
		byName[StepAssemble].Requires)
	assert.Equal(t, []string{StepAssemble}, byName[StepFinalize].Requires)
}

func TestComposeFirstFramePrompt(t *testing.T) {
	spec := domain.SceneExecutionSpec{
		FirstFramePrompt: "a rooftop at dawn",
		LocationHint:     "downtown skyline",
		Mood:             "tense",
		Cast: []domain.CastMember{
			{Role: domain.Role{DisplayName: "The Hero"}},
			{Role: domain.Role{DisplayName: "The Rival"}},
		},
	}

	prompt := composeFirstFramePrompt(spec)
	assert.Contains(t, prompt, "a rooftop at dawn, downtown skyline, tense mood")
	assert.Contains(t, prompt, "The Hero is portrayed by the person in reference image 1")
	assert.Contains(t, prompt, "The Rival is portrayed by the person in reference image 2")
}

func TestComposeScenePrompt(t *testing.T) {
	spec := domain.SceneExecutionSpec{
		ScenePrompt: "the crew walks toward the edge",
		CameraStyle: "slow dolly in",
		Mood:        "tense",
	}
	assert.Equal(t, "the crew walks toward the edge, slow dolly in, tense mood",
		composeScenePrompt(spec))
}
