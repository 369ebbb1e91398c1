package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string) {}
func (nopLogger) InfoWithFields(msg string, fields map[string]interface{}) {}
func (nopLogger) Error(err error, msg string) {}
func (nopLogger) ErrorWithFields(err error, msg string, f map[string]interface{}) {}
func (nopLogger) Debug(msg string) {}
func (nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (nopLogger) Warn(msg string) {}
func (nopLogger) WarnWithFields(msg string, fields map[string]interface{}) {}

// goDispatcher stands in for the ants pool in tests.
type goDispatcher struct{}

func (goDispatcher) Submit(task func()) error {
	go task()
	return nil
}

type memJobStore struct {
	mu        sync.Mutex
	jobs      map[string]domain.GenerationJob
	getErr    error
	failErr   error
	claimLost bool
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]domain.GenerationJob)}
}

func (s *memJobStore) seed(job domain.GenerationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *memJobStore) job(generationID string) domain.GenerationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[generationID]
}

func (s *memJobStore) Insert(_ context.Context, job domain.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return nil
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *memJobStore) Get(_ context.Context, generationID string) (*domain.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[generationID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

func (s *memJobStore) MarkProcessing(_ context.Context, generationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimLost {
		return false, nil
	}
	job, ok := s.jobs[generationID]
	if !ok || job.Status != domain.JobStatusPending {
		return false, nil
	}
	job.Status = domain.JobStatusProcessing
	s.jobs[generationID] = job
	return true, nil
}

func (s *memJobStore) Complete(_ context.Context, generationID, assetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[generationID]
	if !ok || job.Status != domain.JobStatusProcessing {
		return false, nil
	}
	job.Status = domain.JobStatusCompleted
	job.GeneratedAssetID = assetID
	s.jobs[generationID] = job
	return true, nil
}

func (s *memJobStore) Fail(_ context.Context, generationID, errorMessage string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	job, ok := s.jobs[generationID]
	if !ok || job.Status != domain.JobStatusProcessing {
		return false, nil
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errorMessage
	s.jobs[generationID] = job
	return true, nil
}

type memCheckpointStore struct {
	mu     sync.Mutex
	rows   map[string]map[string]domain.StepCheckpoint
	putErr error
}

func newMemCheckpointStore() *memCheckpointStore {
	return &memCheckpointStore{rows: make(map[string]map[string]domain.StepCheckpoint)}
}

func (s *memCheckpointStore) seed(checkpoint domain.StepCheckpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[checkpoint.GenerationID] == nil {
		s.rows[checkpoint.GenerationID] = make(map[string]domain.StepCheckpoint)
	}
	s.rows[checkpoint.GenerationID][checkpoint.StepName] = checkpoint
}

func (s *memCheckpointStore) has(generationID, stepName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[generationID][stepName]
	return ok
}

func (s *memCheckpointStore) count(generationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[generationID])
}

func (s *memCheckpointStore) Put(_ context.Context, checkpoint domain.StepCheckpoint) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.seed(checkpoint)
	return nil
}

func (s *memCheckpointStore) List(_ context.Context, generationID string) ([]domain.StepCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checkpoints := make([]domain.StepCheckpoint, 0, len(s.rows[generationID]))
	for _, checkpoint := range s.rows[generationID] {
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints, nil
}

type fakeCatalog struct {
	mu     sync.Mutex
	actors map[string]domain.Actor
	err    error
}

func newFakeCatalog(actors ...domain.Actor) *fakeCatalog {
	catalog := &fakeCatalog{actors: make(map[string]domain.Actor)}
	for _, actor := range actors {
		catalog.actors[actor.ID] = actor
	}
	return catalog
}

func (c *fakeCatalog) GetActor(_ context.Context, actorID string) (*domain.Actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	actor, ok := c.actors[actorID]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	return &actor, nil
}

type fakeStoryboards struct {
	storyboards map[string]domain.Storyboard
}

func (s *fakeStoryboards) GetStoryboard(_ context.Context, storyboardID string) (*domain.Storyboard, error) {
	storyboard, ok := s.storyboards[storyboardID]
	if !ok {
		return nil, domain.ErrStoryboardNotFound
	}
	return &storyboard, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []domain.DispatchMessage
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, message domain.DispatchMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

type fakeAssets struct {
	mu       sync.Mutex
	assetID  string
	key      string
	duration int
}

func (a *fakeAssets) RegisterVideoAsset(_ context.Context, assetKey string, durationSeconds int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.key = assetKey
	a.duration = durationSeconds
	return a.assetID, nil
}

type memMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemMediaStore() *memMediaStore {
	return &memMediaStore{objects: make(map[string][]byte)}
}

func (m *memMediaStore) seed(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
}

func (m *memMediaStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memMediaStore) Put(_ context.Context, key string, body []byte, _ string) error {
	m.seed(key, body)
	return nil
}

func (m *memMediaStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object at key %s", key)
	}
	return body, nil
}

func (m *memMediaStore) UploadFile(_ context.Context, key string, fileName string) error {
	body, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	m.seed(key, body)
	return nil
}

type fakeImageSynth struct {
	mu       sync.Mutex
	calls    int
	failures int
	output   []byte
	params   []outbound.SynthesizeImageParams
}

func (f *fakeImageSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeImageSynth) Synthesize(_ context.Context, params outbound.SynthesizeImageParams) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.params = append(f.params, params)
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("image model unavailable")
	}
	return f.output, nil
}

type fakeVideoSynth struct {
	mu       sync.Mutex
	calls    int
	failures int
	output   []byte
	params   []outbound.SynthesizeVideoParams
}

func (f *fakeVideoSynth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeVideoSynth) Synthesize(_ context.Context, params outbound.SynthesizeVideoParams) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.params = append(f.params, params)
	if f.failures > 0 {
		f.failures--
		return nil, fmt.Errorf("video model unavailable")
	}
	return f.output, nil
}

type fakeAssembler struct {
	mu     sync.Mutex
	params *outbound.AssembleVideosParams
}

func (f *fakeAssembler) Assemble(params outbound.AssembleVideosParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = &params
	file, err := os.CreateTemp("", "assembled-*."+params.OutputFormat)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := file.WriteString("assembled"); err != nil {
		return "", err
	}
	return file.Name(), nil
}

type fakePlanner struct {
	steps []inbound.Step
}

func (p *fakePlanner) Plan(_ domain.GenerationRequest) []inbound.Step { return p.steps }

type fakeRunner struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (r *fakeRunner) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func (r *fakeRunner) Run(_ context.Context, _ domain.GenerationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return r.err
}
