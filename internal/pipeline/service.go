package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/podforge/podforge/internal/agents"
	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/fetch"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/llmcall"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
)

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Home      *home.Dir
	Config    *config.Config
	Providers *providers.Registry
	Calls     *llmcall.Store
	Metrics   *metrics.Store
	Logger    *slog.Logger

	// NewAssembler overrides the audio tool wrapper. Nil uses ffmpeg.
	NewAssembler func(logger *slog.Logger, jobID string) Assembler
}

// Service is the transport-agnostic job API: the HTTP endpoints and the
// CLI both submit, query, and cancel through it. Accepted jobs run in
// their own goroutine, gated by a weighted semaphore so at most
// maxConcurrentJobs pipelines are in flight.
type Service struct {
	cfg       *config.Config
	home      *home.Dir
	providers *providers.Registry
	registry  *jobs.Registry
	orch      *Orchestrator
	sem       *semaphore.Weighted
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService builds the service and its orchestrator.
func NewService(sc ServiceConfig) *Service {
	logger := sc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxJobs := sc.Config.Performance.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:       sc.Config,
		home:      sc.Home,
		providers: sc.Providers,
		registry:  jobs.NewRegistry(),
		sem:       semaphore.NewWeighted(int64(maxJobs)),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	rt := agents.NewRuntime(agents.RuntimeConfig{
		Registry:     sc.Providers,
		Calls:        sc.Calls,
		Metrics:      sc.Metrics,
		Logger:       logger,
		Timeout:      time.Duration(sc.Config.Providers.TimeoutSeconds) * time.Second,
		ResolveAgent: sc.Config.AgentID,
	})
	s.orch = NewOrchestrator(OrchestratorConfig{
		Home:         sc.Home,
		Registry:     s.registry,
		Runtime:      rt,
		Providers:    sc.Providers,
		Fetcher:      fetch.New(logger),
		Metrics:      sc.Metrics,
		Config:       sc.Config,
		Logger:       logger,
		NewAssembler: sc.NewAssembler,
	})
	return s
}

// Submit validates the brief, registers a queued job, and dispatches it.
// A validation failure never creates a job.
func (s *Service) Submit(ctx context.Context, brief podcast.Brief) (string, error) {
	brief = brief.Normalize()
	if err := podcast.ValidateBrief(brief, s.cfg.ToConstraints()); err != nil {
		return "", err
	}

	job := s.registry.Create(brief)
	s.logger.Info("job accepted", "job_id", job.ID, "topic", brief.Topic)

	s.wg.Add(1)
	go s.dispatch(job.ID)
	return job.ID, nil
}

// dispatch waits for a job slot and runs the pipeline. Shutdown before
// the slot arrives cancels the job.
func (s *Service) dispatch(jobID string) {
	defer s.wg.Done()

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		_, _ = s.registry.Cancel(jobID)
		return
	}
	defer s.sem.Release(1)

	if err := s.orch.Run(s.ctx, jobID); err != nil {
		s.logger.Error("job run failed", "job_id", jobID, "error", err)
	}
}

// Generate runs a brief to completion in the calling goroutine and
// returns the final job record. The one-shot CLI path uses it; the
// server dispatches through Submit instead.
func (s *Service) Generate(ctx context.Context, brief podcast.Brief) (*jobs.Job, error) {
	brief = brief.Normalize()
	if err := podcast.ValidateBrief(brief, s.cfg.ToConstraints()); err != nil {
		return nil, err
	}

	job := s.registry.Create(brief)
	if err := s.sem.Acquire(ctx, 1); err != nil {
		_, _ = s.registry.Cancel(job.ID)
		return nil, podcast.WrapError(podcast.ErrCancelled, "", err)
	}
	defer s.sem.Release(1)

	runErr := s.orch.Run(ctx, job.ID)
	final, err := s.registry.Get(job.ID)
	if err != nil {
		return nil, err
	}
	return final, runErr
}

// Status returns the job snapshot, or jobs.ErrNotFound.
func (s *Service) Status(id string) (*jobs.Job, error) {
	return s.registry.Get(id)
}

// Artifacts returns the stage documents of a completed job.
func (s *Service) Artifacts(id string) (*podcast.Artifacts, error) {
	job, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if job.State != jobs.StateCompleted || job.Artifacts == nil {
		return nil, podcast.NewError(podcast.ErrValidation, "",
			"job %s is %s; artifacts are available once it completes", id, job.State)
	}
	return job.Artifacts, nil
}

// AudioFile returns the episode path of a completed job.
func (s *Service) AudioFile(id string) (string, error) {
	job, err := s.registry.Get(id)
	if err != nil {
		return "", err
	}
	if job.State != jobs.StateCompleted || job.AudioPath == "" {
		return "", podcast.NewError(podcast.ErrValidation, "",
			"job %s is %s; audio is available once it completes", id, job.State)
	}
	return job.AudioPath, nil
}

// Cancel stops a queued or processing job. Terminal jobs report their
// state unchanged.
func (s *Service) Cancel(id string) (*jobs.Job, error) {
	return s.registry.Cancel(id)
}

// List returns job snapshots, newest first.
func (s *Service) List(limit, offset int) []*jobs.Job {
	return s.registry.List(limit, offset)
}

// Counts returns the number of jobs per state.
func (s *Service) Counts() map[jobs.State]int {
	return s.registry.Counts()
}

// Validate checks a brief without creating a job and previews what it
// would produce.
func (s *Service) Validate(brief podcast.Brief) podcast.Validation {
	return podcast.EvaluateBrief(brief, s.cfg.ToConstraints(), s.cfg.Performance.WordsPerMinute)
}

// Ready reports whether the service can actually produce an episode: a
// chat backend and the audio tools must be present.
func (s *Service) Ready() error {
	if !s.providers.HasChat() && !s.providers.HasAssistant() {
		return errors.New("no model backend configured")
	}
	if !s.providers.HasTTS() {
		return errors.New("no speech backend configured")
	}
	return audio.CheckTools()
}

// Close stops dispatching and waits for in-flight jobs to observe the
// cancellation.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
