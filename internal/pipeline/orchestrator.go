// Package pipeline drives podcast generation end to end: the seven
// stages from brief to episode MP3, progress tracking through the job
// registry, and the transport-agnostic service the HTTP server and the
// CLI share.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/podforge/podforge/internal/agents"
	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/script"
)

// defaultMaxAgents caps the chapter fan-out when configuration does not.
const defaultMaxAgents = 5

// errCancelled aborts a run whose job was cancelled through the
// registry. It never reaches the job record; the job is already
// terminal.
var errCancelled = errors.New("job cancelled")

// Assembler concatenates utterance files into chapter files and the
// final episode. *audio.Assembler is the ffmpeg-backed implementation.
type Assembler interface {
	CombineChapter(ctx context.Context, scratchDir string, chapter int, files []audio.UtteranceFile) (string, error)
	AssembleEpisode(ctx context.Context, chapterFiles []string, jinglePath, outputPath string) error
	Probe(ctx context.Context, path string) (*audio.ProbeResult, error)
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Home      *home.Dir
	Registry  *jobs.Registry
	Runtime   *agents.Runtime
	Providers *providers.Registry
	Fetcher   agents.SourceFetcher
	Metrics   *metrics.Store
	Config    *config.Config
	Logger    *slog.Logger

	// NewAssembler overrides the audio tool wrapper. Nil uses ffmpeg.
	NewAssembler func(logger *slog.Logger, jobID string) Assembler
}

// Orchestrator runs jobs through the pipeline. One orchestrator serves
// every job; per-job state lives in the run, not here.
type Orchestrator struct {
	home         *home.Dir
	registry     *jobs.Registry
	runtime      *agents.Runtime
	providers    *providers.Registry
	fetcher      agents.SourceFetcher
	metrics      *metrics.Store
	cfg          *config.Config
	logger       *slog.Logger
	newAssembler func(logger *slog.Logger, jobID string) Assembler
}

// NewOrchestrator builds an orchestrator from its dependencies.
func NewOrchestrator(oc OrchestratorConfig) *Orchestrator {
	logger := oc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newAssembler := oc.NewAssembler
	if newAssembler == nil {
		newAssembler = func(logger *slog.Logger, jobID string) Assembler {
			return audio.NewAssembler(logger, jobID)
		}
	}
	return &Orchestrator{
		home:         oc.Home,
		registry:     oc.Registry,
		runtime:      oc.Runtime,
		providers:    oc.Providers,
		fetcher:      oc.Fetcher,
		metrics:      oc.Metrics,
		cfg:          oc.Config,
		logger:       logger,
		newAssembler: newAssembler,
	}
}

// Run drives one job from queued to a terminal state. The job record
// carries the outcome; the returned error is for the caller's log only.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.registry.Get(jobID)
	if err != nil {
		return err
	}

	logger := o.logger.With("job_id", jobID)

	scratch, err := o.home.EnsureScratchDir(jobID)
	if err != nil {
		return o.fail(jobID, logger, podcast.WrapError(podcast.ErrInternal, "", err))
	}
	defer func() {
		if err := o.home.RemoveScratchDir(jobID); err != nil {
			logger.Warn("scratch cleanup failed", "error", err)
		}
	}()

	if _, err := o.registry.Update(jobID, func(j *jobs.Job) {
		now := time.Now().UTC()
		j.State = jobs.StateProcessing
		j.StartedAt = &now
		j.CurrentStep = podcast.StepPlan
	}); err != nil {
		// Cancelled while queued; nothing was produced.
		return nil
	}

	r := &jobRun{
		o:       o,
		id:      jobID,
		brief:   job.Brief.Normalize(),
		scratch: scratch,
		logger:  logger,
		rt:      o.runtime.ForJob(jobID),
		started: time.Now(),
	}

	logger.Info("job started",
		"topic", r.brief.Topic,
		"chapters", r.brief.Chapters,
		"duration_min", r.brief.DurationMin)

	audioPath, meta, err := r.generate(ctx)
	if err != nil {
		if errors.Is(err, errCancelled) {
			logger.Info("job cancelled")
			o.removeOutputs(jobID)
			return nil
		}
		return o.fail(jobID, logger, err)
	}

	if _, err := o.registry.Update(jobID, func(j *jobs.Job) {
		now := time.Now().UTC()
		j.State = jobs.StateCompleted
		j.CurrentStep = ""
		j.StepsCompleted = podcast.TotalSteps
		j.CompletedAt = &now
		j.Artifacts = &r.artifacts
		j.Metadata = meta
		j.AudioPath = audioPath
	}); err != nil {
		// Cancelled during the last stage; the outputs are discarded.
		logger.Info("job cancelled at completion")
		o.removeOutputs(jobID)
		return nil
	}

	logger.Info("job completed",
		"duration_sec", meta.DurationSec,
		"words", meta.WordCount,
		"accuracy", meta.Accuracy,
		"generation_ms", meta.GenerationTimeMs)
	return nil
}

// fail removes partial outputs and records the error on the job. A job
// cancelled in the meantime keeps its cancelled state.
func (o *Orchestrator) fail(jobID string, logger *slog.Logger, err error) error {
	o.removeOutputs(jobID)
	if _, uerr := o.registry.Update(jobID, func(j *jobs.Job) {
		now := time.Now().UTC()
		j.State = jobs.StateFailed
		j.CurrentStep = ""
		j.CompletedAt = &now
		j.Error = err.Error()
	}); uerr != nil && !errors.Is(uerr, jobs.ErrTerminal) {
		logger.Error("failed to record job failure", "error", uerr)
	}
	logger.Error("job failed", "error", err)
	return err
}

func (o *Orchestrator) removeOutputs(jobID string) {
	os.Remove(o.home.EpisodePath(jobID))
	os.Remove(o.home.ArtifactsPath(jobID))
}

func (o *Orchestrator) maxAgents() int {
	if n := o.cfg.Performance.MaxConcurrentAgents; n > 0 {
		return n
	}
	return defaultMaxAgents
}

// jobRun is the per-job state threaded through the stages.
type jobRun struct {
	o       *Orchestrator
	id      string
	brief   podcast.Brief
	scratch string
	logger  *slog.Logger
	rt      *agents.Runtime
	started time.Time

	artifacts podcast.Artifacts
	budget    podcast.WordBudget
	outline   *script.Outline
	final     *agents.EditOutput
}

// generate runs the seven stages in order and returns the episode path
// and metadata. Cancellation is honored at every stage boundary;
// in-flight calls finish but their outputs are discarded.
func (r *jobRun) generate(ctx context.Context) (string, *podcast.Metadata, error) {
	if err := r.boundary(ctx, podcast.StepPlan); err != nil {
		return "", nil, err
	}
	plan, err := agents.NewPlanner(r.rt).Execute(ctx, agents.PlanInput{
		Brief:            r.brief,
		WordsPerMinute:   r.o.cfg.Performance.WordsPerMinute,
		TolerancePercent: r.o.cfg.Performance.TolerancePercent,
	})
	if err != nil {
		return "", nil, err
	}
	r.artifacts.Plan = plan.Markdown
	r.budget = plan.Budget
	r.progress(podcast.StepResearch, 1)

	if err := r.boundary(ctx, podcast.StepResearch); err != nil {
		return "", nil, err
	}
	research, err := agents.NewResearcher(r.rt, r.o.fetcher).Execute(ctx, agents.ResearchInput{
		Brief: r.brief,
		Plan:  plan.Plan,
	})
	if err != nil {
		return "", nil, err
	}
	r.artifacts.Research = research.Markdown
	r.progress(podcast.StepOutline, 2)

	if err := r.boundary(ctx, podcast.StepOutline); err != nil {
		return "", nil, err
	}
	outline, err := agents.NewOutliner(r.rt).Execute(ctx, agents.OutlineInput{
		Brief:       r.brief,
		Plan:        r.artifacts.Plan,
		Research:    r.artifacts.Research,
		TargetWords: r.budget.TotalWords,
	})
	if err != nil {
		return "", nil, err
	}
	r.artifacts.Outline = outline.Markdown
	r.outline = outline.Outline
	r.progress(podcast.StepScript, 3)

	if err := r.boundary(ctx, podcast.StepScript); err != nil {
		return "", nil, err
	}
	if err := r.scriptChapters(ctx); err != nil {
		return "", nil, err
	}
	r.progress(podcast.StepTone, 4)

	if err := r.boundary(ctx, podcast.StepTone); err != nil {
		return "", nil, err
	}
	tone, err := agents.NewToner(r.rt).Execute(ctx, agents.ToneInput{
		Brief:   r.brief,
		Scripts: r.artifacts.Scripts,
	})
	if err != nil {
		return "", nil, err
	}
	r.artifacts.ToneScript = tone.Markdown
	r.progress(podcast.StepEdit, 5)

	if err := r.boundary(ctx, podcast.StepEdit); err != nil {
		return "", nil, err
	}
	final, err := agents.NewEditor(r.rt).Execute(ctx, agents.EditInput{
		Brief:        r.brief,
		ToneScript:   r.artifacts.ToneScript,
		TargetWords:  r.budget.TotalWords,
		TolerancePct: r.budget.TolerancePercent,
	})
	if err != nil {
		return "", nil, err
	}
	r.artifacts.FinalScript = final.Markdown
	r.final = final
	r.progress(podcast.StepAudio, 6)

	if err := r.boundary(ctx, podcast.StepAudio); err != nil {
		return "", nil, err
	}
	audioPath, meta, err := r.produceAudio(ctx)
	if err != nil {
		return "", nil, err
	}

	if err := r.writeArtifacts(); err != nil {
		return "", nil, err
	}
	return audioPath, meta, nil
}

// boundary enforces cancellation between stages: a cancelled context
// fails the job, a registry cancel aborts it quietly.
func (r *jobRun) boundary(ctx context.Context, step string) error {
	if err := ctx.Err(); err != nil {
		return podcast.WrapError(podcast.ErrCancelled, step, err)
	}
	job, err := r.o.registry.Get(r.id)
	if err == nil && job.State == jobs.StateCancelled {
		return errCancelled
	}
	return nil
}

// progress records a completed stage and the step now in flight. A
// concurrent cancel makes the update a no-op.
func (r *jobRun) progress(nextStep string, completed int) {
	_, _ = r.o.registry.Update(r.id, func(j *jobs.Job) {
		j.CurrentStep = nextStep
		if completed > j.StepsCompleted {
			j.StepsCompleted = completed
		}
	})
	r.logger.Info("stage complete", "steps_completed", completed, "next", nextStep)
}

// scriptChapters fans the chapter calls out with bounded concurrency.
// Results land by index so the joined order always matches the outline
// regardless of which call finishes first.
func (r *jobRun) scriptChapters(ctx context.Context) error {
	chapters := r.outline.Chapters()
	if len(chapters) == 0 {
		// Degenerate outline without chapter headers: script it whole.
		chapters = []script.OutlineSection{{
			Kind:         script.SectionChapter,
			Number:       1,
			Title:        r.brief.Topic,
			WordEstimate: r.budget.TotalWords,
		}}
	}

	targets := r.chapterTargets(len(chapters))
	scripter := agents.NewScripter(r.rt)
	results := make([]*agents.ChapterScript, len(chapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.o.maxAgents())
	for i, ch := range chapters {
		g.Go(func() error {
			out, err := scripter.Execute(gctx, agents.ChapterInput{
				Brief:       r.brief,
				Chapter:     ch.ChapterMarkdown(),
				Number:      ch.Number,
				TargetWords: targets[i],
				Context:     r.artifacts.Outline,
			})
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	scripts := make([]string, len(results))
	for i, res := range results {
		scripts[i] = res.Markdown
		if !res.Converged {
			r.logger.Warn("chapter script did not converge",
				"chapter", res.Number,
				"attempts", res.Attempts,
				"deviation_pct", res.DeviationPct)
		}
	}
	r.artifacts.Scripts = scripts
	return nil
}

// chapterTargets splits the episode budget evenly with the remainder on
// the last chapter, so the per-chapter targets sum to the total.
func (r *jobRun) chapterTargets(n int) []int {
	targets := make([]int, n)
	for i := range targets {
		targets[i] = r.budget.PerChapter
	}
	if n > 0 {
		targets[n-1] = r.budget.TotalWords - r.budget.PerChapter*(n-1)
	}
	return targets
}

// produceAudio synthesizes every chapter, concatenates the episode with
// the optional jingle in front, and probes the result.
func (r *jobRun) produceAudio(ctx context.Context) (string, *podcast.Metadata, error) {
	blocks := script.SplitChapterBlocks(r.final.Markdown)
	if len(blocks) == 0 {
		return "", nil, podcast.NewError(podcast.ErrAudio, podcast.StepAudio, "final script is empty")
	}

	tts := r.o.cfg.TTS
	synth := audio.NewSynthesizer(audio.SynthConfig{
		TTS:        r.o.providers.TTS(),
		Metrics:    r.o.metrics,
		Logger:     r.logger,
		JobID:      r.id,
		Model:      tts.Model,
		Speed:      tts.Speed,
		Format:     tts.Format,
		Host1Voice: tts.Voices.Host1,
		Host2Voice: tts.Voices.Host2,
	})
	asm := r.o.newAssembler(r.logger, r.id)

	chapterFiles := make([]string, 0, len(blocks))
	for _, block := range blocks {
		utterances, err := script.ParseToneScript(block.Markdown)
		if err != nil {
			return "", nil, podcast.WrapError(podcast.ErrAudio, podcast.StepAudio,
				fmt.Errorf("chapter %d: %w", block.Number, err))
		}
		files, err := synth.SynthesizeChapter(ctx, r.scratch, block.Number, utterances)
		if err != nil {
			return "", nil, err
		}
		combined, err := asm.CombineChapter(ctx, r.scratch, block.Number, files)
		if err != nil {
			return "", nil, err
		}
		chapterFiles = append(chapterFiles, combined)
	}

	jingle := ""
	if r.o.home.JingleExists() {
		jingle = r.o.home.JinglePath()
	}

	outputPath := r.o.home.EpisodePath(r.id)
	if err := asm.AssembleEpisode(ctx, chapterFiles, jingle, outputPath); err != nil {
		return "", nil, err
	}

	probe, err := asm.Probe(ctx, outputPath)
	if err != nil {
		return "", nil, err
	}

	meta := &podcast.Metadata{
		DurationSec:      probe.DurationSec,
		WordCount:        r.final.SpokenWords,
		Chapters:         len(blocks),
		Accuracy:         string(script.ClassifyAccuracy(r.budget.TotalWords, r.final.SpokenWords)),
		Bitrate:          probe.BitRate,
		Codec:            probe.Codec,
		SampleRate:       probe.SampleRate,
		GenerationTimeMs: time.Since(r.started).Milliseconds(),
	}
	if probe.DurationSec > 0 {
		meta.ActualWordsPerMinute = float64(r.final.SpokenWords) * 60 / probe.DurationSec
	}
	return outputPath, meta, nil
}

// writeArtifacts persists the stage documents next to the episode.
func (r *jobRun) writeArtifacts() error {
	doc := podcast.ArtifactsDocument{
		ID:        r.id,
		Timestamp: time.Now().UTC(),
		Artifacts: r.artifacts,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return podcast.WrapError(podcast.ErrInternal, podcast.StepAudio, err)
	}
	if err := os.WriteFile(r.o.home.ArtifactsPath(r.id), data, 0o644); err != nil {
		return podcast.WrapError(podcast.ErrInternal, podcast.StepAudio, err)
	}
	return nil
}
