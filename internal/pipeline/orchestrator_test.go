package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/llmcall"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/testutil"
)

// fakeAssembler stands in for ffmpeg: it concatenates bytes and answers
// probes with canned numbers.
type fakeAssembler struct {
	mu       sync.Mutex
	combined []int
	inputs   []string
	jingle   string

	probe       audio.ProbeResult
	assembleErr error
}

func newFakeAssembler() *fakeAssembler {
	return &fakeAssembler{
		probe: audio.ProbeResult{DurationSec: 240, BitRate: 128000, Codec: "mp3", SampleRate: 44100},
	}
}

func (f *fakeAssembler) CombineChapter(_ context.Context, scratchDir string, chapter int, files []audio.UtteranceFile) (string, error) {
	f.mu.Lock()
	f.combined = append(f.combined, chapter)
	f.mu.Unlock()

	var buf bytes.Buffer
	for _, uf := range files {
		data, err := os.ReadFile(uf.Path)
		if err != nil {
			return "", err
		}
		buf.Write(data)
	}
	path := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d-combined.mp3", chapter))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeAssembler) AssembleEpisode(_ context.Context, chapterFiles []string, jinglePath, outputPath string) error {
	f.mu.Lock()
	f.inputs = append([]string(nil), chapterFiles...)
	f.jingle = jinglePath
	f.mu.Unlock()

	if f.assembleErr != nil {
		return f.assembleErr
	}
	var buf bytes.Buffer
	if jinglePath != "" {
		buf.WriteString("jingle:")
	}
	for _, p := range chapterFiles {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(outputPath, buf.Bytes(), 0o644)
}

func (f *fakeAssembler) Probe(_ context.Context, _ string) (*audio.ProbeResult, error) {
	p := f.probe
	return &p, nil
}

type testEnv struct {
	svc  *Service
	home *home.Dir
	tts  *providers.MockTTSClient
	asm  *fakeAssembler
	cfg  *config.Config
}

func newTestEnv(t *testing.T, chat providers.ChatClient) *testEnv {
	t.Helper()

	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}

	reg := providers.NewRegistry()
	reg.SetChat(chat)
	tts := providers.NewMockTTSClient()
	reg.SetTTS(tts)

	cfg := config.DefaultConfig()
	asm := newFakeAssembler()
	svc := NewService(ServiceConfig{
		Home:      dir,
		Config:    cfg,
		Providers: reg,
		Calls:     llmcall.NewStore(200),
		Metrics:   metrics.NewStore(200),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewAssembler: func(*slog.Logger, string) Assembler {
			return asm
		},
	})
	t.Cleanup(svc.Close)

	return &testEnv{svc: svc, home: dir, tts: tts, asm: asm, cfg: cfg}
}

func pipelineBrief(chapters, minutes int) podcast.Brief {
	return podcast.Brief{
		Topic:       "The shipping container",
		Mood:        podcast.MoodEnthusiastic,
		Style:       podcast.StyleConversational,
		Chapters:    chapters,
		DurationMin: minutes,
	}
}

// stageReplies covers a full run: every word figure lines up with the
// brief so each convergence loop accepts its first draft.
func stageReplies(chapters, total, perChapter int) map[string]string {
	return map[string]string{
		podcast.StepPlan:     testutil.PlanMarkdown(chapters, total),
		podcast.StepResearch: testutil.ResearchMarkdown(),
		podcast.StepOutline:  testutil.OutlineMarkdown(chapters, total),
		podcast.StepScript:   testutil.Dialogue(perChapter),
		podcast.StepTone:     testutil.ToneScriptMarkdown(chapters, perChapter),
		podcast.StepEdit:     testutil.ToneScriptMarkdown(chapters, perChapter),
	}
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestGenerateProducesEpisode(t *testing.T) {
	chat := testutil.ScriptedChat(stageReplies(2, 300, 150))
	env := newTestEnv(t, chat)

	job, err := env.svc.Generate(context.Background(), pipelineBrief(2, 2))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if job.State != jobs.StateCompleted {
		t.Fatalf("State = %q (error %q), want completed", job.State, job.Error)
	}
	if job.StepsCompleted != podcast.TotalSteps || job.CurrentStep != "" {
		t.Errorf("progress = %d/%q, want %d done with no step in flight",
			job.StepsCompleted, job.CurrentStep, podcast.TotalSteps)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("StartedAt/CompletedAt not recorded")
	}

	if chat.RequestCount() != 7 {
		t.Errorf("model calls = %d, want 7 (one per text stage, two chapters)", chat.RequestCount())
	}
	if got := len(env.tts.Requests()); got != 30 {
		t.Errorf("TTS calls = %d, want 30", got)
	}

	a := job.Artifacts
	if a == nil {
		t.Fatal("no artifacts on completed job")
	}
	if a.Plan == "" || a.Research == "" || a.Outline == "" || a.ToneScript == "" || a.FinalScript == "" {
		t.Error("artifact documents missing")
	}
	if len(a.Scripts) != 2 {
		t.Fatalf("chapter scripts = %d, want 2", len(a.Scripts))
	}

	m := job.Metadata
	if m == nil {
		t.Fatal("no metadata on completed job")
	}
	if m.WordCount != 300 || m.Chapters != 2 {
		t.Errorf("metadata words/chapters = %d/%d, want 300/2", m.WordCount, m.Chapters)
	}
	if m.DurationSec != 240 || m.ActualWordsPerMinute != 75 {
		t.Errorf("duration/wpm = %v/%v, want 240/75", m.DurationSec, m.ActualWordsPerMinute)
	}
	if m.Accuracy != "excellent" {
		t.Errorf("Accuracy = %q, want excellent", m.Accuracy)
	}
	if m.Bitrate != 128000 || m.Codec != "mp3" || m.SampleRate != 44100 {
		t.Errorf("probe fields = %d/%s/%d", m.Bitrate, m.Codec, m.SampleRate)
	}

	wantPath := env.home.EpisodePath(job.ID)
	if job.AudioPath != wantPath {
		t.Errorf("AudioPath = %q, want %q", job.AudioPath, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("episode file missing: %v", err)
	}

	doc, err := podcast.ReadArtifactsFile(env.home.ArtifactsPath(job.ID))
	if err != nil {
		t.Fatalf("artifacts file: %v", err)
	}
	if doc.ID != job.ID {
		t.Errorf("artifacts doc id = %q, want %q", doc.ID, job.ID)
	}
	if doc.Artifacts.Plan != strings.TrimSpace(testutil.PlanMarkdown(2, 300)) {
		t.Error("persisted plan differs from the stage output")
	}

	if env.asm.jingle != "" {
		t.Errorf("jingle path = %q, want none without the asset", env.asm.jingle)
	}
	if len(env.asm.combined) != 2 || env.asm.combined[0] != 1 || env.asm.combined[1] != 2 {
		t.Errorf("chapter combine order = %v, want [1 2]", env.asm.combined)
	}

	if _, err := os.Stat(env.home.ScratchDir(job.ID)); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after completion: %v", err)
	}
}

func TestGenerateUsesJingleWhenPresent(t *testing.T) {
	chat := testutil.ScriptedChat(stageReplies(1, 300, 300))
	env := newTestEnv(t, chat)

	if err := os.WriteFile(env.home.JinglePath(), []byte("jingle-bytes"), 0o644); err != nil {
		t.Fatalf("write jingle: %v", err)
	}

	job, err := env.svc.Generate(context.Background(), pipelineBrief(1, 2))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if job.State != jobs.StateCompleted {
		t.Fatalf("State = %q (error %q), want completed", job.State, job.Error)
	}
	if env.asm.jingle != env.home.JinglePath() {
		t.Errorf("jingle path = %q, want %q", env.asm.jingle, env.home.JinglePath())
	}
}

func TestGenerateFailureCleansUp(t *testing.T) {
	// No research reply: the stage fails fast with a non-retryable 400.
	replies := stageReplies(2, 300, 150)
	delete(replies, podcast.StepResearch)
	env := newTestEnv(t, testutil.ScriptedChat(replies))

	job, err := env.svc.Generate(context.Background(), pipelineBrief(2, 2))
	if err == nil {
		t.Fatal("Generate succeeded without a research backend")
	}

	var pe *podcast.Error
	if !errors.As(err, &pe) || pe.Kind != podcast.ErrBackend || pe.Stage != podcast.StepResearch {
		t.Errorf("error = %v, want backend error in research stage", err)
	}

	if job.State != jobs.StateFailed {
		t.Fatalf("State = %q, want failed", job.State)
	}
	if job.Error == "" {
		t.Error("failed job carries no error message")
	}
	if job.CompletedAt == nil {
		t.Error("failed job has no CompletedAt")
	}

	if _, err := os.Stat(env.home.EpisodePath(job.ID)); !os.IsNotExist(err) {
		t.Error("partial episode file left behind")
	}
	if _, err := os.Stat(env.home.ArtifactsPath(job.ID)); !os.IsNotExist(err) {
		t.Error("partial artifacts file left behind")
	}
	if _, err := os.Stat(env.home.ScratchDir(job.ID)); !os.IsNotExist(err) {
		t.Error("scratch dir still present after failure")
	}
}

func TestCancelStopsAtStageBoundary(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	replies := stageReplies(2, 300, 150)
	chat := &providers.MockChatClient{
		RespondFn: func(req *providers.ChatRequest) (string, error) {
			stage := testutil.StageOf(req)
			if stage == podcast.StepPlan {
				once.Do(func() { close(started) })
				<-release
			}
			return replies[stage], nil
		},
	}
	env := newTestEnv(t, chat)

	id, err := env.svc.Submit(context.Background(), pipelineBrief(2, 2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	<-started
	cancelled, err := env.svc.Cancel(id)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.State != jobs.StateCancelled {
		t.Fatalf("State after cancel = %q, want cancelled", cancelled.State)
	}

	// The in-flight plan call finishes; its output is discarded at the
	// next boundary.
	close(release)

	waitFor(t, 5*time.Second, "scratch cleanup", func() bool {
		_, err := os.Stat(env.home.ScratchDir(id))
		return os.IsNotExist(err)
	})

	job, err := env.svc.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if job.State != jobs.StateCancelled {
		t.Errorf("State = %q, want cancelled", job.State)
	}
	if job.StepsCompleted != 0 {
		t.Errorf("StepsCompleted = %d, want 0 for a job cancelled during planning", job.StepsCompleted)
	}
	if _, err := os.Stat(env.home.EpisodePath(id)); !os.IsNotExist(err) {
		t.Error("cancelled job left an episode file")
	}
}

var chapterNumRe = regexp.MustCompile(`chapter (\d+)`)

func TestChapterFanOutKeepsOrder(t *testing.T) {
	replies := stageReplies(3, 450, 150)

	var mu sync.Mutex
	inFlight, peak := 0, 0

	chat := &providers.MockChatClient{
		RespondFn: func(req *providers.ChatRequest) (string, error) {
			stage := testutil.StageOf(req)
			if stage != podcast.StepScript {
				return replies[stage], nil
			}

			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			defer func() {
				mu.Lock()
				inFlight--
				mu.Unlock()
			}()

			m := chapterNumRe.FindStringSubmatch(req.Messages[1].Content)
			if m == nil {
				return "", fmt.Errorf("no chapter number in prompt")
			}
			n, _ := strconv.Atoi(m[1])

			// Later chapters answer first; order must still hold.
			time.Sleep(time.Duration(40-10*n) * time.Millisecond)
			return fmt.Sprintf("**Host 1:** Marker %d opening line.\n\n%s", n, testutil.Dialogue(146)), nil
		},
	}

	env := newTestEnv(t, chat)
	env.cfg.Performance.MaxConcurrentAgents = 2

	job, err := env.svc.Generate(context.Background(), pipelineBrief(3, 3))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if job.State != jobs.StateCompleted {
		t.Fatalf("State = %q (error %q), want completed", job.State, job.Error)
	}

	if len(job.Artifacts.Scripts) != 3 {
		t.Fatalf("scripts = %d, want 3", len(job.Artifacts.Scripts))
	}
	for i, s := range job.Artifacts.Scripts {
		marker := fmt.Sprintf("Marker %d", i+1)
		if !strings.Contains(s, marker) {
			t.Errorf("script %d does not carry %q; fan-out results out of order", i, marker)
		}
	}

	if peak > 2 {
		t.Errorf("peak concurrent chapter calls = %d, want at most 2", peak)
	}
}
