package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/testutil"
)

func TestSubmitRejectsInvalidBrief(t *testing.T) {
	env := newTestEnv(t, testutil.ScriptedChat(nil))

	brief := pipelineBrief(0, 2)
	if _, err := env.svc.Submit(context.Background(), brief); err == nil {
		t.Fatal("Submit accepted a brief with zero chapters")
	} else {
		var pe *podcast.Error
		if !errors.As(err, &pe) || pe.Kind != podcast.ErrValidation {
			t.Errorf("error = %v, want validation kind", err)
		}
	}

	if got := env.svc.List(0, 0); len(got) != 0 {
		t.Errorf("rejected brief created %d jobs", len(got))
	}
}

func TestSubmitRunsAsynchronously(t *testing.T) {
	env := newTestEnv(t, testutil.ScriptedChat(stageReplies(2, 300, 150)))

	id, err := env.svc.Submit(context.Background(), pipelineBrief(2, 2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id == "" {
		t.Fatal("Submit returned empty job id")
	}

	waitFor(t, 10*time.Second, "job completion", func() bool {
		job, err := env.svc.Status(id)
		return err == nil && job.State.Terminal()
	})

	job, err := env.svc.Status(id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if job.State != jobs.StateCompleted {
		t.Fatalf("State = %q (error %q), want completed", job.State, job.Error)
	}

	artifacts, err := env.svc.Artifacts(id)
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	if artifacts.Plan == "" || len(artifacts.Scripts) != 2 {
		t.Errorf("artifacts incomplete: %+v", artifacts)
	}

	path, err := env.svc.AudioFile(id)
	if err != nil {
		t.Fatalf("AudioFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("episode file missing: %v", err)
	}
}

func TestArtifactsRequireCompletion(t *testing.T) {
	replies := stageReplies(2, 300, 150)
	delete(replies, podcast.StepPlan)
	env := newTestEnv(t, testutil.ScriptedChat(replies))

	id, err := env.svc.Submit(context.Background(), pipelineBrief(2, 2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	waitFor(t, 10*time.Second, "job failure", func() bool {
		job, err := env.svc.Status(id)
		return err == nil && job.State == jobs.StateFailed
	})

	if _, err := env.svc.Artifacts(id); err == nil {
		t.Error("Artifacts returned documents for a failed job")
	}
	if _, err := env.svc.AudioFile(id); err == nil {
		t.Error("AudioFile returned a path for a failed job")
	}

	if _, err := env.svc.Artifacts("no-such-job"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("Artifacts(unknown) = %v, want ErrNotFound", err)
	}
	if _, err := env.svc.Cancel("no-such-job"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("Cancel(unknown) = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirstAcrossSubmissions(t *testing.T) {
	// Plan reply missing: every job fails at the first stage, quickly.
	replies := map[string]string{}
	env := newTestEnv(t, testutil.ScriptedChat(replies))

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := env.svc.Submit(context.Background(), pipelineBrief(2, 2))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, id)
	}

	waitFor(t, 10*time.Second, "all jobs terminal", func() bool {
		for _, id := range ids {
			job, err := env.svc.Status(id)
			if err != nil || !job.State.Terminal() {
				return false
			}
		}
		return true
	})

	all := env.svc.List(0, 0)
	if len(all) != 3 {
		t.Fatalf("List = %d jobs, want 3", len(all))
	}
	page := env.svc.List(2, 0)
	if len(page) != 2 {
		t.Fatalf("List(2,0) = %d jobs, want 2", len(page))
	}
	if page[0].ID != ids[2] {
		t.Errorf("newest job first: got %q, want %q", page[0].ID, ids[2])
	}

	counts := env.svc.Counts()
	if counts[jobs.StateFailed] != 3 {
		t.Errorf("Counts()[failed] = %d, want 3", counts[jobs.StateFailed])
	}
}

func TestValidatePreviewsBrief(t *testing.T) {
	env := newTestEnv(t, testutil.ScriptedChat(nil))

	v := env.svc.Validate(pipelineBrief(3, 3))
	if !v.Valid {
		t.Fatalf("valid brief rejected: %v", v.Errors)
	}
	if v.Estimates.TargetWords != 450 || v.Estimates.WordsPerChapter != 150 {
		t.Errorf("estimates = %+v, want 450 target and 150 per chapter", v.Estimates)
	}
	if v.Estimates.EstimatedDuration != 180 || v.Estimates.ProcessingTime != 36 {
		t.Errorf("duration/processing = %d/%d, want 180/36",
			v.Estimates.EstimatedDuration, v.Estimates.ProcessingTime)
	}

	crowded := env.svc.Validate(pipelineBrief(7, 3))
	found := false
	for _, w := range crowded.Warnings {
		if strings.Contains(w, "7 chapters in 3 minutes") {
			found = true
		}
	}
	if !found {
		t.Errorf("no short-chapter warning in %v", crowded.Warnings)
	}

	invalid := env.svc.Validate(podcast.Brief{Topic: "x", Mood: "angry", Style: "conversational", Chapters: 3, DurationMin: 3})
	if invalid.Valid || len(invalid.Errors) == 0 {
		t.Errorf("unknown mood accepted: %+v", invalid)
	}
}

func TestReadyRequiresBackends(t *testing.T) {
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}

	reg := providers.NewRegistry()
	svc := NewService(ServiceConfig{
		Home:      dir,
		Config:    config.DefaultConfig(),
		Providers: reg,
	})
	t.Cleanup(svc.Close)

	if err := svc.Ready(); err == nil || !strings.Contains(err.Error(), "model backend") {
		t.Errorf("Ready without chat = %v, want model backend error", err)
	}

	reg.SetChat(providers.NewMockChatClient("ok"))
	if err := svc.Ready(); err == nil || !strings.Contains(err.Error(), "speech backend") {
		t.Errorf("Ready without TTS = %v, want speech backend error", err)
	}
}
