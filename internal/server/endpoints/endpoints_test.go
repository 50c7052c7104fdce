package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/podforge/podforge/internal/api"
	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/home"
	"github.com/podforge/podforge/internal/jobs"
	"github.com/podforge/podforge/internal/llmcall"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/pipeline"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
	"github.com/podforge/podforge/internal/svcctx"
	"github.com/podforge/podforge/internal/testutil"
)

// stubAssembler stands in for ffmpeg: it concatenates chapter bytes and
// answers probes with canned numbers.
type stubAssembler struct{}

func (stubAssembler) CombineChapter(_ context.Context, scratchDir string, chapter int, files []audio.UtteranceFile) (string, error) {
	var buf bytes.Buffer
	for _, uf := range files {
		data, err := os.ReadFile(uf.Path)
		if err != nil {
			return "", err
		}
		buf.Write(data)
	}
	path := filepath.Join(scratchDir, fmt.Sprintf("chapter-%d.mp3", chapter))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (stubAssembler) AssembleEpisode(_ context.Context, chapterFiles []string, _, outputPath string) error {
	var buf bytes.Buffer
	for _, p := range chapterFiles {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(outputPath, buf.Bytes(), 0o644)
}

func (stubAssembler) Probe(context.Context, string) (*audio.ProbeResult, error) {
	return &audio.ProbeResult{DurationSec: 240, BitRate: 128000, Codec: "mp3", SampleRate: 44100}, nil
}

type testServer struct {
	*httptest.Server
	svc     *pipeline.Service
	home    *home.Dir
	calls   *llmcall.Store
	metrics *metrics.Store
}

// newTestServer serves the full endpoint set over a real pipeline
// service backed by canned providers and a stub assembler.
func newTestServer(t *testing.T, chat providers.ChatClient) *testServer {
	t.Helper()

	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := "providers:\n  chat:\n    apiKey: sk-test-secret\n    model: gpt-4o\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	mgr, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("config.NewManager: %v", err)
	}

	reg := providers.NewRegistry()
	reg.SetChat(chat)
	reg.SetTTS(providers.NewMockTTSClient())

	calls := llmcall.NewStore(200)
	mstore := metrics.NewStore(200)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := pipeline.NewService(pipeline.ServiceConfig{
		Home:      dir,
		Config:    mgr.Get(),
		Providers: reg,
		Calls:     calls,
		Metrics:   mstore,
		Logger:    logger,
		NewAssembler: func(*slog.Logger, string) pipeline.Assembler {
			return stubAssembler{}
		},
	})
	t.Cleanup(svc.Close)

	services := &svcctx.Services{
		Service:      svc,
		Registry:     reg,
		Config:       mgr,
		Logger:       logger,
		Home:         dir,
		MetricsStore: mstore,
		LLMCallStore: calls,
	}

	registry := api.NewRegistry()
	for _, ep := range All(Config{Started: time.Now()}) {
		registry.Register(ep)
	}
	mux := http.NewServeMux()
	registry.RegisterRoutes(mux, func(h http.HandlerFunc) http.HandlerFunc { return h })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	}))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, svc: svc, home: dir, calls: calls, metrics: mstore}
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode GET %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) post(t *testing.T, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode POST %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) del(t *testing.T, path string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("DELETE %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode DELETE %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func briefJSON(chapters, minutes int) string {
	return fmt.Sprintf(`{"topic":"The shipping container","mood":"enthusiastic","style":"conversational","chapters":%d,"durationMin":%d}`,
		chapters, minutes)
}

// stageReplies covers a full run with word figures matching the brief.
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

func TestCreateAndTrackPodcast(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(stageReplies(2, 300, 150)))

	var created CreatePodcastResponse
	if code := ts.post(t, "/api/v1/podcasts", briefJSON(2, 2), &created); code != http.StatusAccepted {
		t.Fatalf("create status = %d, want 202", code)
	}
	if created.ID == "" {
		t.Fatal("create returned no job id")
	}
	id := created.ID

	waitFor(t, 10*time.Second, "job completion", func() bool {
		var job jobs.Job
		return ts.get(t, "/api/v1/podcasts/"+id, &job) == http.StatusOK && job.State.Terminal()
	})

	var job jobs.Job
	if code := ts.get(t, "/api/v1/podcasts/"+id, &job); code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", code)
	}
	if job.State != jobs.StateCompleted {
		t.Fatalf("State = %q (error %q), want completed", job.State, job.Error)
	}
	if job.StepsCompleted != podcast.TotalSteps {
		t.Errorf("StepsCompleted = %d, want %d", job.StepsCompleted, podcast.TotalSteps)
	}

	t.Run("artifacts", func(t *testing.T) {
		var resp PodcastArtifactsResponse
		if code := ts.get(t, "/api/v1/podcasts/"+id+"/artifacts", &resp); code != http.StatusOK {
			t.Fatalf("artifacts status = %d, want 200", code)
		}
		if resp.ID != id {
			t.Errorf("artifacts id = %q, want %q", resp.ID, id)
		}
		if resp.Artifacts == nil || resp.Artifacts.Plan == "" || len(resp.Artifacts.Scripts) != 2 {
			t.Errorf("artifacts incomplete: %+v", resp.Artifacts)
		}
	})

	t.Run("audio_download", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/podcasts/" + id + "/audio")
		if err != nil {
			t.Fatalf("GET audio: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("audio status = %d, want 200", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
			t.Errorf("Content-Type = %q, want audio/mpeg", ct)
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, id+".mp3") {
			t.Errorf("Content-Disposition = %q, want filename %s.mp3", cd, id)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read audio body: %v", err)
		}
		if len(data) == 0 {
			t.Error("audio body is empty")
		}
	})

	t.Run("job_metrics", func(t *testing.T) {
		var summary metrics.JobSummary
		if code := ts.get(t, "/api/v1/podcasts/"+id+"/metrics", &summary); code != http.StatusOK {
			t.Fatalf("metrics status = %d, want 200", code)
		}
		if summary.JobID != id {
			t.Errorf("JobID = %q, want %q", summary.JobID, id)
		}
		if summary.Calls == 0 || summary.TotalTokens == 0 {
			t.Errorf("summary empty: %+v", summary)
		}
	})

	t.Run("llm_calls", func(t *testing.T) {
		var list LLMCallsResponse
		if code := ts.get(t, "/api/v1/llm-calls?podcast="+id, &list); code != http.StatusOK {
			t.Fatalf("llm-calls status = %d, want 200", code)
		}
		if list.Total == 0 {
			t.Fatal("no LLM calls recorded")
		}
		for _, c := range list.Calls {
			if c.JobID != id {
				t.Errorf("call %s attributed to job %q, want %q", c.ID, c.JobID, id)
			}
		}

		var single llmcall.Call
		if code := ts.get(t, "/api/v1/llm-calls/"+list.Calls[0].ID, &single); code != http.StatusOK {
			t.Fatalf("llm-call get status = %d, want 200", code)
		}
		if single.ID != list.Calls[0].ID {
			t.Errorf("single call id = %q, want %q", single.ID, list.Calls[0].ID)
		}

		var counts LLMCallCountsResponse
		if code := ts.get(t, "/api/v1/llm-calls/counts/"+id, &counts); code != http.StatusOK {
			t.Fatalf("counts status = %d, want 200", code)
		}
		if counts.Counts[podcast.StepPlan] == 0 {
			t.Errorf("no plan-stage calls in counts: %v", counts.Counts)
		}
	})

	t.Run("metrics_summary", func(t *testing.T) {
		var summary metrics.Summary
		if code := ts.get(t, "/api/v1/metrics/summary", &summary); code != http.StatusOK {
			t.Fatalf("summary status = %d, want 200", code)
		}
		if summary.Jobs != 1 {
			t.Errorf("Jobs = %d, want 1", summary.Jobs)
		}
		if summary.Calls == 0 || len(summary.ByStage) == 0 {
			t.Errorf("summary empty: %+v", summary)
		}
	})

	t.Run("status_counts", func(t *testing.T) {
		var status StatusResponse
		if code := ts.get(t, "/api/v1/status", &status); code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if status.Version == "" {
			t.Error("status has no version")
		}
		if status.Jobs["completed"] != 1 {
			t.Errorf("Jobs = %v, want one completed", status.Jobs)
		}
	})

	t.Run("cancel_terminal_is_unchanged", func(t *testing.T) {
		var resp CancelPodcastResponse
		if code := ts.del(t, "/api/v1/podcasts/"+id, &resp); code != http.StatusOK {
			t.Fatalf("cancel status = %d, want 200", code)
		}
		if resp.State != jobs.StateCompleted {
			t.Errorf("state after cancel = %q, want completed", resp.State)
		}
	})
}

func TestCreateRejectsInvalidBrief(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var errResp ErrorResponse
	if code := ts.post(t, "/api/v1/podcasts", briefJSON(0, 2), &errResp); code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400", code)
	}
	if errResp.Error == "" {
		t.Error("no error message in response")
	}

	var list ListPodcastsResponse
	ts.get(t, "/api/v1/podcasts", &list)
	if list.Total != 0 {
		t.Errorf("rejected brief created %d jobs", list.Total)
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var errResp ErrorResponse
	if code := ts.post(t, "/api/v1/podcasts", "{not json", &errResp); code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400", code)
	}
	if errResp.Error != "invalid request body" {
		t.Errorf("error = %q, want invalid request body", errResp.Error)
	}
}

func TestUnknownJobIs404(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	paths := []string{
		"/api/v1/podcasts/no-such-job",
		"/api/v1/podcasts/no-such-job/artifacts",
		"/api/v1/podcasts/no-such-job/audio",
		"/api/v1/podcasts/no-such-job/metrics",
	}
	for _, path := range paths {
		var errResp ErrorResponse
		if code := ts.get(t, path, &errResp); code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, code)
		}
	}

	if code := ts.del(t, "/api/v1/podcasts/no-such-job", nil); code != http.StatusNotFound {
		t.Errorf("DELETE unknown = %d, want 404", code)
	}
}

func TestArtifactsUnavailableBeforeCompletion(t *testing.T) {
	// No scripted replies: the job fails at the first stage.
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var created CreatePodcastResponse
	if code := ts.post(t, "/api/v1/podcasts", briefJSON(2, 2), &created); code != http.StatusAccepted {
		t.Fatalf("create status = %d, want 202", code)
	}

	waitFor(t, 10*time.Second, "job failure", func() bool {
		var job jobs.Job
		return ts.get(t, "/api/v1/podcasts/"+created.ID, &job) == http.StatusOK && job.State == jobs.StateFailed
	})

	var errResp ErrorResponse
	if code := ts.get(t, "/api/v1/podcasts/"+created.ID+"/artifacts", &errResp); code != http.StatusBadRequest {
		t.Errorf("artifacts on failed job = %d, want 400", code)
	}
	if !strings.Contains(errResp.Error, "failed") {
		t.Errorf("error = %q, want the job state named", errResp.Error)
	}
	if code := ts.get(t, "/api/v1/podcasts/"+created.ID+"/audio", &errResp); code != http.StatusBadRequest {
		t.Errorf("audio on failed job = %d, want 400", code)
	}

	// Cancelling a failed job reports the state unchanged.
	var cancel CancelPodcastResponse
	if code := ts.del(t, "/api/v1/podcasts/"+created.ID, &cancel); code != http.StatusOK {
		t.Errorf("cancel failed job = %d, want 200", code)
	}
	if cancel.State != jobs.StateFailed {
		t.Errorf("state after cancel = %q, want failed", cancel.State)
	}
}

func TestValidateBrief(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var v podcast.Validation
	if code := ts.post(t, "/api/v1/podcasts/validate", briefJSON(3, 3), &v); code != http.StatusOK {
		t.Fatalf("validate status = %d, want 200", code)
	}
	if !v.Valid {
		t.Fatalf("valid brief rejected: %v", v.Errors)
	}
	if v.Estimates.TargetWords != 450 {
		t.Errorf("TargetWords = %d, want 450", v.Estimates.TargetWords)
	}

	// An invalid brief still answers 200 with the problems listed.
	bad := `{"topic":"x","mood":"angry","style":"conversational","chapters":3,"durationMin":3}`
	if code := ts.post(t, "/api/v1/podcasts/validate", bad, &v); code != http.StatusOK {
		t.Fatalf("validate status = %d, want 200", code)
	}
	if v.Valid || len(v.Errors) == 0 {
		t.Errorf("unknown mood accepted: %+v", v)
	}
}

func TestListPaginationAndFilters(t *testing.T) {
	// Jobs fail fast without scripted replies.
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var ids []string
	for i := 0; i < 3; i++ {
		var created CreatePodcastResponse
		if code := ts.post(t, "/api/v1/podcasts", briefJSON(2, 2), &created); code != http.StatusAccepted {
			t.Fatalf("create status = %d, want 202", code)
		}
		ids = append(ids, created.ID)
	}

	waitFor(t, 10*time.Second, "all jobs terminal", func() bool {
		for _, id := range ids {
			var job jobs.Job
			if ts.get(t, "/api/v1/podcasts/"+id, &job) != http.StatusOK || !job.State.Terminal() {
				return false
			}
		}
		return true
	})

	var all ListPodcastsResponse
	ts.get(t, "/api/v1/podcasts", &all)
	if all.Total != 3 {
		t.Fatalf("Total = %d, want 3", all.Total)
	}

	var page ListPodcastsResponse
	ts.get(t, "/api/v1/podcasts?limit=2", &page)
	if page.Total != 2 {
		t.Fatalf("limit=2 Total = %d, want 2", page.Total)
	}
	if page.Podcasts[0].ID != ids[2] {
		t.Errorf("newest first: got %q, want %q", page.Podcasts[0].ID, ids[2])
	}

	var errResp ErrorResponse
	if code := ts.get(t, "/api/v1/podcasts?limit=abc", &errResp); code != http.StatusBadRequest {
		t.Errorf("limit=abc = %d, want 400", code)
	}
	if code := ts.get(t, "/api/v1/llm-calls?success=maybe", &errResp); code != http.StatusBadRequest {
		t.Errorf("success=maybe = %d, want 400", code)
	}
	if code := ts.get(t, "/api/v1/llm-calls/no-such-call", &errResp); code != http.StatusNotFound {
		t.Errorf("unknown llm call = %d, want 404", code)
	}
}

func TestVoicesCatalog(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	var resp ListVoicesResponse
	if code := ts.get(t, "/api/v1/voices", &resp); code != http.StatusOK {
		t.Fatalf("voices status = %d, want 200", code)
	}
	if len(resp.Voices) != len(providers.OpenAIVoices()) {
		t.Errorf("voices = %d, want %d", len(resp.Voices), len(providers.OpenAIVoices()))
	}
	if resp.Hosts.Host1 != "alloy" || resp.Hosts.Host2 != "echo" {
		t.Errorf("hosts = %+v, want alloy/echo", resp.Hosts)
	}
	if resp.Model != "tts-1" {
		t.Errorf("model = %q, want tts-1", resp.Model)
	}
}

func TestSettingsRedactSecrets(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	resp, err := http.Get(ts.URL + "/api/v1/settings")
	if err != nil {
		t.Fatalf("GET settings: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settings status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read settings body: %v", err)
	}
	if strings.Contains(string(body), "sk-test-secret") {
		t.Error("settings response leaks the API key")
	}

	var cfg config.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if cfg.Providers.Chat.APIKey != redactedSecret {
		t.Errorf("chat apiKey = %q, want %q", cfg.Providers.Chat.APIKey, redactedSecret)
	}
	if cfg.Providers.Chat.Model != "gpt-4o" {
		t.Errorf("chat model = %q, want gpt-4o", cfg.Providers.Chat.Model)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	// No chat backend: readiness must degrade with the reason named.
	ts := newTestServer(t, nil)

	var health HealthResponse
	if code := ts.get(t, "/healthz", &health); code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", code)
	}
	if health.Status != "ok" {
		t.Errorf("healthz status = %q, want ok", health.Status)
	}

	var ready HealthResponse
	if code := ts.get(t, "/readyz", &ready); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503 without a model backend", code)
	}
	if ready.Status != "degraded" || !strings.Contains(ready.Reason, "model backend") {
		t.Errorf("readyz = %+v, want degraded with model backend reason", ready)
	}
}

func TestSwaggerServing(t *testing.T) {
	ts := newTestServer(t, testutil.ScriptedChat(nil))

	resp, err := http.Get(ts.URL + "/swagger/")
	if err != nil {
		t.Fatalf("GET swagger ui: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("swagger ui = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/swagger/doc.json") {
		t.Error("UI page does not reference the doc.json route")
	}

	// The spec route serves a file; without one it answers 404.
	var errResp ErrorResponse
	if code := ts.get(t, "/swagger/doc.json", &errResp); code != http.StatusNotFound {
		t.Errorf("doc.json without spec file = %d, want 404", code)
	}
}

func TestSwaggerSpecFromFile(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "swagger.json")
	if err := os.WriteFile(specPath, []byte(`{"openapi":"3.0.0"}`), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	ep := &SwaggerEndpoint{SpecPath: specPath}
	_, _, handler := ep.Route()

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), "openapi") {
		t.Errorf("body = %q, want the spec file contents", rec.Body.String())
	}
}

func TestEndpointsWithoutServices(t *testing.T) {
	// A request context with no services must degrade, not panic.
	registry := api.NewRegistry()
	for _, ep := range All(Config{}) {
		registry.Register(ep)
	}
	mux := http.NewServeMux()
	registry.RegisterRoutes(mux, func(h http.HandlerFunc) http.HandlerFunc { return h })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/podcasts", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("list without services = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz without services = %d, want 503", rec.Code)
	}
}
