// Package agents implements the pipeline stages as model-backed agents
// sharing one runtime: backend selection between the specialized agent
// service and the chat fallback, retries with backoff, and call recording.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/podforge/podforge/internal/llmcall"
	"github.com/podforge/podforge/internal/metrics"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/providers"
)

const (
	// maxCallAttempts bounds retries of one logical model call.
	maxCallAttempts = 3

	// DefaultCallTimeout applies per backend call when the runtime is
	// built without an explicit timeout.
	DefaultCallTimeout = 60 * time.Second
)

// errRunNotCompleted marks an assistant run that finished in a
// non-completed status. The runtime falls through to the chat backend.
var errRunNotCompleted = errors.New("assistant run did not complete")

// Request is one logical model call: the stage contract as the system
// prompt and the stage input as the user message.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// AgentResolver returns the remote agent id configured for a stage role
// (planner, researcher, outliner, scripter, tone, editor), or "" when the
// stage must use the chat fallback.
type AgentResolver func(role string) string

// RuntimeConfig wires a Runtime.
type RuntimeConfig struct {
	Registry     *providers.Registry
	Calls        *llmcall.Store
	Metrics      *metrics.Store
	Logger       *slog.Logger
	Timeout      time.Duration
	ResolveAgent AgentResolver
}

// Runtime executes model calls for every stage agent. It selects the
// backend, retries with exponential backoff and jitter, and records each
// attempt in the call trace and metrics stores.
type Runtime struct {
	registry *providers.Registry
	calls    *llmcall.Store
	metrics  *metrics.Store
	logger   *slog.Logger
	timeout  time.Duration
	resolve  AgentResolver

	// jobID stamps recorded calls; set per job via ForJob.
	jobID string
}

// NewRuntime builds a runtime from its dependencies. Only Registry is
// required; recording and agent resolution degrade to no-ops.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Runtime{
		registry: cfg.Registry,
		calls:    cfg.Calls,
		metrics:  cfg.Metrics,
		logger:   logger,
		timeout:  timeout,
		resolve:  cfg.ResolveAgent,
	}
}

// ForJob returns a view of the runtime that stamps jobID on every
// recorded call. The underlying stores and clients are shared.
func (rt *Runtime) ForJob(jobID string) *Runtime {
	view := *rt
	view.jobID = jobID
	return &view
}

// agentRole maps a pipeline step name to its entry in the configured
// agent table.
func agentRole(stage string) string {
	switch stage {
	case podcast.StepPlan:
		return "planner"
	case podcast.StepResearch:
		return "researcher"
	case podcast.StepOutline:
		return "outliner"
	case podcast.StepScript:
		return "scripter"
	case podcast.StepTone:
		return "tone"
	case podcast.StepEdit:
		return "editor"
	}
	return ""
}

// Complete runs one model call for a stage and returns the trimmed
// response text. Up to three attempts with exponential backoff; HTTP
// 400/401/403 equivalents are not retried. On exhausted retries the
// error carries the backend kind and the stage name.
func (rt *Runtime) Complete(ctx context.Context, stage string, req Request) (string, error) {
	var out string
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			text, err := rt.completeOnce(ctx, stage, req, attempt)
			if err != nil {
				rt.logger.Warn("model call failed",
					"stage", stage,
					"attempt", attempt,
					"job_id", rt.jobID,
					"error", err)
				return err
			}
			out = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxCallAttempts),
		retry.DelayType(backoffWithJitter),
		retry.RetryIf(func(err error) bool {
			return !providers.IsNonRetryable(err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", podcast.WrapError(podcast.ErrBackend, stage, err)
	}
	return out, nil
}

// backoffWithJitter is 1s, 2s, 4s, ... plus up to one second of jitter.
func backoffWithJitter(n uint, _ error, _ *retry.Config) time.Duration {
	return time.Second*(1<<n) + rand.N(time.Second)
}

// completeOnce is a single attempt: the assistant backend when the stage
// has a configured agent id and the service answers its probe, otherwise
// the chat backend. A failed run or assistant transport failure falls
// through to chat within the same attempt.
func (rt *Runtime) completeOnce(ctx context.Context, stage string, req Request, attempt int) (string, error) {
	opts := llmcall.RecordOptions{JobID: rt.jobID, Stage: stage, Attempt: attempt}

	if agentID := rt.agentIDFor(stage); agentID != "" && rt.registry.HasAssistant() {
		assistant := rt.registry.Assistant()
		if assistant.Available(ctx) {
			text, err := rt.runAssistant(ctx, assistant, agentID, stage, req, opts)
			switch {
			case err == nil:
				return text, nil
			case errors.Is(err, errRunNotCompleted) || errors.Is(err, providers.ErrAssistantUnavailable):
				rt.logger.Warn("assistant backend fell through to chat",
					"stage", stage,
					"agent_id", agentID,
					"job_id", rt.jobID,
					"error", err)
			default:
				return "", err
			}
		} else {
			rt.logger.Debug("assistant backend not available", "stage", stage, "job_id", rt.jobID)
		}
	}

	return rt.runChat(ctx, stage, req, opts)
}

func (rt *Runtime) agentIDFor(stage string) string {
	if rt.resolve == nil {
		return ""
	}
	role := agentRole(stage)
	if role == "" {
		return ""
	}
	return rt.resolve(role)
}

// runAssistant drives the thread protocol: create thread, append the user
// message, run the configured agent, read the reply.
func (rt *Runtime) runAssistant(ctx context.Context, client providers.AssistantClient, agentID, stage string, req Request, opts llmcall.RecordOptions) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	start := time.Now()

	threadID, err := client.CreateThread(cctx, map[string]string{
		"stage":  stage,
		"job_id": rt.jobID,
	})
	if err != nil {
		rt.record(llmcall.FromError(err, client.Name(), agentID, time.Since(start), opts), err)
		return "", err
	}

	if err := client.CreateMessage(cctx, threadID, "user", req.User); err != nil {
		rt.record(llmcall.FromError(err, client.Name(), agentID, time.Since(start), opts), err)
		return "", err
	}

	run, err := client.RunAndWait(cctx, threadID, agentID, req.User, providers.RunOptions{
		Instructions: req.System,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	})
	if err != nil {
		rt.record(llmcall.FromError(err, client.Name(), agentID, time.Since(start), opts), err)
		return "", err
	}

	rt.record(llmcall.FromRunResult(run, client.Name(), opts), nil)

	if run.Status != providers.RunStatusCompleted {
		return "", fmt.Errorf("%w: status %s", errRunNotCompleted, run.Status)
	}
	return strings.TrimSpace(run.ResponseText), nil
}

// runChat performs the generic chat completion.
func (rt *Runtime) runChat(ctx context.Context, stage string, req Request, opts llmcall.RecordOptions) (string, error) {
	chat := rt.registry.Chat()
	if chat == nil {
		return "", errors.New("no chat backend configured")
	}

	cctx, cancel := context.WithTimeout(ctx, rt.timeout)
	defer cancel()

	start := time.Now()
	result, err := chat.Chat(cctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		rt.record(llmcall.FromError(err, chat.Name(), "", time.Since(start), opts), err)
		return "", err
	}

	rt.record(llmcall.FromChatResult(result, opts), nil)
	return strings.TrimSpace(result.Content), nil
}

// record mirrors one call outcome into the trace and metrics stores.
func (rt *Runtime) record(call *llmcall.Call, err error) {
	if call == nil {
		return
	}
	if rt.calls != nil {
		rt.calls.Record(call)
	}
	if rt.metrics != nil {
		rt.metrics.Record(&metrics.Metric{
			JobID:            call.JobID,
			Stage:            call.Stage,
			Provider:         call.Provider,
			Model:            call.Model,
			PromptTokens:     call.PromptTokens,
			CompletionTokens: call.CompletionTokens,
			TotalTokens:      call.TotalTokens,
			ExecutionSeconds: float64(call.LatencyMs) / 1000,
			Attempt:          call.Attempt,
			Success:          call.Success,
			ErrorType:        providers.ErrorClass(err),
			CreatedAt:        call.Timestamp,
		})
	}
}

// tokensForWords sizes a completion budget for a spoken-word target.
// Roughly two tokens per word leaves room for markdown framing; the cap
// respects the chat model's output ceiling.
func tokensForWords(words int) int {
	tokens := words * 2
	if tokens < 1500 {
		tokens = 1500
	}
	if tokens > 16000 {
		tokens = 16000
	}
	return tokens
}

