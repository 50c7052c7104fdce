package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	AssistantName = "assistant"

	assistantAPIPrefix    = "/v1"
	assistantPollInterval = 500 * time.Millisecond
	assistantProbeTimeout = 5 * time.Second
)

// AssistantServiceConfig holds configuration for the assistant client.
type AssistantServiceConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // HTTP timeout per request
	HTTPClient *http.Client  // Optional (tests)
}

// AssistantServiceClient talks to an assistants-style agent service over
// plain HTTP. Protocol per call site: create a thread, append the user
// message, create a run against a named agent, poll the run to a terminal
// status, then read the newest assistant message.
type AssistantServiceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	pollInterval time.Duration
}

// NewAssistantServiceClient creates a new assistant service client.
func NewAssistantServiceClient(cfg AssistantServiceConfig) *AssistantServiceClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &AssistantServiceClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		client:       httpClient,
		pollInterval: assistantPollInterval,
	}
}

// Name returns the provider identifier.
func (c *AssistantServiceClient) Name() string {
	return AssistantName
}

// Available probes the service health endpoint. A false return routes
// callers to the chat fallback; it is never an error.
func (c *AssistantServiceClient) Available(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, assistantProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// CreateThread creates a conversation thread and returns its id.
func (c *AssistantServiceClient) CreateThread(ctx context.Context, metadata map[string]string) (string, error) {
	var thread assistantThread
	err := c.doJSON(ctx, http.MethodPost, assistantAPIPrefix+"/threads", &assistantThreadRequest{Metadata: metadata}, &thread)
	if err != nil {
		return "", err
	}
	if thread.ID == "" {
		return "", fmt.Errorf("%s returned thread without id", AssistantName)
	}
	return thread.ID, nil
}

// CreateMessage appends a message to a thread.
func (c *AssistantServiceClient) CreateMessage(ctx context.Context, threadID, role, content string) error {
	path := fmt.Sprintf("%s/threads/%s/messages", assistantAPIPrefix, threadID)
	return c.doJSON(ctx, http.MethodPost, path, &assistantMessageRequest{Role: role, Content: content}, nil)
}

// RunAndWait creates a run against the named agent and polls it to a
// terminal status. A failed run is reported through RunResult.Status, not
// through the error return; the caller decides whether to fall through.
func (c *AssistantServiceClient) RunAndWait(ctx context.Context, threadID, agentID, content string, opts RunOptions) (*RunResult, error) {
	start := time.Now()

	runReq := &assistantRunRequest{
		AgentID:             agentID,
		Input:               content,
		Instructions:        opts.Instructions,
		MaxCompletionTokens: opts.MaxTokens,
		Temperature:         opts.Temperature,
	}

	var run assistantRun
	runsPath := fmt.Sprintf("%s/threads/%s/runs", assistantAPIPrefix, threadID)
	if err := c.doJSON(ctx, http.MethodPost, runsPath, runReq, &run); err != nil {
		return nil, err
	}
	if run.ID == "" {
		return nil, fmt.Errorf("%s returned run without id", AssistantName)
	}

	for !isTerminalRunStatus(run.Status) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		runPath := fmt.Sprintf("%s/threads/%s/runs/%s", assistantAPIPrefix, threadID, run.ID)
		if err := c.doJSON(ctx, http.MethodGet, runPath, nil, &run); err != nil {
			return nil, err
		}
	}

	result := &RunResult{
		Status:           run.Status,
		PromptTokens:     run.Usage.PromptTokens,
		CompletionTokens: run.Usage.CompletionTokens,
		TotalTokens:      run.Usage.TotalTokens,
		ExecutionTime:    time.Since(start),
	}

	if run.Status != RunStatusCompleted {
		if run.LastError != nil {
			result.ResponseText = run.LastError.Message
		}
		return result, nil
	}

	text, err := c.latestAssistantMessage(ctx, threadID)
	if err != nil {
		return nil, err
	}
	result.ResponseText = text
	return result, nil
}

// latestAssistantMessage fetches the newest assistant message in a thread.
func (c *AssistantServiceClient) latestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	var list assistantMessageList
	path := fmt.Sprintf("%s/threads/%s/messages?order=desc&limit=5", assistantAPIPrefix, threadID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", err
	}

	for _, msg := range list.Data {
		if msg.Role != "assistant" {
			continue
		}
		var sb strings.Builder
		for _, part := range msg.Content {
			if part.Type != "" && part.Type != "text" {
				continue
			}
			sb.WriteString(part.Text.Value)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("%s thread %s has no assistant message", AssistantName, threadID)
}

// doJSON makes one HTTP request with JSON encoding both ways. Transport
// failures wrap ErrAssistantUnavailable; non-2xx responses become
// StatusError so the retry policy can classify them.
func (c *AssistantServiceClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(respBody))
		var errResp assistantErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return &StatusError{
			Provider:   AssistantName,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *AssistantServiceClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func isTerminalRunStatus(status string) bool {
	switch status {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired, RunStatusIncomplete:
		return true
	default:
		return false
	}
}

var _ AssistantClient = (*AssistantServiceClient)(nil)
