package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockChatClient is a ChatClient for testing. Responses are consumed in
// order; the last one repeats. RespondFn, when set, takes precedence.
type MockChatClient struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)
	FailErr    error
	Responses  []string
	RespondFn  func(req *ChatRequest) (string, error)

	// State
	mu           sync.Mutex
	requests     []*ChatRequest
	requestCount atomic.Int64
}

// NewMockChatClient creates a mock chat client with one canned response.
func NewMockChatClient(responses ...string) *MockChatClient {
	if len(responses) == 0 {
		responses = []string{"mock response"}
	}
	return &MockChatClient{
		Responses: responses,
	}
}

// Name returns the client identifier.
func (c *MockChatClient) Name() string {
	return MockClientName
}

// Chat returns the next scripted response.
func (c *MockChatClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.ShouldFail || (c.FailAfter > 0 && int(count) > c.FailAfter) {
		if c.FailErr != nil {
			return nil, c.FailErr
		}
		return nil, fmt.Errorf("mock chat client configured to fail")
	}

	var content string
	if c.RespondFn != nil {
		var err error
		content, err = c.RespondFn(req)
		if err != nil {
			return nil, err
		}
	} else {
		idx := int(count) - 1
		if idx >= len(c.Responses) {
			idx = len(c.Responses) - 1
		}
		content = c.Responses[idx]
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}
	completionTokens := len(content) / 4

	return &ChatResult{
		Content:          content,
		Model:            req.Model,
		FinishReason:     "stop",
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Provider:         MockClientName,
		ExecutionTime:    time.Since(start),
		RequestID:        req.RequestID,
	}, nil
}

// RequestCount returns the number of requests made.
func (c *MockChatClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns a copy of all recorded requests.
func (c *MockChatClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset clears the request counter and recorded requests.
func (c *MockChatClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

var _ ChatClient = (*MockChatClient)(nil)

// MockAssistantClient is an AssistantClient for testing.
type MockAssistantClient struct {
	AvailableValue bool
	RunStatus      string // defaults to completed
	ResponseText   string
	RunErr         error
	ThreadErr      error

	mu         sync.Mutex
	threads    int
	messages   []string
	runAgents  []string
	runInputs  []string
	runOptions []RunOptions
}

// NewMockAssistantClient creates an available mock assistant.
func NewMockAssistantClient(responseText string) *MockAssistantClient {
	return &MockAssistantClient{
		AvailableValue: true,
		RunStatus:      RunStatusCompleted,
		ResponseText:   responseText,
	}
}

// Name returns the client identifier.
func (c *MockAssistantClient) Name() string {
	return MockClientName
}

// Available reports the scripted availability.
func (c *MockAssistantClient) Available(_ context.Context) bool {
	return c.AvailableValue
}

// CreateThread returns a synthetic thread id.
func (c *MockAssistantClient) CreateThread(_ context.Context, _ map[string]string) (string, error) {
	if c.ThreadErr != nil {
		return "", c.ThreadErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads++
	return fmt.Sprintf("thread-%d", c.threads), nil
}

// CreateMessage records the message content.
func (c *MockAssistantClient) CreateMessage(_ context.Context, _, _, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, content)
	return nil
}

// RunAndWait returns the scripted status and response.
func (c *MockAssistantClient) RunAndWait(_ context.Context, _, agentID, content string, opts RunOptions) (*RunResult, error) {
	if c.RunErr != nil {
		return nil, c.RunErr
	}
	c.mu.Lock()
	c.runAgents = append(c.runAgents, agentID)
	c.runInputs = append(c.runInputs, content)
	c.runOptions = append(c.runOptions, opts)
	c.mu.Unlock()

	status := c.RunStatus
	if status == "" {
		status = RunStatusCompleted
	}
	result := &RunResult{
		Status:        status,
		ExecutionTime: time.Millisecond,
	}
	if status == RunStatusCompleted {
		result.ResponseText = c.ResponseText
		result.PromptTokens = 10
		result.CompletionTokens = len(c.ResponseText) / 4
		result.TotalTokens = result.PromptTokens + result.CompletionTokens
	}
	return result, nil
}

// RunAgents returns the agent ids passed to RunAndWait.
func (c *MockAssistantClient) RunAgents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.runAgents))
	copy(out, c.runAgents)
	return out
}

// Messages returns the contents passed to CreateMessage.
func (c *MockAssistantClient) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

var _ AssistantClient = (*MockAssistantClient)(nil)

// MockTTSClient is a TTSClient for testing. It returns synthetic audio
// bytes derived from the request text.
type MockTTSClient struct {
	Audio      []byte // returned verbatim when set
	ShouldFail bool
	FailAfter  int
	FailErr    error

	mu           sync.Mutex
	requests     []*SpeechRequest
	requestCount atomic.Int64
}

// NewMockTTSClient creates a mock speech synthesis client.
func NewMockTTSClient() *MockTTSClient {
	return &MockTTSClient{}
}

// Name returns the client identifier.
func (c *MockTTSClient) Name() string {
	return MockClientName
}

// Speak returns synthetic audio bytes.
func (c *MockTTSClient) Speak(_ context.Context, req *SpeechRequest) ([]byte, error) {
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.ShouldFail || (c.FailAfter > 0 && int(count) > c.FailAfter) {
		if c.FailErr != nil {
			return nil, c.FailErr
		}
		return nil, fmt.Errorf("mock tts client configured to fail")
	}

	if c.Audio != nil {
		return c.Audio, nil
	}
	return []byte("mp3:" + req.Voice + ":" + req.Text), nil
}

// ListVoices returns the static voice catalog.
func (c *MockTTSClient) ListVoices(_ context.Context) ([]Voice, error) {
	return OpenAIVoices(), nil
}

// RequestCount returns the number of synthesis calls made.
func (c *MockTTSClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns a copy of all recorded synthesis requests.
func (c *MockTTSClient) Requests() []*SpeechRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*SpeechRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

var _ TTSClient = (*MockTTSClient)(nil)
var _ VoicesLister = (*MockTTSClient)(nil)
