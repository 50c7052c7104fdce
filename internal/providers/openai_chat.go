package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIChatName         = "openai"
	openAIChatDefaultModel = "gpt-4o"
)

// OpenAIChatConfig holds configuration for the chat completion client.
type OpenAIChatConfig struct {
	APIKey     string
	Model      string        // "gpt-4o" (default)
	RateLimit  int           // Requests per minute
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional OpenAI-compatible override (and tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIChatClient implements ChatClient using the official OpenAI SDK.
// SDK-level retries are disabled; the agent runtime owns the retry policy.
type OpenAIChatClient struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	limiter *RateLimiter
	client  openai.Client
}

// NewOpenAIChatClient creates a new chat completion client.
func NewOpenAIChatClient(cfg OpenAIChatConfig) *OpenAIChatClient {
	if cfg.Model == "" {
		cfg.Model = openAIChatDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIChatClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		limiter: NewRateLimiter(cfg.RateLimit),
		client:  openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIChatClient) Name() string {
	return OpenAIChatName
}

// Model returns the configured default model.
func (c *OpenAIChatClient) Model() string {
	return c.model
}

// Chat sends a chat completion request and returns the first choice.
func (c *OpenAIChatClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(req))
	if err != nil {
		mapped := mapOpenAIError(OpenAIChatName, err)
		if rle, ok := IsRateLimitError(mapped); ok {
			c.limiter.Record429(rle.RetryAfter)
		}
		return nil, mapped
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response (model=%s, id=%s)", resp.Model, resp.ID)
	}

	choice := resp.Choices[0]
	return &ChatResult{
		Content:          strings.TrimSpace(choice.Message.Content),
		Model:            resp.Model,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		Provider:         OpenAIChatName,
		ExecutionTime:    time.Since(start),
		RequestID:        req.RequestID,
	}, nil
}

// buildParams assembles SDK params from a ChatRequest.
func (c *OpenAIChatClient) buildParams(req *ChatRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}
	return params
}

// HealthCheck verifies the API is reachable and the key is valid.
func (c *OpenAIChatClient) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("openai models list failed: %w", mapOpenAIError(OpenAIChatName, err))
	}
	if page == nil {
		return fmt.Errorf("openai models list returned nil response")
	}
	return nil
}

var _ ChatClient = (*OpenAIChatClient)(nil)
