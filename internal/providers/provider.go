// Package providers implements the model backends the pipeline speaks to:
// a specialized-agent service addressed per stage (assistant), a generic
// chat-completion fallback, and speech synthesis.
package providers

import (
	"context"
	"time"
)

// ChatClient is a generic chat-completion backend, the fallback when the
// assistant backend is unavailable or a run fails.
type ChatClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
	Name() string
}

// AssistantClient is the specialized-agent backend. Each pipeline stage
// addresses a pre-configured agent by ID through a thread.
type AssistantClient interface {
	// Available probes the service; a false return routes the stage to
	// the chat fallback without error.
	Available(ctx context.Context) bool
	CreateThread(ctx context.Context, metadata map[string]string) (string, error)
	CreateMessage(ctx context.Context, threadID, role, content string) error
	RunAndWait(ctx context.Context, threadID, agentID, content string, opts RunOptions) (*RunResult, error)
	Name() string
}

// TTSClient converts one utterance of text into encoded audio.
type TTSClient interface {
	Speak(ctx context.Context, req *SpeechRequest) ([]byte, error)
	Name() string
}

// Message is a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to a chat backend.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model overrides the client default when set.
	Model string `json:"model,omitempty"`

	MaxTokens        int     `json:"max_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	TopP             float64 `json:"top_p,omitempty"`
	PresencePenalty  float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64 `json:"frequency_penalty,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the response from a chat backend.
type ChatResult struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	Provider      string        `json:"provider"`
	ExecutionTime time.Duration `json:"execution_time"`
	RequestID     string        `json:"request_id,omitempty"`
}

// RunOptions tune a single assistant run.
type RunOptions struct {
	Instructions string  `json:"instructions,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// Run status values reported by the assistant backend.
const (
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCancelled  = "cancelled"
	RunStatusExpired    = "expired"
	RunStatusIncomplete = "incomplete"
)

// RunResult is the outcome of one assistant run. A failed status is not an
// error at this layer; the caller decides whether to fall through.
type RunResult struct {
	Status       string `json:"status"`
	ResponseText string `json:"response_text"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`
}

// SpeechRequest is one synthesis call. Text must respect the synthesis
// input limit; splitting happens upstream.
type SpeechRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice"`
	Model  string  `json:"model,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Format string  `json:"format,omitempty"`
}

// Voice describes one synthesis voice.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// VoicesLister is implemented by TTS clients that can enumerate voices.
type VoicesLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// RegistryConfig carries resolved provider settings from configuration.
type RegistryConfig struct {
	Chat      ChatConfig
	Assistant AssistantConfig
	TTS       TTSConfig
}

// ChatConfig configures the chat backend. The same credentials drive
// speech synthesis.
type ChatConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AssistantConfig configures the assistant backend. An empty BaseURL
// disables it; every stage then uses the chat fallback.
type AssistantConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// TTSConfig configures speech synthesis.
type TTSConfig struct {
	Model  string
	Speed  float64
	Format string
}
