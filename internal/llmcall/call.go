// Package llmcall records every model call for traceability. Records live
// in a capped in-memory buffer; when the buffer is full the oldest calls
// are dropped.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/podforge/podforge/internal/providers"
)

// Call represents a recorded model API call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	JobID string `json:"job_id,omitempty"`
	Stage string `json:"stage"`

	// Model info
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Attempt  int    `json:"attempt"`

	// Token usage
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Response holds the leading bytes of the response for debugging.
	Response string `json:"response,omitempty"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording a model call.
type RecordOptions struct {
	JobID   string
	Stage   string
	Attempt int
}

// FromChatResult creates a Call from a chat completion result.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	return &Call{
		ID:               uuid.New().String(),
		Timestamp:        time.Now(),
		LatencyMs:        int(result.ExecutionTime.Milliseconds()),
		JobID:            opts.JobID,
		Stage:            opts.Stage,
		Provider:         result.Provider,
		Model:            result.Model,
		Attempt:          opts.Attempt,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		Response:         result.Content,
		Success:          true,
	}
}

// FromRunResult creates a Call from an assistant run result.
// Returns nil if result is nil. A non-completed run is recorded as a
// failure with the status as the error.
func FromRunResult(result *providers.RunResult, provider string, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:               uuid.New().String(),
		Timestamp:        time.Now(),
		LatencyMs:        int(result.ExecutionTime.Milliseconds()),
		JobID:            opts.JobID,
		Stage:            opts.Stage,
		Provider:         provider,
		Attempt:          opts.Attempt,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		Response:         result.ResponseText,
		Success:          result.Status == providers.RunStatusCompleted,
	}
	if !call.Success {
		call.Error = "run status: " + result.Status
	}
	return call
}

// FromError creates a failed Call from a transport or API error.
func FromError(err error, provider, model string, latency time.Duration, opts RecordOptions) *Call {
	call := &Call{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		LatencyMs: int(latency.Milliseconds()),
		JobID:     opts.JobID,
		Stage:     opts.Stage,
		Provider:  provider,
		Model:     model,
		Attempt:   opts.Attempt,
		Success:   false,
	}
	if err != nil {
		call.Error = err.Error()
	}
	return call
}
