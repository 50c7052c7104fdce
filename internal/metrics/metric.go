// Package metrics provides usage tracking for model and synthesis calls,
// with per-job per-stage rollups and cross-job aggregation.
package metrics

import "time"

// Metric represents a single recorded call outcome. Metrics are
// append-only records with full attribution.
type Metric struct {
	// Attribution (for filtering/aggregation)
	JobID string `json:"job_id,omitempty"`
	Stage string `json:"stage,omitempty"`

	// Provider info
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Token usage
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing
	ExecutionSeconds float64 `json:"execution_seconds,omitempty"`

	// Attempt is 1-based; attempts above 1 count as retries.
	Attempt int `json:"attempt,omitempty"`

	// Status
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
}

// StageRollup aggregates the metrics of one stage.
type StageRollup struct {
	Stage            string  `json:"stage"`
	Calls            int     `json:"calls"`
	Retries          int     `json:"retries"`
	Errors           int     `json:"errors"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalSeconds     float64 `json:"total_seconds"`
	AvgSeconds       float64 `json:"avg_seconds"`
}

// JobSummary aggregates the metrics of one job, broken down by stage.
type JobSummary struct {
	JobID        string        `json:"job_id"`
	Calls        int           `json:"calls"`
	Retries      int           `json:"retries"`
	Errors       int           `json:"errors"`
	TotalTokens  int           `json:"total_tokens"`
	TotalSeconds float64       `json:"total_seconds"`
	Stages       []StageRollup `json:"stages"`
}

// Summary aggregates all retained metrics across jobs.
type Summary struct {
	Jobs             int            `json:"jobs"`
	Calls            int            `json:"calls"`
	Retries          int            `json:"retries"`
	Errors           int            `json:"errors"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	TotalSeconds     float64        `json:"total_seconds"`
	ByStage          []StageRollup  `json:"by_stage"`
	CallsByProvider  map[string]int `json:"calls_by_provider"`
}
