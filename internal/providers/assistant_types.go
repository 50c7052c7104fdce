package providers

// Assistant service API request/response types

type assistantThreadRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type assistantThread struct {
	ID        string            `json:"id"`
	CreatedAt int64             `json:"created_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type assistantMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type assistantMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text struct {
			Value string `json:"value"`
		} `json:"text"`
	} `json:"content"`
}

type assistantMessageList struct {
	Data []assistantMessage `json:"data"`
}

type assistantRunRequest struct {
	AgentID             string  `json:"agent_id"`
	Input               string  `json:"input,omitempty"`
	Instructions        string  `json:"instructions,omitempty"`
	MaxCompletionTokens int     `json:"max_completion_tokens,omitempty"`
	Temperature         float64 `json:"temperature,omitempty"`
}

type assistantRun struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Usage  struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	// LastError is populated by the service when status is failed.
	LastError *assistantRunError `json:"last_error,omitempty"`
}

type assistantRunError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type assistantErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
	} `json:"error"`
}
