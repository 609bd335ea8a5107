package models

import "time"

// Usage represents token usage in a chat completion response. Local
// completions report zeros since the runtime exposes no counts here.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RequestRecord is one journaled routed request.
type RequestRecord struct {
	ID           int64     `json:"id"`
	Backend      Backend   `json:"backend"`
	Model        string    `json:"model"`
	Reason       string    `json:"reason"`
	Fallback     bool      `json:"fallback"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageSummary aggregates journaled requests per backend.
type UsageSummary struct {
	Backend      Backend `json:"backend"`
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}
