package models

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
// Stream is accepted for client compatibility but ignored; responses are
// always returned whole.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// ChatCompletionResponse is an OpenAI-compatible chat completion response
// with a router_info extension describing the routing decision.
type ChatCompletionResponse struct {
	ID         string     `json:"id"`
	Object     string     `json:"object"`
	Created    int64      `json:"created"`
	Model      string     `json:"model"`
	Choices    []Choice   `json:"choices"`
	Usage      Usage      `json:"usage"`
	RouterInfo RouterInfo `json:"router_info"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// RouterInfo explains how a chat completion was routed.
type RouterInfo struct {
	Backend         Backend `json:"backend"`
	Reason          string  `json:"routing_reason"`
	Fallback        bool    `json:"fallback,omitempty"`
	Cost            float64 `json:"cost"`
	BudgetRemaining float64 `json:"budget_remaining"`
}
