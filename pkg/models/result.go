package models

// Result is a completed routed request.
type Result struct {
	Text         string   `json:"text"`
	Backend      Backend  `json:"backend"`
	Model        string   `json:"model"`
	Reason       string   `json:"reason"`
	Fallback     bool     `json:"fallback,omitempty"`
	Cost         float64  `json:"cost"`
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Budget       Snapshot `json:"budget"`
}
