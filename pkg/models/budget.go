package models

// Snapshot is the budget ledger state for one calendar month.
type Snapshot struct {
	Month     string  `json:"month"`
	Spent     float64 `json:"spent"`
	Requests  int     `json:"requests"`
	Budget    float64 `json:"budget"`
	Remaining float64 `json:"remaining"`
}
