package router

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/models"
)

// Routing reasons attached to every decision.
const (
	ReasonForced    = "forced"
	ReasonExhausted = "budget exhausted"
	ReasonLow       = "budget low"
	ReasonSimple    = "simple task"
	ReasonComplex   = "complex task"
	ReasonLong      = "long prompt"
	ReasonDefault   = "default"
)

// lowBudgetFloor routes everything local once remaining drops below it.
const lowBudgetFloor = 0.5

// longPromptRunes pushes prompts above this length to the paid backend.
const longPromptRunes = 1000

// Router picks a backend for each prompt from the budget state and
// two keyword sets.
type Router struct {
	ledger        budget.Ledger
	localKeywords []string
	paidKeywords  []string
}

// New creates a Router over the given ledger and keyword sets.
func New(ledger budget.Ledger, localKeywords, paidKeywords []string) *Router {
	return &Router{
		ledger:        ledger,
		localKeywords: localKeywords,
		paidKeywords:  paidKeywords,
	}
}

// Decide returns the backend for a prompt and the reason for the
// choice, in strict precedence order: forced override, budget gates,
// local keywords, paid keywords, prompt length, default local.
//
// Local keywords are checked before paid ones, so a prompt matching
// both stays on the free backend.
func (r *Router) Decide(prompt string, forced models.Backend) (models.Backend, string, error) {
	if forced != "" {
		return forced, ReasonForced, nil
	}

	snap, err := r.ledger.Status()
	if err != nil {
		return "", "", fmt.Errorf("budget status: %w", err)
	}
	if snap.Remaining <= 0 {
		return models.BackendLocal, ReasonExhausted, nil
	}
	if snap.Remaining < lowBudgetFloor {
		return models.BackendLocal, ReasonLow, nil
	}

	lower := strings.ToLower(prompt)
	if matchesAny(lower, r.localKeywords) {
		return models.BackendLocal, ReasonSimple, nil
	}
	if matchesAny(lower, r.paidKeywords) {
		return models.BackendPaid, ReasonComplex, nil
	}
	if utf8.RuneCountInString(prompt) > longPromptRunes {
		return models.BackendPaid, ReasonLong, nil
	}
	return models.BackendLocal, ReasonDefault, nil
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
