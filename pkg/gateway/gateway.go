package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ration-ai/ration/pkg/backend"
	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/models"
	"github.com/ration-ai/ration/pkg/tracker"
)

// ErrEmptyPrompt is returned when a request carries no prompt text.
var ErrEmptyPrompt = errors.New("empty prompt")

// Decider picks a backend for a prompt. *router.Router implements it.
type Decider interface {
	Decide(prompt string, forced models.Backend) (models.Backend, string, error)
}

// Gateway sends prompts to the backend the decider picks and assembles
// results with the routing reason and a fresh budget snapshot.
type Gateway struct {
	decider Decider
	clients map[models.Backend]backend.Client
	ledger  budget.Ledger
	journal tracker.Journal
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Gateway. A nil journal disables request journaling.
func New(decider Decider, local, paid backend.Client, ledger budget.Ledger, journal tracker.Journal, logger *slog.Logger) *Gateway {
	return &Gateway{
		decider: decider,
		clients: map[models.Backend]backend.Client{
			models.BackendLocal: local,
			models.BackendPaid:  paid,
		},
		ledger:  ledger,
		journal: journal,
		logger:  logger.With("component", "gateway"),
		now:     time.Now,
	}
}

// Route routes one prompt. When the chosen backend fails with a
// fallback-eligible error the other backend is tried exactly once; the
// result then reports the backend that actually answered with the
// original routing reason and Fallback set.
func (g *Gateway) Route(ctx context.Context, prompt string, forced models.Backend) (*models.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	chosen, reason, err := g.decider.Decide(prompt, forced)
	if err != nil {
		return nil, err
	}

	fellBack := false
	reply, err := g.clients[chosen].Generate(ctx, prompt)
	if err != nil {
		var be *backend.Error
		if !errors.As(err, &be) || !be.Fallback {
			return nil, err
		}
		alternate := chosen.Other()
		g.logger.Warn("backend failed, falling back",
			"from", chosen, "to", alternate, "error", err)
		reply, err = g.clients[alternate].Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%s fallback after %s failure: %w", alternate, chosen, err)
		}
		fellBack = true
	}

	snap, err := g.ledger.Status()
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}

	result := &models.Result{
		Text:         reply.Text,
		Backend:      reply.Backend,
		Model:        reply.Model,
		Reason:       reason,
		Fallback:     fellBack,
		Cost:         reply.Cost,
		InputTokens:  reply.InputTokens,
		OutputTokens: reply.OutputTokens,
		Budget:       snap,
	}
	g.journalResult(ctx, result)

	g.logger.Debug("routed",
		"backend", result.Backend, "reason", reason,
		"fallback", fellBack, "cost", result.Cost,
		"remaining", snap.Remaining)
	return result, nil
}

// journalResult records the request best-effort; a journal failure must
// not fail a request that already produced an answer.
func (g *Gateway) journalResult(ctx context.Context, res *models.Result) {
	if g.journal == nil {
		return
	}
	rec := models.RequestRecord{
		Backend:      res.Backend,
		Model:        res.Model,
		Reason:       res.Reason,
		Fallback:     res.Fallback,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Cost:         res.Cost,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.journal.Record(ctx, rec); err != nil {
		g.logger.Warn("journal record failed", "error", err)
	}
}
