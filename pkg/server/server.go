package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/gateway"
	"github.com/ration-ai/ration/pkg/models"
)

// backendHeader forces the routing decision for a single request.
const backendHeader = "X-Ration-Backend"

// Server exposes the router over an OpenAI-compatible HTTP API.
type Server struct {
	listen string
	gw     *gateway.Gateway
	ledger budget.Ledger
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server wired with all dependencies.
func New(listen string, gw *gateway.Gateway, ledger budget.Ledger, logger *slog.Logger) *Server {
	s := &Server{
		listen: listen,
		gw:     gw,
		ledger: ledger,
		logger: logger.With("component", "server"),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	s.mux.HandleFunc("/v1/budget", s.handleBudget)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/", s.handleNotFound)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req models.ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	forced, err := models.ParseBackend(r.Header.Get(backendHeader))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.gw.Route(r.Context(), joinMessages(req.Messages), forced)
	if err != nil {
		s.writeRouteError(w, err)
		return
	}

	resp := models.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   res.Model,
		Choices: []models.Choice{{
			Index:        0,
			Message:      models.ChatMessage{Role: "assistant", Content: res.Text},
			FinishReason: "stop",
		}},
		Usage: models.Usage{
			PromptTokens:     res.InputTokens,
			CompletionTokens: res.OutputTokens,
			TotalTokens:      res.InputTokens + res.OutputTokens,
		},
		RouterInfo: models.RouterInfo{
			Backend:         res.Backend,
			Reason:          res.Reason,
			Fallback:        res.Fallback,
			Cost:            res.Cost,
			BudgetRemaining: res.Budget.Remaining,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeRouteError maps gateway errors onto HTTP status codes. Client
// mistakes are 400s, a broken ledger is a 500, anything else means no
// backend could answer.
func (s *Server) writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrEmptyPrompt):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, budget.ErrCorrupt):
		s.logger.Error("budget ledger unreadable", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("routing failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := s.ledger.Status()
	if err != nil {
		s.logger.Error("budget status failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusNotFound, "not found")
}

// joinMessages flattens a chat transcript into the single prompt the
// backends expect. Roles are dropped; only the texts survive.
func joinMessages(messages []models.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+backendHeader)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"ration_error","code":%d}}`, message, code)
}
