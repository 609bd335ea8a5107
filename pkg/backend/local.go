package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ration-ai/ration/pkg/models"
)

// generateTimeout bounds one local completion. Local models can be
// slow on modest hardware, so this is deliberately generous.
const generateTimeout = 120 * time.Second

// Sampling parameters sent with every local request.
const (
	localTemperature = 0.7
	localTopP        = 0.9
)

// Local calls an Ollama-compatible runtime over HTTP. Local
// completions cost nothing and report zero token counts.
type Local struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewLocal creates a client for the runtime at baseURL.
func NewLocal(baseURL, model string) *Local {
	return &Local{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: generateTimeout},
	}
}

// Name implements Client.
func (l *Local) Name() models.Backend { return models.BackendLocal }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt to {base}/api/generate. Every failure is
// marked fallback-worthy since the paid backend can serve the same
// prompt.
func (l *Local) Generate(ctx context.Context, prompt string) (*Reply, error) {
	body, err := json.Marshal(generateRequest{
		Model:  l.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: localTemperature,
			TopP:        localTopP,
		},
	})
	if err != nil {
		return nil, &Error{Backend: models.BackendLocal, Fallback: true, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Backend: models.BackendLocal, Fallback: true, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &Error{Backend: models.BackendLocal, Fallback: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{
			Backend:  models.BackendLocal,
			Fallback: true,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)),
		}
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, &Error{
			Backend:  models.BackendLocal,
			Fallback: true,
			Err:      fmt.Errorf("decode response: %w", err),
		}
	}

	return &Reply{
		Text:    gen.Response,
		Backend: models.BackendLocal,
		Model:   l.model,
	}, nil
}

// Ping checks that the runtime answers at all.
func (l *Local) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
