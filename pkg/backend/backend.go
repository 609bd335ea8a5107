package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/ration-ai/ration/pkg/models"
)

// ErrNoCredential means the paid backend has no API key configured.
var ErrNoCredential = errors.New("no API key configured")

// Client generates a completion for a single prompt.
type Client interface {
	Name() models.Backend
	Generate(ctx context.Context, prompt string) (*Reply, error)
}

// Reply is a successful completion from one backend.
type Reply struct {
	Text         string
	Backend      models.Backend
	Model        string
	Cost         float64
	InputTokens  int
	OutputTokens int
}

// Error is a failed backend call. Fallback reports whether the caller
// should try the other backend once.
type Error struct {
	Backend  models.Backend
	Fallback bool
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// estimateTokens approximates a token count at four characters per
// token. Used only when the API reports no usage.
func estimateTokens(s string) int {
	return len(s) / 4
}
