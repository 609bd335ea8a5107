package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ration-ai/ration/pkg/budget"
	"github.com/ration-ai/ration/pkg/models"
)

// maxOutputTokens caps every paid completion.
const maxOutputTokens = 2000

// Rates price paid-API tokens in dollars per token.
type Rates struct {
	Input  float64
	Output float64
}

// Paid calls the Anthropic Messages API and records the cost of every
// successful call to the ledger. Failed calls never touch the ledger.
type Paid struct {
	client anthropic.Client
	model  string
	rates  Rates
	ledger budget.Ledger
	hasKey bool
}

// NewPaid builds the paid client. With an empty key, Generate fails
// immediately without a network call. Retries are disabled: the only
// failure handling is the caller's single fallback hop.
func NewPaid(apiKey, model string, rates Rates, ledger budget.Ledger, opts ...option.RequestOption) *Paid {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Paid{
		client: anthropic.NewClient(opts...),
		model:  model,
		rates:  rates,
		ledger: ledger,
		hasKey: apiKey != "",
	}
}

// Name implements Client.
func (p *Paid) Name() models.Backend { return models.BackendPaid }

// Generate sends the prompt as a single user message. Token counts
// come from the API's usage block, with a chars/4 estimate as the
// fallback when usage is missing.
func (p *Paid) Generate(ctx context.Context, prompt string) (*Reply, error) {
	if !p.hasKey {
		return nil, &Error{Backend: models.BackendPaid, Fallback: true, Err: ErrNoCredential}
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxOutputTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, &Error{Backend: models.BackendPaid, Fallback: true, Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)
	if inputTokens == 0 {
		inputTokens = estimateTokens(prompt)
	}
	if outputTokens == 0 {
		outputTokens = estimateTokens(text.String())
	}

	cost := float64(inputTokens)*p.rates.Input + float64(outputTokens)*p.rates.Output

	// The completion already happened, so a ledger failure here is not
	// a fallback case. Retrying on the other backend would answer the
	// prompt twice and still charge for this call.
	if _, err := p.ledger.Record(cost); err != nil {
		return nil, fmt.Errorf("record spend: %w", err)
	}

	return &Reply{
		Text:         text.String(),
		Backend:      models.BackendPaid,
		Model:        p.model,
		Cost:         cost,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}
