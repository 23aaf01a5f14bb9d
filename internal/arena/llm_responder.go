package arena

import (
	"context"
	"errors"
	"fmt"

	"github.com/cafegames/elimination-arena/internal/domain/degradation"
	"github.com/cafegames/elimination-arena/internal/infra/ai"
)

// LLMResponder produces responses through one LLM provider. Each participant
// gets its own responder so provider-specific quirks stay behind the
// interface.
type LLMResponder struct {
	provider ai.LLMProvider
	model    string
}

// NewLLMResponder wires a provider and a model to the Responder contract.
func NewLLMResponder(provider ai.LLMProvider, model string) *LLMResponder {
	return &LLMResponder{provider: provider, model: model}
}

// Respond answers the challenge under the degraded resource envelope.
// The cognitive load, if any, is prepended as busywork before the challenge.
func (r *LLMResponder) Respond(ctx context.Context, participantID string, cfg degradation.Config, challenge string) (string, error) {
	prompt := challenge
	if cfg.CognitiveLoad != "" {
		prompt = cfg.CognitiveLoad + "\n\n" + challenge
	}

	resp, err := r.provider.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Model:       r.model,
	})
	if err != nil {
		return "", mapProviderError(participantID, err)
	}
	return resp.Content, nil
}

// mapProviderError folds provider failures into the two upstream classes.
func mapProviderError(participantID string, err error) error {
	if errors.Is(err, ai.ErrRejected) {
		return fmt.Errorf("%s: %w: %v", participantID, ErrUpstreamRejected, err)
	}
	return fmt.Errorf("%s: %w: %v", participantID, ErrUpstreamUnavailable, err)
}

var _ Responder = (*LLMResponder)(nil)
