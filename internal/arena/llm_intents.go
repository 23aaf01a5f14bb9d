package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cafegames/elimination-arena/internal/infra/ai"
)

const (
	intentTemperature = 0.5
	intentMaxTokens   = 400
)

// LLMIntentCollector asks a participant's own model for its economic moves,
// given the briefing the engine assembled. Anything that does not parse is
// dropped; the participant simply sits the economy out this round.
type LLMIntentCollector struct {
	provider ai.LLMProvider
	model    string
}

// NewLLMIntentCollector wires a provider and model to the IntentCollector
// contract.
func NewLLMIntentCollector(provider ai.LLMProvider, model string) *LLMIntentCollector {
	return &LLMIntentCollector{provider: provider, model: model}
}

// Collect requests economic intents as a JSON array.
func (c *LLMIntentCollector) Collect(ctx context.Context, participantID, briefing string) ([]Intent, error) {
	prompt := briefing + `

Decide your economic actions for this round. Respond ONLY with a JSON array,
empty if you take no action. Allowed entries:

  {"kind": "self_rescue"}
  {"kind": "resurrect", "target_id": "Name"}
  {"kind": "donate", "target_id": "Name", "amount": 500}
  {"kind": "loan", "target_id": "Name", "amount": 1000, "interest_rate": 0.2, "duration_rounds": 5}`

	resp, err := c.provider.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   intentMaxTokens,
		Temperature: intentTemperature,
		Model:       c.model,
	})
	if err != nil {
		return nil, mapProviderError(participantID, err)
	}

	intents, err := ParseIntents(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", participantID, err)
	}
	for i := range intents {
		intents[i].ActorID = participantID
	}
	return intents, nil
}

// ParseIntents extracts intents from raw model output, tolerating code
// fences and skipping entries with unknown kinds.
func ParseIntents(raw string) ([]Intent, error) {
	cleaned := strings.TrimSpace(raw)
	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var parsed []Intent
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("unparseable intents %q: %w", raw, err)
	}

	valid := parsed[:0]
	for _, in := range parsed {
		switch in.Kind {
		case IntentSelfRescue, IntentResurrect, IntentDonate, IntentLoan:
			valid = append(valid, in)
		}
	}
	return valid, nil
}

var _ IntentCollector = (*LLMIntentCollector)(nil)
