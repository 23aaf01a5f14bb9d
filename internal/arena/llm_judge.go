package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cafegames/elimination-arena/internal/infra/ai"
)

const (
	judgeTemperature = 0.3
	judgeMaxTokens   = 500
)

// LLMJudge asks a single strong model for a best/worst verdict over the
// round's responses. A verdict that cannot be parsed or that names a
// participant who did not respond is an error; the engine degrades the round
// to "no change".
type LLMJudge struct {
	provider ai.LLMProvider
	model    string
}

// NewLLMJudge wires a provider and model to the Judge contract.
func NewLLMJudge(provider ai.LLMProvider, model string) *LLMJudge {
	return &LLMJudge{provider: provider, model: model}
}

// Judge selects the best and worst response.
func (j *LLMJudge) Judge(ctx context.Context, challenge string, responses map[string]string) (Verdict, error) {
	if len(responses) < 2 {
		return Verdict{}, fmt.Errorf("need at least two responses to judge, got %d", len(responses))
	}

	prompt, err := buildJudgePrompt(challenge, responses)
	if err != nil {
		return Verdict{}, err
	}

	resp, err := j.provider.Complete(ctx, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		MaxTokens:   judgeMaxTokens,
		Temperature: judgeTemperature,
		Model:       j.model,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge call failed: %w", err)
	}

	verdict, err := ParseVerdict(resp.Content)
	if err != nil {
		return Verdict{}, err
	}
	if err := verdict.ValidateAgainst(responses); err != nil {
		return Verdict{}, err
	}
	return verdict, nil
}

func buildJudgePrompt(challenge string, responses map[string]string) (string, error) {
	// json.Marshal sorts map keys, so the prompt is stable across runs
	blob, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal responses: %w", err)
	}

	return fmt.Sprintf(`You are judging AI responses to this challenge:
%q

Here are the responses:

%s

Your task:
1. Identify the BEST response (most creative, profound, well-crafted)
2. Identify the WORST response (weakest, least effective, or failed to complete)

Respond ONLY with a JSON object:
{
  "best": "ParticipantName",
  "worst": "ParticipantName",
  "reasoning": "Brief explanation"
}`, challenge, string(blob)), nil
}

// ParseVerdict extracts a Verdict from raw model output, tolerating markdown
// code fences around the JSON.
func ParseVerdict(raw string) (Verdict, error) {
	cleaned := strings.TrimSpace(raw)
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var v Verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return Verdict{}, fmt.Errorf("unparseable verdict %q: %w", raw, err)
	}
	if v.Best == "" || v.Worst == "" {
		return Verdict{}, fmt.Errorf("verdict missing best or worst: %q", raw)
	}
	return v, nil
}

// ValidateAgainst checks the verdict names two distinct participants who
// actually responded this round.
func (v Verdict) ValidateAgainst(responses map[string]string) error {
	if _, ok := responses[v.Best]; !ok {
		return fmt.Errorf("verdict best %q did not respond this round", v.Best)
	}
	if _, ok := responses[v.Worst]; !ok {
		return fmt.Errorf("verdict worst %q did not respond this round", v.Worst)
	}
	if v.Best == v.Worst {
		return fmt.Errorf("verdict names %q as both best and worst", v.Best)
	}
	return nil
}

var _ Judge = (*LLMJudge)(nil)
