// Package ai - openai.go
// Adapter for the OpenAI chat completions API and every OpenAI-compatible
// endpoint (xAI Grok, DeepSeek) — only the base URL and model differ.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

// Well-known OpenAI-compatible endpoints.
const (
	OpenAIBaseURL   = "https://api.openai.com/v1/chat/completions"
	XAIBaseURL      = "https://api.x.ai/v1/chat/completions"
	DeepSeekBaseURL = "https://api.deepseek.com/chat/completions"
)

// OpenAIProvider implements LLMProvider for any OpenAI-compatible API.
type OpenAIProvider struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	usageStats UsageStats
	budgetGate *BudgetGate
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

// NewOpenAIProvider creates an adapter for an OpenAI-compatible endpoint.
func NewOpenAIProvider(name, apiKey, baseURL, model string, budgetGate *BudgetGate) *OpenAIProvider {
	return &OpenAIProvider{
		name:       name,
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		budgetGate: budgetGate,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the API key is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Complete sends a chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("%s API key not configured: %w", p.name, ErrRejected)
	}

	estimatedCost := p.estimateCost(req)
	if !p.budgetGate.CanSpend(estimatedCost) {
		return nil, fmt.Errorf("budget limit exceeded: %w", ErrRejected)
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	oaReq := openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(oaReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w: %v", p.name, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		class := ErrUnavailable
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			class = ErrRejected
		}
		return nil, fmt.Errorf("%s error (status %d): %w: %s", p.name, resp.StatusCode, class, string(respBody))
	}

	var oaResp openAIResponse
	if err := json.Unmarshal(respBody, &oaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w: %v", ErrUnavailable, err)
	}

	if len(oaResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned: %w", ErrUnavailable)
	}

	actualCost := p.calculateCost(oaResp.Usage.TotalTokens)
	p.budgetGate.RecordSpend(actualCost)
	p.usageStats.TotalRequests++
	p.usageStats.TotalTokens += oaResp.Usage.TotalTokens
	p.usageStats.TotalCostUSD += actualCost
	metrics.Get().RecordLLM(oaResp.Usage.TotalTokens, actualCost, latency)

	return &CompletionResponse{
		Content:      oaResp.Choices[0].Message.Content,
		Model:        oaResp.Model,
		PromptTokens: oaResp.Usage.PromptTokens,
		OutputTokens: oaResp.Usage.CompletionTokens,
		TotalTokens:  oaResp.Usage.TotalTokens,
		Latency:      latency,
		FinishReason: oaResp.Choices[0].FinishReason,
	}, nil
}

// estimateCost estimates cost before making a request.
func (p *OpenAIProvider) estimateCost(req CompletionRequest) float64 {
	return p.calculateCost(2000 + req.MaxTokens)
}

// calculateCost computes actual cost based on tokens.
func (p *OpenAIProvider) calculateCost(tokens int) float64 {
	// GPT-4o-class blended rate
	return float64(tokens) * 0.0000075
}

// GetUsageStats returns current usage statistics.
func (p *OpenAIProvider) GetUsageStats() UsageStats {
	p.usageStats.BudgetRemaining = p.budgetGate.MonthlyLimitUSD - p.budgetGate.CurrentMonthSpend
	return p.usageStats
}

// Ensure OpenAIProvider implements LLMProvider
var _ LLMProvider = (*OpenAIProvider)(nil)
