package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	model          = "claude-3-haiku-20240307"
	maxTokens      = 400
)

// Client rewrites structured alerts as short farmer-friendly messages.
type Client interface {
	PhraseAlert(ctx context.Context, alert models.PredictiveAlert) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Anthropic client. An empty baseURL targets
// the public API.
func NewClient(apiKey, baseURL string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You write WhatsApp notifications for fish farmers.
You receive one alert as JSON. Rewrite it as a short message in French:
- at most 4 sentences, plain words, no markdown;
- keep every number, unit ID and timeframe exactly as given;
- mention the recommended actions in the given order and add no new advice.
Reply with the message text only.`

// alertFacts is the part of an alert the model is allowed to see.
type alertFacts struct {
	UnitID          string   `json:"unit_id"`
	Severity        string   `json:"severity"`
	Title           string   `json:"title"`
	Message         string   `json:"message"`
	Timeframe       string   `json:"timeframe"`
	Confidence      float64  `json:"confidence"`
	EstimatedImpact float64  `json:"estimated_impact"`
	Actions         []string `json:"actions"`
}

func (c *anthropicClient) PhraseAlert(ctx context.Context, alert models.PredictiveAlert) (string, error) {
	facts := alertFacts{
		UnitID:          alert.UnitID,
		Severity:        string(alert.Severity),
		Title:           alert.Title,
		Message:         alert.Message,
		Timeframe:       alert.Timeframe,
		Confidence:      alert.Confidence,
		EstimatedImpact: alert.EstimatedImpact,
	}
	for _, a := range alert.Actions {
		facts.Actions = append(facts.Actions, a.Text)
	}

	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("encode alert: %w", err)
	}

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: string(factsJSON)}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	text := strings.TrimSpace(respBody.Content[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty response from ai")
	}
	return text, nil
}
