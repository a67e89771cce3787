// Package gemini provides a webintel.Agent backed by the Google Gemini
// API. It is the hosted alternative to the local ollama backend.
package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/fwojciec/webintel"
)

// DefaultModel is used unless WithModel overrides it.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature favors grounded answers over creative ones.
const DefaultTemperature = 0.4

// Ensure Agent implements webintel.Agent at compile time.
var _ webintel.Agent = (*Agent)(nil)

// Agent implements webintel.Agent using Google Gemini.
type Agent struct {
	client      *genai.Client
	model       string
	temperature float32
}

// Option configures an Agent.
type Option func(*Agent)

// WithModel sets the Gemini model name.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(a *Agent) { a.temperature = float32(temperature) }
}

// NewAgent creates an Agent on an existing genai client.
func NewAgent(client *genai.Client, opts ...Option) *Agent {
	a := &Agent{
		client:      client,
		model:       DefaultModel,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the backend's registry name.
func (a *Agent) Name() string {
	return "gemini"
}

// Query performs one blocking generation.
func (a *Agent) Query(ctx context.Context, question string, qc webintel.QueryContext) (*webintel.QueryResult, error) {
	result, err := a.client.Models.GenerateContent(ctx, a.model, a.contents(question, qc), a.config())
	if err != nil {
		return nil, webintel.Errorf(webintel.EAGENT, "gemini query failed: %v", err)
	}
	if result == nil || result.Text() == "" {
		return nil, webintel.Errorf(webintel.EAGENT, "empty response from gemini")
	}

	qr := &webintel.QueryResult{
		Response:  result.Text(),
		ModelUsed: a.model,
		Timestamp: time.Now(),
	}
	if len(result.Candidates) > 0 {
		qr.FinishReason = string(result.Candidates[0].FinishReason)
	}
	if result.UsageMetadata != nil {
		qr.TokensUsed = int(result.UsageMetadata.CandidatesTokenCount)
		qr.Metadata = map[string]any{
			"prompt_token_count": int(result.UsageMetadata.PromptTokenCount),
			"total_token_count":  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return qr, nil
}

// StreamQuery streams response fragments to fn as the model produces
// them. An error returned by fn stops consumption and is returned
// unchanged.
func (a *Agent) StreamQuery(ctx context.Context, question string, qc webintel.QueryContext, fn webintel.StreamFunc) error {
	for result, err := range a.client.Models.GenerateContentStream(ctx, a.model, a.contents(question, qc), a.config()) {
		if err != nil {
			return webintel.Errorf(webintel.EAGENT, "gemini stream failed: %v", err)
		}

		fragment := result.Text()
		if fragment == "" {
			continue
		}
		if err := fn(fragment); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConnection probes the API with a minimal token count request.
func (a *Agent) ValidateConnection(ctx context.Context) error {
	_, err := a.client.Models.CountTokens(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)}, nil)
	if err != nil {
		return webintel.Errorf(webintel.EAGENT, "gemini unreachable: %v", err)
	}
	return nil
}

// contents assembles the user turn for a query. The system instruction
// travels in the generation config, not the user turn.
func (a *Agent) contents(question string, qc webintel.QueryContext) []*genai.Content {
	prompt := webintel.BuildUserPrompt(question, webintel.PrepareContext(qc.Content, qc.MaxTokens), qc.ConversationHistory)
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

func (a *Agent) config() *genai.GenerateContentConfig {
	return BuildConfig(a.temperature)
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(temperature float32) *genai.GenerateContentConfig {
	temp := temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: webintel.SystemInstruction}},
		},
		Temperature: &temp,
	}
}
