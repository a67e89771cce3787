// Package ollama provides a webintel.Agent backed by a locally hosted
// Ollama server. It speaks the /api/generate REST endpoint directly; no
// client library is involved.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/webintel"
)

// Defaults for a stock local Ollama install.
const (
	DefaultHost        = "http://localhost:11434"
	DefaultModel       = "deepseek-r1:14b"
	DefaultTemperature = 0.7
)

const (
	// queryTimeout bounds a blocking generation, including reading the
	// response body. Local models routinely take a minute or more on
	// first load.
	queryTimeout = 120 * time.Second

	// streamTimeout bounds a full streaming generation. Longer than the
	// blocking timeout since fragments keep the caller informed.
	streamTimeout = 300 * time.Second

	// maxLineSize caps a single NDJSON line from the streaming endpoint.
	maxLineSize = 1024 * 1024
)

// Ensure Agent implements webintel.Agent at compile time.
var _ webintel.Agent = (*Agent)(nil)

// Agent implements webintel.Agent against an Ollama server.
type Agent struct {
	host        string
	model       string
	temperature float64
	client      *http.Client
}

// Option configures an Agent.
type Option func(*Agent)

// WithHost sets the Ollama server base URL.
func WithHost(host string) Option {
	return func(a *Agent) { a.host = strings.TrimSuffix(host, "/") }
}

// WithModel sets the model passed to /api/generate.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(a *Agent) { a.temperature = temperature }
}

// WithHTTPClient sets the HTTP client used for all requests. Per-request
// timeouts are applied on a copy, so the client's own Timeout is ignored
// for generation calls.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Agent) { a.client = client }
}

// NewAgent creates an Agent with default local-server settings.
func NewAgent(opts ...Option) *Agent {
	a := &Agent{
		host:        DefaultHost,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the backend's registry name.
func (a *Agent) Name() string {
	return "ollama"
}

// generateRequest is the request body for /api/generate.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse is one /api/generate response object. The blocking
// endpoint returns a single object; the streaming endpoint returns one
// object per line.
type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	TotalDuration   int64  `json:"total_duration"`
	LoadDuration    int64  `json:"load_duration"`
}

// Query performs one blocking generation.
func (a *Agent) Query(ctx context.Context, question string, qc webintel.QueryContext) (*webintel.QueryResult, error) {
	resp, err := a.generate(ctx, question, qc, false, queryTimeout)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, webintel.Errorf(webintel.EAGENT, "decoding ollama response: %v", err)
	}
	if data.Response == "" {
		return nil, webintel.Errorf(webintel.EAGENT, "empty response from ollama")
	}

	return &webintel.QueryResult{
		Response:     data.Response,
		ModelUsed:    a.model,
		TokensUsed:   data.EvalCount,
		FinishReason: data.DoneReason,
		Metadata: map[string]any{
			"total_duration":    data.TotalDuration,
			"load_duration":     data.LoadDuration,
			"prompt_eval_count": data.PromptEvalCount,
		},
		Timestamp: time.Now(),
	}, nil
}

// StreamQuery streams response fragments to fn as the server produces
// them. Lines that fail to parse are skipped; the stream ends at the
// server's done marker. An error returned by fn stops consumption and is
// returned unchanged.
func (a *Agent) StreamQuery(ctx context.Context, question string, qc webintel.QueryContext, fn webintel.StreamFunc) error {
	resp, err := a.generate(ctx, question, qc, true, streamTimeout)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}

		if chunk.Response != "" {
			if err := fn(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return webintel.Errorf(webintel.EAGENT, "reading ollama stream: %v", err)
	}

	return nil
}

// ValidateConnection reports whether the Ollama server is reachable.
func (a *Agent) ValidateConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.host+"/api/tags", nil)
	if err != nil {
		return webintel.Errorf(webintel.EAGENT, "building request: %v", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return webintel.Errorf(webintel.EAGENT, "ollama unreachable at %s: %v", a.host, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return webintel.Errorf(webintel.EAGENT, "ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// generate posts a generation request and returns the response once the
// status is confirmed OK. The timeout covers the whole exchange, body
// included, so callers can read the body without racing a cancel.
func (a *Agent) generate(ctx context.Context, question string, qc webintel.QueryContext, stream bool, timeout time.Duration) (*http.Response, error) {
	prompt := webintel.BuildPrompt(question, webintel.PrepareContext(qc.Content, qc.MaxTokens), qc.ConversationHistory)

	body, err := json.Marshal(generateRequest{
		Model:   a.model,
		Prompt:  prompt,
		Stream:  stream,
		Options: map[string]any{"temperature": a.temperature},
	})
	if err != nil {
		return nil, webintel.Errorf(webintel.EAGENT, "encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, webintel.Errorf(webintel.EAGENT, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := *a.client
	client.Timeout = timeout

	resp, err := client.Do(req)
	if err != nil {
		return nil, webintel.Errorf(webintel.EAGENT, "ollama request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, webintel.Errorf(webintel.EAGENT, "ollama API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(errText)))
	}

	return resp, nil
}
