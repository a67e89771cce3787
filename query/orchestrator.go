// Package query coordinates an agent and a storage backend to answer
// questions about stored content. It is the high-level API the CLI
// commands use.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/webintel"
)

// DefaultMaxTokens is the context budget used unless WithMaxTokens
// overrides it.
const DefaultMaxTokens = 20000

// historyWindow is how many prior messages a session contributes to the
// next query.
const historyWindow = 5

// Orchestrator answers questions by combining stored content, optional
// conversation history, and an agent backend.
type Orchestrator struct {
	agent     webintel.Agent
	storage   webintel.Storage
	maxTokens int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTokens sets the context token budget for queries.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// NewOrchestrator creates an Orchestrator over the given agent and
// storage.
func NewOrchestrator(agent webintel.Agent, storage webintel.Storage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agent:     agent,
		storage:   storage,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Query answers a prompt against the content at sourcePath. When sessionID
// is non-empty the session's recent history seeds the query, and the
// exchange is appended to the session and persisted after the agent
// succeeds. Failures leave the session untouched.
func (o *Orchestrator) Query(ctx context.Context, prompt, sourcePath, sessionID string) (*webintel.QueryResult, error) {
	session, qc, err := o.prepare(ctx, sourcePath, sessionID)
	if err != nil {
		return nil, orchestrationError(err)
	}

	result, err := o.agent.Query(ctx, prompt, qc)
	if err != nil {
		return nil, orchestrationError(err)
	}

	if err := o.commit(ctx, session, sourcePath, prompt, result.Response); err != nil {
		return nil, orchestrationError(err)
	}

	return result, nil
}

// StreamQuery answers a prompt as a fragment stream forwarded to fn. The
// response is accumulated locally and committed to the session only after
// the whole stream succeeds; a mid-stream failure or an error from fn
// leaves the session untouched. An error from fn is returned unchanged.
func (o *Orchestrator) StreamQuery(ctx context.Context, prompt, sourcePath, sessionID string, fn webintel.StreamFunc) (*webintel.QueryResult, error) {
	session, qc, err := o.prepare(ctx, sourcePath, sessionID)
	if err != nil {
		return nil, orchestrationError(err)
	}

	var response strings.Builder
	var consumerErr error
	streamErr := o.agent.StreamQuery(ctx, prompt, qc, func(fragment string) error {
		if err := fn(fragment); err != nil {
			consumerErr = err
			return err
		}
		response.WriteString(fragment)
		return nil
	})
	if streamErr != nil {
		if consumerErr != nil {
			return nil, consumerErr
		}
		return nil, orchestrationError(streamErr)
	}

	if response.Len() == 0 {
		return nil, webintel.Errorf(webintel.EAGENT, "stream produced no response")
	}

	if err := o.commit(ctx, session, sourcePath, prompt, response.String()); err != nil {
		return nil, orchestrationError(err)
	}

	return &webintel.QueryResult{
		Response:  response.String(),
		ModelUsed: o.agent.Name(),
		Metadata:  qc.Metadata,
		Timestamp: time.Now(),
	}, nil
}

// prepare loads the source content and, when a session id is given, the
// session and its recent history, then assembles the query context.
func (o *Orchestrator) prepare(ctx context.Context, sourcePath, sessionID string) (*webintel.Session, webintel.QueryContext, error) {
	content, err := o.storage.LoadContent(ctx, sourcePath)
	if err != nil {
		return nil, webintel.QueryContext{}, err
	}

	var session *webintel.Session
	var history []webintel.Turn
	if sessionID != "" {
		session, err = o.storage.LoadSession(ctx, sessionID)
		if err != nil {
			return nil, webintel.QueryContext{}, err
		}
		history = session.RecentMessages(historyWindow)
	}

	qc := webintel.QueryContext{
		Content:             content,
		MaxTokens:           o.maxTokens,
		ConversationHistory: history,
		Metadata: map[string]any{
			"source_path": sourcePath,
			"session_id":  sessionID,
		},
	}
	if err := qc.Validate(); err != nil {
		return nil, webintel.QueryContext{}, err
	}

	return session, qc, nil
}

// commit folds a successful exchange into the session and persists it.
// A nil session means the query ran without one.
func (o *Orchestrator) commit(ctx context.Context, session *webintel.Session, sourcePath, prompt, response string) error {
	if session == nil {
		return nil
	}
	session.AddMessage(webintel.RoleUser, prompt, nil)
	session.AddMessage(webintel.RoleAssistant, response, nil)
	session.ContextSource = sourcePath
	return o.storage.SaveSession(ctx, session)
}

// orchestrationError passes storage and agent errors through unchanged and
// wraps anything else as an agent failure, so callers observe exactly two
// error kinds from this package.
func orchestrationError(err error) error {
	switch webintel.ErrorCode(err) {
	case webintel.ESTORAGE, webintel.EAGENT:
		return err
	}
	return webintel.Errorf(webintel.EAGENT, "query orchestration failed: %v", err)
}
