package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webintel"
)

// Ensure LoggingAgent implements webintel.Agent.
var _ webintel.Agent = (*LoggingAgent)(nil)

// LoggingAgent wraps an Agent with per-query logging.
type LoggingAgent struct {
	next   webintel.Agent
	logger *slog.Logger
}

// NewLoggingAgent creates a new LoggingAgent.
func NewLoggingAgent(next webintel.Agent, logger *slog.Logger) *LoggingAgent {
	return &LoggingAgent{next: next, logger: logger}
}

// Name delegates to the wrapped agent.
func (a *LoggingAgent) Name() string {
	return a.next.Name()
}

// Query delegates to the wrapped agent and logs the operation.
func (a *LoggingAgent) Query(ctx context.Context, question string, qc webintel.QueryContext) (result *webintel.QueryResult, err error) {
	defer func(begin time.Time) {
		tokens := 0
		if result != nil {
			tokens = result.TokensUsed
		}
		a.logger.Info("query",
			"agent", a.next.Name(),
			"tokens", tokens,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Query(ctx, question, qc)
}

// StreamQuery delegates to the wrapped agent and logs the operation,
// counting the fragments delivered to the callback.
func (a *LoggingAgent) StreamQuery(ctx context.Context, question string, qc webintel.QueryContext, fn webintel.StreamFunc) (err error) {
	fragments := 0
	defer func(begin time.Time) {
		a.logger.Info("stream query",
			"agent", a.next.Name(),
			"fragments", fragments,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.StreamQuery(ctx, question, qc, func(fragment string) error {
		fragments++
		return fn(fragment)
	})
}

// ValidateConnection delegates to the wrapped agent and logs the outcome.
func (a *LoggingAgent) ValidateConnection(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		a.logger.Info("validate connection",
			"agent", a.next.Name(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.ValidateConnection(ctx)
}
