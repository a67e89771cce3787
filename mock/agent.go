package mock

import (
	"context"

	"github.com/fwojciec/webintel"
)

var _ webintel.Agent = (*Agent)(nil)

// Agent is a mock implementation of webintel.Agent. An unset NameFn
// reports "mock"; an unset ValidateConnectionFn reports success.
type Agent struct {
	NameFn               func() string
	QueryFn              func(ctx context.Context, question string, qc webintel.QueryContext) (*webintel.QueryResult, error)
	StreamQueryFn        func(ctx context.Context, question string, qc webintel.QueryContext, fn webintel.StreamFunc) error
	ValidateConnectionFn func(ctx context.Context) error
}

func (a *Agent) Name() string {
	if a.NameFn == nil {
		return "mock"
	}
	return a.NameFn()
}

func (a *Agent) Query(ctx context.Context, question string, qc webintel.QueryContext) (*webintel.QueryResult, error) {
	return a.QueryFn(ctx, question, qc)
}

func (a *Agent) StreamQuery(ctx context.Context, question string, qc webintel.QueryContext, fn webintel.StreamFunc) error {
	return a.StreamQueryFn(ctx, question, qc, fn)
}

func (a *Agent) ValidateConnection(ctx context.Context) error {
	if a.ValidateConnectionFn == nil {
		return nil
	}
	return a.ValidateConnectionFn(ctx)
}
