package webintel

import "time"

// QueryContext carries the assembled input for a single model invocation.
// It is constructed fresh per call and never persisted.
type QueryContext struct {
	Content             string
	MaxTokens           int
	ConversationHistory []Turn
	Metadata            map[string]any
}

// Validate returns an error if the context cannot be dispatched.
func (qc *QueryContext) Validate() error {
	if qc.Content == "" {
		return Errorf(EINVALID, "query context content required")
	}
	if qc.MaxTokens <= 0 {
		return Errorf(EINVALID, "query context max tokens must be positive")
	}
	return nil
}

// QueryResult carries the outcome of a single model invocation. It is
// returned to the caller and optionally folded into a Session.
type QueryResult struct {
	Response     string
	ModelUsed    string
	TokensUsed   int    // 0 = unknown
	FinishReason string // empty = unknown
	Metadata     map[string]any
	Timestamp    time.Time
}

// Validate returns an error if the result is malformed.
func (r *QueryResult) Validate() error {
	if r.Response == "" {
		return Errorf(EINVALID, "query result response required")
	}
	return nil
}
