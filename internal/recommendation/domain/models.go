package domain

import "context"

// Recommendation answer sources.
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule_based"
)

// Result is the recommendation response payload.
type Result struct {
	Recommendation string `json:"recommendation"`
	Source         string `json:"source"`
}

// Completer produces a completion for a chat-style prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Configured reports whether the upstream provider has credentials.
	Configured() bool
}

// Service answers natural-language questions over the tenant's segment data.
type Service interface {
	// Recommend consumes one quota unit, then answers via the LLM with a
	// rule-based fallback. Upstream failure never surfaces to the caller.
	Recommend(ctx context.Context, tenantID, query string) (*Result, error)
}
