// Package llm provides the minimal LLM surface the learning pipeline needs:
// a single synchronous text completion per call site, plus a utility for
// pulling a structured JSON payload out of a free-text reply.
package llm

import "context"

// Client is the minimal interface the pipeline uses to call an LLM. Each
// call site supplies its own model identifier and output token bound.
type Client interface {
	Complete(ctx context.Context, model string, maxTokens int, prompt string) (string, error)
}
