// Package llmclient provides the LLM-backed providers behind the Scorer,
// Synthesizer, Component Selector, and Component Generator stages. Each
// stage builds its own prompts and parses its own JSON; this package only
// owns the reliability envelope (retry, circuit breaker) around the raw
// chat-completion call.
package llmclient

import "context"

// Provider generates a free-form completion from a system and user prompt.
// Every pipeline stage that calls an LLM does so through this interface, so
// Claude, OpenAI, and a deterministic Noop stand-in are interchangeable.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
