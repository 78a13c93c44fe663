package llmclient

import "context"

// Noop is a deterministic stand-in Provider used in local development and
// tests when no API key is configured. It never calls out over the
// network.
type Noop struct {
	Response string
}

// Generate returns n.Response unconditionally.
func (n *Noop) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return n.Response, nil
}
