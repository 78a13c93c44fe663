package llmclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Fallback chains two providers: primary is tried first, and secondary is
// tried only when primary returns an error (including a circuit-breaker
// rejection). This is the graceful provider-to-provider degradation the
// spec calls for, implemented once here rather than duplicated per stage.
type Fallback struct {
	primary   Provider
	secondary Provider
}

// NewFallback builds a Fallback provider.
func NewFallback(primary, secondary Provider) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Generate tries primary, falling back to secondary on any error.
func (f *Fallback) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	result, err := f.primary.Generate(ctx, systemPrompt, userPrompt)
	if err == nil {
		return result, nil
	}
	slog.Warn("primary llm provider failed, falling back", slog.String("error", err.Error()))

	result, fbErr := f.secondary.Generate(ctx, systemPrompt, userPrompt)
	if fbErr != nil {
		return "", fmt.Errorf("primary failed (%w) and fallback failed: %w", err, fbErr)
	}
	return result, nil
}

// ErrAllProvidersFailed is returned by call sites that need to distinguish
// an exhausted fallback chain from a single-provider failure.
var ErrAllProvidersFailed = errors.New("all llm providers failed")
