package llmclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// Claude is a Provider backed by Anthropic's Messages API. One instance is
// built per pipeline role (scoring, writing, selection, research), each
// carrying its own circuit breaker so a struggling scoring model can't trip
// the writer's breaker too.
type Claude struct {
	client         anthropic.Client
	model          string
	maxTokens      int64
	name           string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClaude builds a role-scoped Claude provider.
func NewClaude(apiKey, name, model string, maxTokens int64, breakerCfg circuitbreaker.Config, retryCfg retry.Config) *Claude {
	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          model,
		maxTokens:      maxTokens,
		name:           name,
		circuitBreaker: circuitbreaker.New(breakerCfg),
		retryConfig:    retryCfg,
	}
}

// Generate calls the model with systemPrompt/userPrompt, wrapped in retry
// and circuit-breaker logic.
func (c *Claude) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx, systemPrompt, userPrompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm circuit breaker open, request rejected",
					slog.String("provider", c.name),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("%s unavailable: circuit breaker open", c.name)
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s generate failed after retries: %w", c.name, retryErr)
	}
	return result, nil
}

func (c *Claude) doGenerate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "llm call failed",
			slog.String("provider", c.name), slog.Duration("duration", duration), slog.String("error", err.Error()))
		return "", fmt.Errorf("%s api error: %w", c.name, err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("%s returned empty response", c.name)
	}
	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("%s returned unexpected response type", c.name)
	}
	slog.InfoContext(ctx, "llm call completed",
		slog.String("provider", c.name), slog.Duration("duration", duration), slog.Int("response_length", len(block.Text)))
	return block.Text, nil
}
