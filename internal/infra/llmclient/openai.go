package llmclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// OpenAI is a Provider backed by OpenAI's chat completion API. It is the
// designated fallback provider: the Fallback wrapper degrades to it whenever
// the primary Claude provider returns an error, including a circuit-breaker
// rejection.
type OpenAI struct {
	client         *openai.Client
	model          string
	name           string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewOpenAI builds a role-scoped OpenAI provider.
func NewOpenAI(apiKey, name, model string, breakerCfg circuitbreaker.Config, retryCfg retry.Config) *OpenAI {
	return &OpenAI{
		client:         openai.NewClient(apiKey),
		model:          model,
		name:           name,
		circuitBreaker: circuitbreaker.New(breakerCfg),
		retryConfig:    retryCfg,
	}
}

// Generate calls the model with systemPrompt/userPrompt, wrapped in retry
// and circuit-breaker logic.
func (o *OpenAI) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, systemPrompt, userPrompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm circuit breaker open, request rejected",
					slog.String("provider", o.name),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("%s unavailable: circuit breaker open", o.name)
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s generate failed after retries: %w", o.name, retryErr)
	}
	return result, nil
}

func (o *OpenAI) doGenerate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "llm call failed",
			slog.String("provider", o.name), slog.Duration("duration", duration), slog.String("error", err.Error()))
		return "", fmt.Errorf("%s api error: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned empty response", o.name)
	}
	content := resp.Choices[0].Message.Content
	slog.InfoContext(ctx, "llm call completed",
		slog.String("provider", o.name), slog.Duration("duration", duration), slog.Int("response_length", len(content)))
	return content, nil
}
