// Package config loads the pipeline's external configuration: LLM provider
// credentials and the static feed descriptor list.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ProviderConfig holds the credentials and tuning for one role's LLM calls
// (scoring, writing, selection, research all get their own Claude instance;
// OpenAI backs every role as the fallback provider whenever the Claude
// call for that role fails).
type ProviderConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	MaxTokens       int64
}

// LoadProviderConfig reads LLM credentials from the environment. Unlike the
// worker's own ConfigLoadResult fallback strategy, a missing API key here is
// fatal: without it no pipeline stage can call an LLM, so the worker should
// fail to start rather than run a crippled cycle.
func LoadProviderConfig() (*ProviderConfig, error) {
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	if anthropicKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	maxTokens, err := strconv.ParseInt(getEnvOrDefault("ANTHROPIC_MAX_TOKENS", "4096"), 10, 64)
	if err != nil || maxTokens <= 0 {
		return nil, fmt.Errorf("ANTHROPIC_MAX_TOKENS must be a positive integer")
	}

	return &ProviderConfig{
		AnthropicAPIKey: anthropicKey,
		AnthropicModel:  getEnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		OpenAIAPIKey:    openaiKey,
		OpenAIModel:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		MaxTokens:       maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
