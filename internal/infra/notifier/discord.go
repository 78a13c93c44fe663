package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsdigest/internal/domain/entity"

	"github.com/google/uuid"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration

	// EventBaseURL prefixes EventID to build the link embedded in the
	// notification, e.g. "https://newsdigest.example/events".
	EventBaseURL string
}

// DiscordNotifier sends published-event notifications to Discord via webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
//
// The notifier is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 0.5 requests/second with burst of 3
//     (Discord Webhook limit: 30 requests per minute = 0.5 req/s)
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3), // 0.5 req/s (30 req/min), burst of 3
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordErrorResponse represents the error response from Discord API.
type DiscordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"` // In seconds
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

// eventURL builds the link for a published event under base.
func eventURL(base, eventID string) string {
	base = strings.TrimRight(base, "/")
	return fmt.Sprintf("%s/%s", base, eventID)
}

// buildEmbedPayload creates a Discord webhook payload from a published event.
//
// The payload includes:
//   - Title: TitleAdvanced (truncated to 256 chars if needed)
//   - Description: the simple-register bullets, joined (truncated to 4096 chars + "..." if needed)
//   - URL: link to the event built from EventBaseURL
//   - Color: Discord blue (#5865F2)
//   - Footer: source count / primary image credit
//   - Timestamp: CreatedAt in RFC3339 format
func (d *DiscordNotifier) buildEmbedPayload(event *entity.PublishedEvent) DiscordWebhookPayload {
	title := event.TitleAdvanced
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	description := truncateSummary(strings.Join(event.BulletsSimple, "\n"), maxDescriptionLength, truncationSuffix)

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		URL:         eventURL(d.config.EventBaseURL, event.EventID),
		Color:       discordBlueColor,
		Footer: DiscordEmbedFooter{
			Text: fmt.Sprintf("%d sources", event.NumberOfSources),
		},
		Timestamp: event.CreatedAt.Format(time.RFC3339),
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{embed},
	}
}

// sendWebhookRequest sends a Discord webhook request for event.
//
// Error types:
//   - 429: Rate limit error (retryable, contains retry_after duration)
//   - 4xx (non-429): Client error (non-retryable)
//   - 5xx: Server error (retryable)
//   - Network error: Connection/timeout error (retryable)
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, event *entity.PublishedEvent) error {
	payload := d.buildEmbedPayload(event)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := extractRetryAfter(resp, body)
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: retryAfter,
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter extracts retry_after duration from Discord error response.
// It tries to parse from JSON body first, then falls back to Retry-After header.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var discordErr DiscordErrorResponse
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.RetryAfter > 0 {
		return time.Duration(discordErr.RetryAfter * float64(time.Second))
	}

	if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}

// sendWebhookRequestWithRetry sends a Discord webhook request with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - Base delay: 5 seconds
//   - 429 errors: Use retry_after from Discord response
//   - Server errors (5xx): one 5s backoff before the second attempt
//   - Client errors (4xx): No retry, fail immediately
func (d *DiscordNotifier) sendWebhookRequestWithRetry(ctx context.Context, event *entity.PublishedEvent) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.sendWebhookRequest(ctx, event)

		if err == nil {
			slog.Info("Discord notification successful",
				slog.String("request_id", requestID),
				slog.String("event_id", event.EventID),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Discord rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("event_id", event.EventID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("Discord notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("event_id", event.EventID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Discord API request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("event_id", event.EventID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("Discord notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("event_id", event.EventID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// Notify sends a Discord notification for a newly published event.
// This method implements the Notifier interface.
func (d *DiscordNotifier) Notify(ctx context.Context, event *entity.PublishedEvent) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.String("event_id", event.EventID),
		slog.String("cluster_id", event.ClusterID))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("event_id", event.EventID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return d.sendWebhookRequestWithRetry(ctx, event)
}
