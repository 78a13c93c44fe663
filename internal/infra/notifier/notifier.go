// Package notifier provides abstraction for sending notifications about published events.
// It defines the Notifier interface which allows different notification mechanisms
// (Discord, Slack, email, etc.) to be used interchangeably through dependency injection.
//
// The package includes implementations for Discord webhooks and a no-op notifier
// for when notifications are disabled.
package notifier

import (
	"context"

	"newsdigest/internal/domain/entity"
)

// Notifier is an interface for sending published-event notifications.
// Implementations should handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// Notify sends a notification about a newly published (or updated) event.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - event: The published event to notify about (must not be nil)
	//
	// Returns:
	//   - error: Non-nil if the notification failed after all retry attempts
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with exponential backoff
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	Notify(ctx context.Context, event *entity.PublishedEvent) error
}
