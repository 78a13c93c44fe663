package notifier

import (
	"context"
	"testing"

	"newsdigest/internal/domain/entity"
)

func TestNoOpNotifier_Notify(t *testing.T) {
	t.Run("returns nil without a backing transport", func(t *testing.T) {
		n := NewNoOpNotifier()
		event := &entity.PublishedEvent{
			EventID:         "evt-1",
			TitleAdvanced:   "Test Event",
			NumberOfSources: 2,
		}

		if err := n.Notify(context.Background(), event); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("returns nil even for a nil event", func(t *testing.T) {
		n := NewNoOpNotifier()
		if err := n.Notify(context.Background(), nil); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("respects context cancellation without erroring", func(t *testing.T) {
		n := NewNoOpNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := n.Notify(ctx, &entity.PublishedEvent{EventID: "evt-2"}); err != nil {
			t.Errorf("expected nil error even with canceled context, got %v", err)
		}
	})
}

func TestNoOpNotifier_ImplementsNotifier(t *testing.T) {
	var _ Notifier = (*NoOpNotifier)(nil)
}
