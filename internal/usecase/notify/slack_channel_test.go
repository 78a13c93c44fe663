package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/notifier"
)

// mockSlackNotifier is a test implementation of the Notifier interface
// used to test SlackChannel behavior without making real HTTP requests.
type mockSlackNotifier struct {
	notifyCalled  int
	returnErr     error
	capturedCtx   context.Context
	capturedEvent *entity.PublishedEvent
}

func (m *mockSlackNotifier) Notify(ctx context.Context, event *entity.PublishedEvent) error {
	m.notifyCalled++
	m.capturedCtx = ctx
	m.capturedEvent = event
	return m.returnErr
}

// newTestSlackChannel creates a SlackChannel with a mock notifier for testing.
func newTestSlackChannel(enabled bool, mockNotifier *mockSlackNotifier) *SlackChannel {
	return &SlackChannel{
		notifier: mockNotifier,
		enabled:  enabled,
	}
}

func TestSlackChannel_Name(t *testing.T) {
	config := notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: "https://hooks.slack.com/services/test/test/test",
		Timeout:    10 * time.Second,
	}

	ch := NewSlackChannel(config)

	if got, want := ch.Name(), "slack"; got != want {
		t.Errorf("Name() = %v, want %v", got, want)
	}
}

func TestSlackChannel_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := notifier.SlackConfig{Enabled: tt.enabled}
			ch := NewSlackChannel(config)
			if got := ch.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestSlackChannel_Send_Success(t *testing.T) {
	mock := &mockSlackNotifier{}
	ch := newTestSlackChannel(true, mock)
	event := &entity.PublishedEvent{EventID: "evt-1", TitleAdvanced: "Title"}

	if err := ch.Send(context.Background(), event); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if mock.notifyCalled != 1 {
		t.Errorf("notifyCalled = %d, want 1", mock.notifyCalled)
	}
	if mock.capturedEvent != event {
		t.Errorf("captured event mismatch")
	}
}

func TestSlackChannel_Send_Disabled(t *testing.T) {
	ch := newTestSlackChannel(false, &mockSlackNotifier{})
	err := ch.Send(context.Background(), &entity.PublishedEvent{EventID: "evt-1"})
	if !errors.Is(err, ErrChannelDisabled) {
		t.Errorf("Send() error = %v, want ErrChannelDisabled", err)
	}
}

func TestSlackChannel_Send_NilEvent(t *testing.T) {
	ch := newTestSlackChannel(true, &mockSlackNotifier{})
	err := ch.Send(context.Background(), nil)
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Send() error = %v, want ErrInvalidEvent", err)
	}
}

func TestSlackChannel_Send_NotifierError(t *testing.T) {
	wantErr := errors.New("webhook failed")
	mock := &mockSlackNotifier{returnErr: wantErr}
	ch := newTestSlackChannel(true, mock)

	err := ch.Send(context.Background(), &entity.PublishedEvent{EventID: "evt-1"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Send() error = %v, want %v", err, wantErr)
	}
}

func TestNewSlackChannel_DisabledUsesNoOp(t *testing.T) {
	ch := NewSlackChannel(notifier.SlackConfig{Enabled: false})
	if _, ok := ch.notifier.(*notifier.NoOpNotifier); !ok {
		t.Errorf("expected NoOpNotifier when disabled, got %T", ch.notifier)
	}
}
