package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type awarded struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

func TestBus_PublishDeliversDecodedEvent(t *testing.T) {
	t.Parallel()

	bus := New(logging.NewNop(), 8)
	t.Cleanup(func() { _ = bus.Close() })

	got := make(chan awarded, 1)
	err := bus.Subscribe(t.Context(), "points.awarded", func(_ context.Context, msg *message.Message) error {
		event, err := Decode[awarded](msg)
		if err != nil {
			return err
		}
		got <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(t.Context(), "points.awarded", awarded{UserID: "u1", Points: 10}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-got:
		if event.UserID != "u1" || event.Points != 10 {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestBus_HandlerErrorDoesNotStopConsumer(t *testing.T) {
	t.Parallel()

	bus := New(logging.NewNop(), 8)
	t.Cleanup(func() { _ = bus.Close() })

	calls := make(chan struct{}, 2)
	err := bus.Subscribe(t.Context(), "t", func(context.Context, *message.Message) error {
		calls <- struct{}{}
		return errors.New("handler failed")
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := bus.Publish(t.Context(), "t", awarded{UserID: "u"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected delivery %d", i+1)
		}
	}
}

func TestBus_SubscribeRequiresHandler(t *testing.T) {
	t.Parallel()

	bus := New(logging.NewNop(), 1)
	t.Cleanup(func() { _ = bus.Close() })

	if err := bus.Subscribe(t.Context(), "t", nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}
