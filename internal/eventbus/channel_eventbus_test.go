package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestChannelEventBus_PublishAndSubscribe(t *testing.T) {
	eb := NewChannelEventBus(
		WithBufferSize(1),
		WithWorkerCount(1),
		WithRetries(1, 10*time.Millisecond),
	)
	defer eb.Close()

	received := make(chan string, 1)
	handler := func(ctx context.Context, event Event) error {
		received <- string(event.Type())
		return nil
	}
	_, err := eb.Subscribe([]EventType{EventTaskValidated}, handler)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	evt := NewEvent(EventTaskValidated, nil, "test", nil)
	if err := eb.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case typ := <-received:
		if typ != string(EventTaskValidated) {
			t.Errorf("expected event type %v, got %v", EventTaskValidated, typ)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event handler")
	}
}

func TestChannelEventBus_SubscribeAll(t *testing.T) {
	eb := NewChannelEventBus(WithBufferSize(4), WithWorkerCount(1))
	defer eb.Close()

	var mu sync.Mutex
	seen := make(map[EventType]bool)
	done := make(chan struct{}, 2)
	_, err := eb.SubscribeAll(func(ctx context.Context, event Event) error {
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("SubscribeAll failed: %v", err)
	}

	eb.Publish(context.Background(), NewEvent(EventRunStarted, nil, "test", nil))
	eb.Publish(context.Background(), NewEvent(EventToolInvoked, nil, "test", nil))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for events")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if !seen[EventRunStarted] || !seen[EventToolInvoked] {
		t.Errorf("expected both event types, got %v", seen)
	}
}

func TestChannelEventBus_HandlerRetry(t *testing.T) {
	eb := NewChannelEventBus(
		WithBufferSize(1),
		WithWorkerCount(1),
		WithRetries(2, 10*time.Millisecond),
	)
	defer eb.Close()

	var mu sync.Mutex
	calls := 0
	handler := func(ctx context.Context, event Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 2 {
			return context.DeadlineExceeded
		}
		return nil
	}
	_, err := eb.Subscribe([]EventType{EventSynthesisFailure}, handler)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := eb.Publish(context.Background(), NewEvent(EventSynthesisFailure, nil, "test", nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if calls < 2 {
		t.Errorf("expected at least 2 calls, got %d", calls)
	}
	mu.Unlock()
}

func TestChannelEventBus_Unsubscribe(t *testing.T) {
	eb := NewChannelEventBus(WithBufferSize(1), WithWorkerCount(1))
	defer eb.Close()

	received := make(chan struct{}, 1)
	id, err := eb.Subscribe([]EventType{EventTaskStarted}, func(ctx context.Context, event Event) error {
		received <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := eb.Unsubscribe(id); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	eb.Publish(context.Background(), NewEvent(EventTaskStarted, nil, "test", nil))

	select {
	case <-received:
		t.Error("handler should not be called after unsubscribing")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelEventBus_PublishCancelledContext(t *testing.T) {
	eb := NewChannelEventBus(WithBufferSize(1), WithWorkerCount(1))
	defer eb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := eb.Publish(ctx, NewEvent(EventRunStarted, nil, "test", nil)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestChannelEventBus_ClosedBusRejectsPublish(t *testing.T) {
	eb := NewChannelEventBus(WithBufferSize(1), WithWorkerCount(1))
	if err := eb.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := eb.Publish(context.Background(), NewEvent(EventRunStarted, nil, "test", nil)); err == nil {
		t.Error("expected error publishing to a closed bus")
	}
	// Close is idempotent.
	if err := eb.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
