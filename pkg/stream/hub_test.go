package stream

import (
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(4)
	defer h.Unsubscribe(ch)

	h.Publish(NewEvent(EventTodoCreated, map[string]string{"id": "t1"}))
	select {
	case evt := <-ch:
		if evt.Type != EventTodoCreated || evt.At == "" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(1)
	defer h.Unsubscribe(ch)

	h.Publish(NewEvent(EventTodoCreated, nil))
	h.Publish(NewEvent(EventTodoUpdated, nil))
	if got := len(ch); got != 1 {
		t.Fatalf("expected exactly one buffered event, got %d", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe(1)
	h.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("expected channel closed after unsubscribe")
	}
	// Second unsubscribe is a no-op, not a double close.
	h.Unsubscribe(ch)
	h.Publish(NewEvent(EventTodoDeleted, nil))
}
