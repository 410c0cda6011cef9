package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(EventDocumentStored, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.SessionID)
		return boom
	})
	d.Subscribe(EventDocumentStored, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.SessionID)
		return nil
	})
	d.Subscribe(EventDocumentCleared, func(context.Context, Event) error {
		calls = append(calls, "cleared")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventDocumentStored, "s1", time.Now(), nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:s1" || calls[1] != "second:s1" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), NewEvent(EventMetricsComputed, "s1", time.Now(), nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	a := NewEvent(EventBacklogComputed, "s1", at, BacklogComputedPayload{Tickets: 3})
	b := NewEvent(EventBacklogComputed, "s1", at, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be UTC, got %v", a.Timestamp.Location())
	}
}
