package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	fail   bool
	sent   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{sent: make(chan struct{}, 16)}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ []byte) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	p.sent <- struct{}{}
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func waitSent(t *testing.T, p *recordingPublisher, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-p.sent:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i+1)
		}
	}
}

func TestWorkerDeliversInOrder(t *testing.T) {
	pub := newRecordingPublisher()
	w := NewNotificationWorker(pub, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	w.Enqueue(Message{Topic: "a"})
	w.Enqueue(Message{Topic: "b"})
	waitSent(t, pub, 2)
	cancel()
	<-done

	got := pub.published()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected topics: %v", got)
	}
	if delivered, dropped, failed := w.Stats(); delivered != 2 || dropped != 0 || failed != 0 {
		t.Fatalf("stats = %d/%d/%d", delivered, dropped, failed)
	}
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	w := NewNotificationWorker(newRecordingPublisher(), 1, zap.NewNop())

	if !w.Enqueue(Message{Topic: "first"}) {
		t.Fatal("first message should fit")
	}
	if w.Enqueue(Message{Topic: "second"}) {
		t.Fatal("second message should be dropped")
	}
	if _, dropped, _ := w.Stats(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestWorkerFlushesOnShutdown(t *testing.T) {
	pub := newRecordingPublisher()
	w := NewNotificationWorker(pub, 4, zap.NewNop())
	w.Enqueue(Message{Topic: "pending"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if got := pub.published(); len(got) != 1 || got[0] != "pending" {
		t.Fatalf("expected queued message to be flushed, got %v", got)
	}
}

func TestWorkerCountsFailures(t *testing.T) {
	pub := newRecordingPublisher()
	pub.fail = true
	w := NewNotificationWorker(pub, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	w.Enqueue(Message{Topic: "x"})
	waitSent(t, pub, 1)
	cancel()
	<-done

	if _, _, failed := w.Stats(); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}
