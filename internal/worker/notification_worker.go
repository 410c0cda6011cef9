package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Message is one outbound notification.
type Message struct {
	Topic   string
	Payload []byte
}

// Publisher delivers a message to the broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// NotificationWorker delivers queued notifications on a single goroutine so
// request handlers never wait on the broker.
type NotificationWorker struct {
	queue     chan Message
	publisher Publisher
	logger    *zap.Logger
	timeout   time.Duration

	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(publisher Publisher, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &NotificationWorker{
		queue:     make(chan Message, queueSize),
		publisher: publisher,
		logger:    logger,
		timeout:   5 * time.Second,
	}
}

// Enqueue adds msg to the queue, dropping it when the queue is full.
func (w *NotificationWorker) Enqueue(msg Message) bool {
	select {
	case w.queue <- msg:
		return true
	default:
		w.dropped.Add(1)
		w.logger.Warn("notification queue full; dropping message", zap.String("topic", msg.Topic))
		return false
	}
}

// Run delivers messages until ctx is cancelled, then flushes what is already queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.Int("queue_size", cap(w.queue)))
	for {
		select {
		case msg := <-w.queue:
			w.deliver(ctx, msg)
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			w.logger.Info("notification worker stopped",
				zap.Int64("delivered", w.delivered.Load()),
				zap.Int64("dropped", w.dropped.Load()),
				zap.Int64("failed", w.failed.Load()))
			return
		}
	}
}

func (w *NotificationWorker) flush(ctx context.Context) {
	for {
		select {
		case msg := <-w.queue:
			w.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, msg.Topic, msg.Payload); err != nil {
		w.failed.Add(1)
		w.logger.Warn("notification delivery failed", zap.String("topic", msg.Topic), zap.Error(err))
		return
	}
	w.delivered.Add(1)
	w.logger.Debug("notification delivered", zap.String("topic", msg.Topic), zap.Int("bytes", len(msg.Payload)))
}

// Stats returns delivered, dropped and failed counts.
func (w *NotificationWorker) Stats() (delivered, dropped, failed int64) {
	return w.delivered.Load(), w.dropped.Load(), w.failed.Load()
}
