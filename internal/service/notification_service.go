package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/mq"
	"github.com/spec-kit/ticket-metrics/internal/worker"
)

// MessageQueue accepts outbound notifications without blocking.
type MessageQueue interface {
	Enqueue(msg worker.Message) bool
}

// NotificationService forwards domain events to the broker queue.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      MessageQueue
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. A nil queue only logs events.
func NewNotificationService(dispatcher events.Dispatcher, queue MessageQueue, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.Any("payload", event.Payload))

	if n.queue == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	topic := mq.Topic(n.cfg.TopicPrefix, string(event.Type))
	if !n.queue.Enqueue(worker.Message{Topic: topic, Payload: body}) {
		n.logger.Debug("notification not queued", zap.String("topic", topic))
	}
	return nil
}
