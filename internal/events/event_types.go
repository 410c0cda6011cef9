package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDocumentStored  EventType = "document_stored"
	EventDocumentCleared EventType = "document_cleared"
	EventMetricsComputed EventType = "metrics_computed"
	EventBacklogComputed EventType = "backlog_computed"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventDocumentStored,
	EventDocumentCleared,
	EventMetricsComputed,
	EventBacklogComputed,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, sessionID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// DocumentStoredPayload payload.
type DocumentStoredPayload struct {
	FileName  string `json:"file_name"`
	SizeBytes int    `json:"size_bytes"`
	Digest    string `json:"digest"`
	Lines     int    `json:"lines"`
}

// MetricsComputedPayload payload.
type MetricsComputedPayload struct {
	TotalTickets    int     `json:"total_tickets"`
	OpenTickets     int     `json:"open_tickets"`
	ResolvedTickets int     `json:"resolved_tickets"`
	ResolutionRate  float64 `json:"resolution_rate"`
}

// BacklogComputedPayload payload.
type BacklogComputedPayload struct {
	Tickets    int `json:"tickets"`
	Critical   int `json:"critical"`
	OldestDays int `json:"oldest_days"`
}
