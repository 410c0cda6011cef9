package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/analytics"
	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	"github.com/spec-kit/ticket-metrics/internal/ticketcsv"
)

// Pipeline names used in counters.
const (
	PipelineMetrics = "metrics"
	PipelineBacklog = "backlog"
)

// ReportService runs the metrics and backlog pipelines over a session's document.
type ReportService struct {
	documents  *DocumentService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      func() time.Time
	location   *time.Location
}

// ReportOption customizes a ReportService.
type ReportOption func(*ReportService)

// WithClock replaces the wall clock used as "now".
func WithClock(clock func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.clock = clock
	}
}

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) ReportOption {
	return func(s *ReportService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewReportService creates the service.
func NewReportService(documents *DocumentService, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger, opts ...ReportOption) *ReportService {
	s := &ReportService{
		documents:  documents,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		clock:      time.Now,
		location:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) now() time.Time {
	return s.clock().In(s.location)
}

func (s *ReportService) lines(ctx context.Context, sessionID string) ([]string, error) {
	doc, err := s.documents.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ticketcsv.SplitLines(doc.Content), nil
}

// Metrics computes the aggregate metrics of the session's document.
func (s *ReportService) Metrics(ctx context.Context, sessionID string) (domain.Metrics, error) {
	lines, err := s.lines(ctx, sessionID)
	if err != nil {
		return domain.Metrics{}, err
	}

	now := s.now()
	started := time.Now()
	result := analytics.ComputeMetrics(lines, now)
	s.metrics.RecordPipeline(PipelineMetrics, result.TotalTickets)

	s.logger.Debug("metrics computed",
		zap.String("session_id", sessionID),
		zap.Int("tickets", result.TotalTickets),
		zap.Duration("took", time.Since(started)))

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventMetricsComputed, sessionID, now, events.MetricsComputedPayload{
		TotalTickets:    result.TotalTickets,
		OpenTickets:     result.TotalTickets - result.ResolvedTickets,
		ResolvedTickets: result.ResolvedTickets,
		ResolutionRate:  result.ResolutionRate,
	}))
	return result, nil
}

// Backlog lists the session's unresolved tickets, oldest first.
func (s *ReportService) Backlog(ctx context.Context, sessionID string) ([]domain.BacklogTicket, error) {
	lines, err := s.lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	backlog := analytics.ComputeBacklog(lines, now)
	s.metrics.RecordPipeline(PipelineBacklog, len(backlog))

	payload := events.BacklogComputedPayload{Tickets: len(backlog)}
	for _, ticket := range backlog {
		if ticket.Severity() == domain.SeverityCritical {
			payload.Critical++
		}
	}
	if len(backlog) > 0 {
		payload.OldestDays = backlog[0].DaysOpen
	}

	s.logger.Debug("backlog computed", zap.String("session_id", sessionID), zap.Int("tickets", len(backlog)))
	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventBacklogComputed, sessionID, now, payload))
	return backlog, nil
}
