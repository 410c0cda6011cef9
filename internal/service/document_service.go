package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/repository"
	"github.com/spec-kit/ticket-metrics/internal/ticketcsv"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

const utf8BOM = "\ufeff"

// DocumentService keeps the raw CSV document of each session.
type DocumentService struct {
	docs       repository.DocumentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      func() time.Time
}

// DocumentInput describes an uploaded CSV.
type DocumentInput struct {
	FileName string
	Content  []byte
}

// NewDocumentService creates the service.
func NewDocumentService(docs repository.DocumentRepository, dispatcher events.Dispatcher, logger *zap.Logger) *DocumentService {
	return &DocumentService{docs: docs, dispatcher: dispatcher, logger: logger, clock: time.Now}
}

// Store replaces the session's document with the uploaded text.
func (s *DocumentService) Store(ctx context.Context, sessionID string, input DocumentInput) (*domain.Document, error) {
	content := strings.TrimPrefix(string(input.Content), utf8BOM)
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("uploaded file is empty", map[string]any{"file_name": input.FileName})
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		fileName = "upload.csv"
	}

	doc := &domain.Document{
		SessionID:  sessionID,
		FileName:   fileName,
		Content:    content,
		SizeBytes:  len(content),
		Digest:     repository.Digest(content),
		UploadedAt: s.clock().UTC(),
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("document stored",
		zap.String("session_id", sessionID),
		zap.String("file_name", doc.FileName),
		zap.Int("size_bytes", doc.SizeBytes),
		zap.String("digest", doc.Digest))

	s.publish(ctx, events.NewEvent(events.EventDocumentStored, sessionID, doc.UploadedAt, events.DocumentStoredPayload{
		FileName:  doc.FileName,
		SizeBytes: doc.SizeBytes,
		Digest:    doc.Digest,
		Lines:     len(ticketcsv.SplitLines(content)),
	}))
	return doc, nil
}

// Get returns the session's document or a NO_DOCUMENT error.
func (s *DocumentService) Get(ctx context.Context, sessionID string) (*domain.Document, error) {
	doc, err := s.docs.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, apperrors.NewNoDocument()
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return doc, nil
}

// Clear drops the session's document. Clearing an empty session succeeds.
func (s *DocumentService) Clear(ctx context.Context, sessionID string) error {
	if err := s.docs.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("document cleared", zap.String("session_id", sessionID))
	s.publish(ctx, events.NewEvent(events.EventDocumentCleared, sessionID, s.clock(), nil))
	return nil
}

func (s *DocumentService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
