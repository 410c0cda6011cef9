package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/domain"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	"github.com/spec-kit/ticket-metrics/internal/repository"
	"github.com/spec-kit/ticket-metrics/internal/worker"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

const csvHeader = "id,url,subject,inbox,status,type,source,priority,tagged,agent,company,client,email,happinessComment,happinessRating,timeTracked,timeBilled,responseTime,resolutionTime,createdAt,updatedAt"

var fixedNow = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func sampleCSV() string {
	return strings.Join([]string{
		csvHeader,
		"1,https://t/1,Login broken,Support,open,Question,Email,high,true,Ana,Acme,Acme,a@x.io,,,,,30,Unknown,2026-01-01 10:00:00,",
		"2,https://t/2,Refund,Billing,solved,Question,Email,low,false,Ben,Acme,Beta,b@x.io,,,,,60,2880,2026-01-15 10:00:00,",
		"3,,No agent,Support,open,,,,,,,,,,,,,,,2026-01-10 10:00:00,",
		"4,https://t/4,Slow page,Support,waiting on customer,Bug,Chat,,,Cy,Acme,Acme,c@x.io,,,,,,,2026-01-18 10:00:00,",
	}, "\n")
}

type recordingQueue struct {
	mu       sync.Mutex
	messages []worker.Message
}

func (q *recordingQueue) Enqueue(msg worker.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return true
}

func (q *recordingQueue) topics() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.messages))
	for _, m := range q.messages {
		out = append(out, m.Topic)
	}
	return out
}

type fixture struct {
	documents *DocumentService
	reports   *ReportService
	counters  *observability.Metrics
	queue     *recordingQueue
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	queue := &recordingQueue{}
	NewNotificationService(dispatcher, queue, logger, config.NotificationConfig{TopicPrefix: "tm"}).RegisterHandlers()

	counters := observability.NewMetrics()
	documents := NewDocumentService(repository.NewMemoryDocumentRepository(time.Hour), dispatcher, logger)
	documents.clock = func() time.Time { return fixedNow }
	reports := NewReportService(documents, dispatcher, counters, logger, WithClock(func() time.Time { return fixedNow }))
	return fixture{documents: documents, reports: reports, counters: counters, queue: queue}
}

func errorCode(err error) string {
	if de := apperrors.ToDomainError(err); de != nil {
		return de.Code
	}
	return ""
}

func TestStoreRejectsEmptyUpload(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{"", "  \n ", "\ufeff"} {
		_, err := f.documents.Store(context.Background(), "s1", DocumentInput{FileName: "x.csv", Content: []byte(body)})
		if errorCode(err) != apperrors.CodeValidationFailed {
			t.Fatalf("body %q: expected VALIDATION_FAILED, got %v", body, err)
		}
	}
}

func TestStoreGetClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.documents.Store(ctx, "s1", DocumentInput{FileName: "tickets.csv", Content: []byte("\ufeff" + sampleCSV())})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if strings.HasPrefix(doc.Content, "\ufeff") {
		t.Fatal("byte order mark should be stripped")
	}
	if doc.Digest != repository.Digest(sampleCSV()) || !doc.UploadedAt.Equal(fixedNow) {
		t.Fatalf("unexpected document metadata: %+v", doc)
	}

	got, err := f.documents.Get(ctx, "s1")
	if err != nil || got.FileName != "tickets.csv" {
		t.Fatalf("get: %v %+v", err, got)
	}

	if err := f.documents.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := f.documents.Get(ctx, "s1"); errorCode(err) != apperrors.CodeNoDocument {
		t.Fatalf("expected NO_DOCUMENT after clear, got %v", err)
	}

	topics := f.queue.topics()
	if len(topics) != 2 || topics[0] != "tm/document_stored" || topics[1] != "tm/document_cleared" {
		t.Fatalf("unexpected notifications: %v", topics)
	}
}

func TestReportsWithoutDocument(t *testing.T) {
	f := newFixture(t)
	if _, err := f.reports.Metrics(context.Background(), "nobody"); errorCode(err) != apperrors.CodeNoDocument {
		t.Fatalf("metrics: expected NO_DOCUMENT, got %v", err)
	}
	if _, err := f.reports.Backlog(context.Background(), "nobody"); errorCode(err) != apperrors.CodeNoDocument {
		t.Fatalf("backlog: expected NO_DOCUMENT, got %v", err)
	}
}

func TestReportMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.documents.Store(ctx, "s1", DocumentInput{FileName: "t.csv", Content: []byte(sampleCSV())}); err != nil {
		t.Fatalf("store: %v", err)
	}

	m, err := f.reports.Metrics(ctx, "s1")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if m.TotalTickets != 3 || m.ResolvedTickets != 1 {
		t.Fatalf("total/resolved = %d/%d, want 3/1", m.TotalTickets, m.ResolvedTickets)
	}
	if m.AvgTimeToClose.Overall != 2 {
		t.Fatalf("avg time to close = %v, want 2", m.AvgTimeToClose.Overall)
	}

	snap := f.counters.Snapshot()
	if snap.PipelineRuns[PipelineMetrics] != 1 || snap.TicketsSeen[PipelineMetrics] != 3 {
		t.Fatalf("unexpected counters: %+v", snap)
	}

	var last events.Event
	f.queue.mu.Lock()
	err = json.Unmarshal(f.queue.messages[len(f.queue.messages)-1].Payload, &last)
	f.queue.mu.Unlock()
	if err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if last.Type != events.EventMetricsComputed || last.SessionID != "s1" {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

func TestReportBacklog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.documents.Store(ctx, "s1", DocumentInput{FileName: "t.csv", Content: []byte(sampleCSV())}); err != nil {
		t.Fatalf("store: %v", err)
	}

	backlog, err := f.reports.Backlog(ctx, "s1")
	if err != nil {
		t.Fatalf("backlog: %v", err)
	}
	if len(backlog) != 2 {
		t.Fatalf("backlog size = %d, want 2", len(backlog))
	}
	if backlog[0].ID != "1" || backlog[0].DaysOpen != 20 {
		t.Fatalf("oldest ticket = %+v", backlog[0])
	}
	if backlog[1].ID != "4" || backlog[1].DaysOpen != 3 {
		t.Fatalf("second ticket = %+v", backlog[1])
	}
}

func TestNotificationServiceWithoutQueue(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()
	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventDocumentCleared, "s1", fixedNow, nil))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestDocumentServiceStoreFailure(t *testing.T) {
	docs := NewDocumentService(failingRepository{}, nil, zap.NewNop())
	_, err := docs.Store(context.Background(), "s1", DocumentInput{Content: []byte("a,b")})
	if errorCode(err) != apperrors.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

type failingRepository struct{ repository.DocumentRepository }

func (failingRepository) Save(context.Context, *domain.Document) error {
	return errors.New("disk full")
}
