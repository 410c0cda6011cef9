package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/metrics", "GET", 200, time.Millisecond)
	m.RecordRequest("/api/metrics", "GET", 200, time.Millisecond)
	m.RecordError("/api/backlog", "GET", "NO_DOCUMENT")
	m.RecordPipeline("metrics", 12)
	m.RecordPipeline("metrics", 3)

	snap := m.Snapshot()
	if snap.Requests["/api/metrics|GET|200"] != 2 {
		t.Fatalf("unexpected request counts %v", snap.Requests)
	}
	if snap.Errors["/api/backlog|GET|NO_DOCUMENT"] != 1 {
		t.Fatalf("unexpected error counts %v", snap.Errors)
	}
	if snap.PipelineRuns["metrics"] != 2 || snap.TicketsSeen["metrics"] != 15 {
		t.Fatalf("unexpected pipeline counts %+v", snap)
	}

	m.RecordPipeline("metrics", 1)
	if snap.PipelineRuns["metrics"] != 2 {
		t.Fatalf("snapshot must not alias live counters")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordPipeline("metrics", 1)
	if snap := m.Snapshot(); snap.Requests != nil {
		t.Fatalf("expected empty snapshot")
	}
}
