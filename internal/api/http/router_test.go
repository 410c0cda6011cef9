package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-metrics/internal/api/http/handlers"
	"github.com/spec-kit/ticket-metrics/internal/auth"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	"github.com/spec-kit/ticket-metrics/internal/repository"
	"github.com/spec-kit/ticket-metrics/internal/service"
)

const testCSV = "id,url,subject,inbox,status,type,source,priority,tagged,agent,company,client,email,happinessComment,happinessRating,timeTracked,timeBilled,responseTime,resolutionTime,createdAt,updatedAt\n" +
	"1,https://t/1,Login,Support,open,,,high,true,Ana,Acme,Acme,,,,,,30,Unknown,2026-01-01 10:00:00,\n" +
	"2,https://t/2,Refund,Billing,closed,,,low,,Ben,Acme,Beta,,,,,,90,1440,2026-01-15 10:00:00,\n"

func newTestApp(t *testing.T, staticDir string, bodyLimit int) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	repo := repository.NewMemoryDocumentRepository(time.Hour)
	dispatcher := events.NewInMemoryDispatcher()

	documents := service.NewDocumentService(repo, dispatcher, logger)
	reports := service.NewReportService(documents, dispatcher, metrics, logger,
		service.WithClock(func() time.Time { return time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC) }))

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler(logger, metrics),
	})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second, "")
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("ticket-metrics", "test", "2222", repo, metrics),
		Documents: handlers.NewDocumentsHandler(documents),
		Reports:   handlers.NewReportsHandler(reports),
		Sessions:  auth.NewSessionMiddleware(auth.NewTokenManager("secret", time.Hour), "ticket_session", false, logger),
		StaticDir: staticDir,
		Logger:    logger,
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *stdhttp.Request) (*stdhttp.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return payload.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, "", 1<<20)

	resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, "/api/health", nil))
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "ok" || health["server"] != "ticket-metrics" || health["port"] != "2222" {
		t.Fatalf("unexpected health body: %s", body)
	}
	if _, err := time.Parse(time.RFC3339, health["time"]); err != nil {
		t.Fatalf("time is not RFC3339: %q", health["time"])
	}

	for _, path := range []string{"/health/live", "/health/ready", "/health/stats"} {
		if resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, path, nil)); resp.StatusCode != stdhttp.StatusOK {
			t.Fatalf("%s status = %d body=%s", path, resp.StatusCode, body)
		}
	}
}

func TestUploadAck(t *testing.T) {
	app := newTestApp(t, "", 1<<20)
	resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodPost, "/api/upload-csv", strings.NewReader("anything")))
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"message":"CSV upload endpoint ready","received":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMetricsWithoutDocument(t *testing.T) {
	app := newTestApp(t, "", 1<<20)
	for _, path := range []string{"/api/metrics", "/api/backlog", "/api/documents"} {
		resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, path, nil))
		if resp.StatusCode != stdhttp.StatusNotFound || errorCode(t, body) != "NO_DOCUMENT" {
			t.Fatalf("%s: status=%d body=%s", path, resp.StatusCode, body)
		}
	}
}

func sessionCookie(t *testing.T, resp *stdhttp.Response) *stdhttp.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "ticket_session" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestUploadThenReports(t *testing.T) {
	app := newTestApp(t, "", 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "tickets.csv")
	_, _ = part.Write([]byte(testCSV))
	_ = mw.Close()

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := doRequest(t, app, req)
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("upload status = %d body=%s", resp.StatusCode, body)
	}
	cookie := sessionCookie(t, resp)

	withSession := func(method, path string) *stdhttp.Request {
		r := httptest.NewRequest(method, path, nil)
		r.AddCookie(&stdhttp.Cookie{Name: cookie.Name, Value: cookie.Value})
		return r
	}

	resp, body = doRequest(t, app, withSession(stdhttp.MethodGet, "/api/metrics"))
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("metrics status = %d body=%s", resp.StatusCode, body)
	}
	var metrics struct {
		Data struct {
			TotalTickets    int     `json:"total_tickets"`
			ResolvedTickets int     `json:"resolved_tickets"`
			ResolutionRate  float64 `json:"resolution_rate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.Data.TotalTickets != 2 || metrics.Data.ResolvedTickets != 1 || metrics.Data.ResolutionRate != 50 {
		t.Fatalf("unexpected metrics: %s", body)
	}

	resp, body = doRequest(t, app, withSession(stdhttp.MethodGet, "/api/backlog"))
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("backlog status = %d body=%s", resp.StatusCode, body)
	}
	var backlog struct {
		Data struct {
			Count   int `json:"count"`
			Tickets []struct {
				ID       string `json:"id"`
				DaysOpen int    `json:"days_open"`
				Severity string `json:"severity"`
			} `json:"tickets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &backlog); err != nil {
		t.Fatalf("decode backlog: %v", err)
	}
	if backlog.Data.Count != 1 || backlog.Data.Tickets[0].ID != "1" || backlog.Data.Tickets[0].Severity != "critical" {
		t.Fatalf("unexpected backlog: %s", body)
	}

	// A different browser has its own session.
	resp, _ = doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, "/api/metrics", nil))
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("fresh session should see no document, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, withSession(stdhttp.MethodDelete, "/api/documents"))
	if resp.StatusCode != stdhttp.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, app, withSession(stdhttp.MethodGet, "/api/metrics"))
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("metrics after delete = %d", resp.StatusCode)
	}
}

func TestUploadRawBodyAndValidation(t *testing.T) {
	app := newTestApp(t, "", 1<<20)

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/documents?filename=raw.csv", strings.NewReader(testCSV))
	req.Header.Set("Content-Type", "text/csv")
	resp, body := doRequest(t, app, req)
	if resp.StatusCode != stdhttp.StatusCreated || !strings.Contains(string(body), `"file_name":"raw.csv"`) {
		t.Fatalf("raw upload: status=%d body=%s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, httptest.NewRequest(stdhttp.MethodPost, "/api/documents", strings.NewReader("   ")))
	if resp.StatusCode != stdhttp.StatusBadRequest || errorCode(t, body) != "VALIDATION_FAILED" {
		t.Fatalf("empty upload: status=%d body=%s", resp.StatusCode, body)
	}
}

func TestUploadTooLarge(t *testing.T) {
	app := newTestApp(t, "", 64)
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/documents", strings.NewReader(strings.Repeat("x", 4096)))
	resp, body := doRequest(t, app, req)
	if resp.StatusCode != stdhttp.StatusRequestEntityTooLarge || errorCode(t, body) != "PAYLOAD_TOO_LARGE" {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	app := newTestApp(t, dir, 1<<20)

	for _, path := range []string{"/", "/backlog"} {
		resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, path, nil))
		if resp.StatusCode != stdhttp.StatusOK || !strings.Contains(string(body), "app") {
			t.Fatalf("%s: status=%d body=%s", path, resp.StatusCode, body)
		}
	}

	resp, body := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, "/api/nope", nil))
	if resp.StatusCode != stdhttp.StatusNotFound || errorCode(t, body) != "NOT_FOUND" {
		t.Fatalf("unknown api route: status=%d body=%s", resp.StatusCode, body)
	}
}

func TestMissingStaticDirLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	app := fiber.New()
	missing := filepath.Join(t.TempDir(), "frontend")

	registerStatic(app, missing, zap.New(core))

	entries := logs.FilterMessage("static directory not found, serving API only").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if got := entries[0].ContextMap()["dir"]; got != missing {
		t.Fatalf("expected dir field %q, got %v", missing, got)
	}

	resp, _ := doRequest(t, app, httptest.NewRequest(stdhttp.MethodGet, "/", nil))
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 without a client, got %d", resp.StatusCode)
	}
}

func TestCORSHeaders(t *testing.T) {
	app := newTestApp(t, "", 1<<20)

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("health: status=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow origin, got %q", got)
	}

	preflight := httptest.NewRequest(stdhttp.MethodOptions, "/api/documents", nil)
	preflight.Header.Set("Origin", "http://example.com")
	preflight.Header.Set("Access-Control-Request-Method", stdhttp.MethodPost)
	resp, _ = doRequest(t, app, preflight)
	if resp.StatusCode != stdhttp.StatusNoContent {
		t.Fatalf("preflight: status=%d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), stdhttp.MethodPost) {
		t.Fatalf("preflight should allow POST, got %q", resp.Header.Get("Access-Control-Allow-Methods"))
	}
}
