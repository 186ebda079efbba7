package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	handler := m.Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	return w.Body.String()
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()

	m.RecordRequest("GET", "/health", 200, 100*time.Millisecond)
	m.RecordRequest("GET", "/health", 200, 150*time.Millisecond)
	m.RecordRequest("GET", "/health", 500, 50*time.Millisecond)

	body := scrape(t, m)

	if !strings.Contains(body, "mg_http_requests_total") {
		t.Error("expected mg_http_requests_total metric")
	}
	if !strings.Contains(body, "mg_http_request_duration_seconds") {
		t.Error("expected mg_http_request_duration_seconds metric")
	}
	if !strings.Contains(body, "mg_http_errors_total") {
		t.Error("expected mg_http_errors_total metric")
	}
}

func TestMetrics_JobCounters(t *testing.T) {
	m := New()

	m.JobSubmitted()
	m.JobSubmitted()
	m.JobSubmitted()
	m.JobCompleted()
	m.JobFailed()

	body := scrape(t, m)

	if !strings.Contains(body, "mg_jobs_submitted_total 3") {
		t.Errorf("expected mg_jobs_submitted_total 3, got:\n%s", body)
	}
	if !strings.Contains(body, "mg_jobs_completed_total 1") {
		t.Errorf("expected mg_jobs_completed_total 1, got:\n%s", body)
	}
	if !strings.Contains(body, "mg_jobs_failed_total 1") {
		t.Errorf("expected mg_jobs_failed_total 1, got:\n%s", body)
	}
}

func TestMetrics_QueueDepth(t *testing.T) {
	m := New()

	m.SetQueueDepth(5)

	if m.QueueDepth() != 5 {
		t.Errorf("QueueDepth = %d, want 5", m.QueueDepth())
	}

	body := scrape(t, m)
	if !strings.Contains(body, "mg_download_queue_depth 5") {
		t.Errorf("expected mg_download_queue_depth 5, got:\n%s", body)
	}
}

func TestMetrics_WSConnections(t *testing.T) {
	m := New()

	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	body := scrape(t, m)

	if !strings.Contains(body, "mg_websocket_connections_active 1") {
		t.Errorf("expected mg_websocket_connections_active 1, got:\n%s", body)
	}
}

func TestMetrics_Uptime(t *testing.T) {
	m := New()

	// Wait a bit to ensure uptime is > 0
	time.Sleep(10 * time.Millisecond)

	body := scrape(t, m)

	if !strings.Contains(body, "mg_uptime_seconds") {
		t.Error("expected mg_uptime_seconds metric")
	}
}

func TestMetrics_EndpointNormalization(t *testing.T) {
	m := New()

	// These should be normalized to the same endpoint
	m.RecordRequest("GET", "/api/v1/downloads/123e4567-e89b-12d3-a456-426614174000", 200, 10*time.Millisecond)
	m.RecordRequest("GET", "/api/v1/downloads/550e8400-e29b-41d4-a716-446655440000", 200, 10*time.Millisecond)

	body := scrape(t, m)

	// Should have normalized the UUID to {id}
	if !strings.Contains(body, "/api/v1/downloads/{id}") {
		t.Errorf("expected normalized endpoint /api/v1/downloads/{id}, got:\n%s", body)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := New()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	wrappedHandler := MetricsMiddleware(m)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	body := scrape(t, m)
	if !strings.Contains(body, "/api/v1/formats") {
		t.Errorf("expected endpoint /api/v1/formats in metrics, got:\n%s", body)
	}
}
