package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func healthyEngine(ctx context.Context) error { return nil }

func TestChecker_BasicHealth(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		Version: "1.0.0",
		Timeout: 5 * time.Second,
	})

	response := checker.Check(context.Background())

	if response.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", response.Version)
	}
}

func TestChecker_DeepCheck_EngineHealthy(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		EngineCheck: healthyEngine,
		Version:     "1.0.0",
		Timeout:     5 * time.Second,
	})

	response := checker.DeepCheck(context.Background())

	if len(response.Components) == 0 {
		t.Error("expected components to be populated")
	}
	if response.Components["engine"].Status != StatusHealthy {
		t.Errorf("expected engine component healthy, got %s", response.Components["engine"].Status)
	}
	// Redis is not configured, so the overall check is unhealthy
	if response.Status != StatusUnhealthy {
		t.Errorf("expected overall unhealthy without redis, got %s", response.Status)
	}
}

func TestChecker_DeepCheck_EngineUnhealthy(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		EngineCheck: func(ctx context.Context) error {
			return errors.New("yt-dlp not found")
		},
		Version: "1.0.0",
		Timeout: 5 * time.Second,
	})

	response := checker.DeepCheck(context.Background())

	if response.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
	if response.Components["engine"].Status != StatusUnhealthy {
		t.Errorf("expected engine component unhealthy, got %s", response.Components["engine"].Status)
	}
}

func TestChecker_DeepCheck_ArchivalDisabled(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		EngineCheck: healthyEngine,
		Version:     "1.0.0",
	})

	response := checker.DeepCheck(context.Background())

	// No storage check configured: degraded, not unhealthy
	if response.Components["storage"].Status != StatusDegraded {
		t.Errorf("expected storage component degraded, got %s", response.Components["storage"].Status)
	}
}

func TestHandler_LivenessHandler(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		Version: "1.0.0",
	})
	handler := NewHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.LivenessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
}

func TestHandler_ReadinessHandler_Unhealthy(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		EngineCheck: func(ctx context.Context) error {
			return errors.New("engine down")
		},
		StorageCheck: func(ctx context.Context) error {
			return errors.New("storage down")
		},
		Version: "1.0.0",
	})
	handler := NewHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ReadinessHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
}

func TestHandler_DeepQuery(t *testing.T) {
	checker := NewChecker(&CheckerConfig{
		EngineCheck: healthyEngine,
		StorageCheck: func(ctx context.Context) error {
			return nil
		},
		Version: "1.0.0",
	})
	handler := NewHandler(checker)

	req := httptest.NewRequest(http.MethodGet, "/health?deep=true", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Deep check should include components
	if len(response.Components) == 0 {
		t.Error("deep check should include components")
	}
}
