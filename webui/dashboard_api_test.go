package webui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imageflow/metrics"
)

// mockMetricsCollector is a test implementation of metrics.MetricsCollector.
type mockMetricsCollector struct {
	systemStatus metrics.SystemStatus
	runRecords   []metrics.RunRecord
	runMetrics   metrics.RunMetrics
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		systemStatus: metrics.SystemStatus{
			Health:    metrics.SystemHealthRunning,
			Version:   "1.0.0",
			Uptime:    time.Hour + 30*time.Minute,
			LastCheck: time.Now(),
		},
		runRecords: []metrics.RunRecord{
			{
				ID:       "run-1",
				Stage:    metrics.StageReconstruct,
				Status:   metrics.RunStatusSuccess,
				Duration: 100 * time.Millisecond,
			},
			{
				ID:       "run-2",
				Stage:    metrics.StageSynthesizePrimary,
				Status:   metrics.RunStatusSuccess,
				Duration: 500 * time.Millisecond,
			},
		},
		runMetrics: metrics.RunMetrics{
			TotalProcessed: 100,
			TotalSuccess:   90,
			TotalErrors:    10,
			ByStage: map[string]*metrics.StageMetrics{
				metrics.StageReconstruct: {
					Count:       50,
					SuccessRate: 95.0,
					AvgDuration: 100 * time.Millisecond,
				},
			},
		},
	}
}

func (m *mockMetricsCollector) RecordRun(run metrics.RunRecord) {
	m.runRecords = append(m.runRecords, run)
}

func (m *mockMetricsCollector) GetRunMetrics() metrics.RunMetrics {
	return m.runMetrics
}

func (m *mockMetricsCollector) GetRecentRuns(limit int) []metrics.RunRecord {
	if limit > len(m.runRecords) {
		limit = len(m.runRecords)
	}
	return m.runRecords[:limit]
}

func (m *mockMetricsCollector) GetSystemStatus() metrics.SystemStatus {
	return m.systemStatus
}

func TestNewDashboardAPI(t *testing.T) {
	t.Run("creates API with default config", func(t *testing.T) {
		mock := newMockMetricsCollector()
		config := DefaultDashboardAPIConfig()
		api := NewDashboardAPI(mock, config)

		if api == nil {
			t.Fatal("expected non-nil API")
		}

		if api.defaultLimit != 20 {
			t.Errorf("expected defaultLimit 20, got %d", api.defaultLimit)
		}

		if api.maxLimit != 100 {
			t.Errorf("expected maxLimit 100, got %d", api.maxLimit)
		}
	})

	t.Run("handles invalid config values", func(t *testing.T) {
		mock := newMockMetricsCollector()
		config := DashboardAPIConfig{
			DefaultLimit: 0,
			MaxLimit:     -1,
		}
		api := NewDashboardAPI(mock, config)

		if api.defaultLimit != 20 {
			t.Errorf("expected defaultLimit 20 (corrected), got %d", api.defaultLimit)
		}

		if api.maxLimit != 100 {
			t.Errorf("expected maxLimit 100 (corrected), got %d", api.maxLimit)
		}
	})
}

func TestHandleStatus(t *testing.T) {
	t.Run("returns system status", func(t *testing.T) {
		mock := newMockMetricsCollector()
		config := DefaultDashboardAPIConfig()
		config.VersionInfo = VersionInfo{
			Version:   "1.0.0",
			BuildDate: "2024-01-01",
			GitCommit: "abc123",
		}
		api := NewDashboardAPI(mock, config)

		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		w := httptest.NewRecorder()

		api.HandleStatus(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}

		var response StatusResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Health != metrics.SystemHealthRunning {
			t.Errorf("expected health 'running', got '%s'", response.Health)
		}

		if response.Version != "1.0.0" {
			t.Errorf("expected version '1.0.0', got '%s'", response.Version)
		}
	})

	t.Run("rejects non-GET requests", func(t *testing.T) {
		mock := newMockMetricsCollector()
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
		w := httptest.NewRecorder()

		api.HandleStatus(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})
}

func TestHandleRuns(t *testing.T) {
	t.Run("returns recent runs with default limit", func(t *testing.T) {
		mock := newMockMetricsCollector()
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		w := httptest.NewRecorder()

		api.HandleRuns(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}

		var response RunsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Count != 2 {
			t.Errorf("expected 2 runs, got %d", response.Count)
		}

		if response.Limit != 20 {
			t.Errorf("expected limit 20, got %d", response.Limit)
		}
	})

	t.Run("respects limit parameter", func(t *testing.T) {
		mock := newMockMetricsCollector()
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil)
		w := httptest.NewRecorder()

		api.HandleRuns(w, req)

		var response RunsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Count != 1 {
			t.Errorf("expected 1 run, got %d", response.Count)
		}

		if response.Limit != 1 {
			t.Errorf("expected limit 1, got %d", response.Limit)
		}
	})

	t.Run("caps limit at max", func(t *testing.T) {
		mock := newMockMetricsCollector()
		config := DashboardAPIConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
		}
		api := NewDashboardAPI(mock, config)

		req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=1000", nil)
		w := httptest.NewRecorder()

		api.HandleRuns(w, req)

		var response RunsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Limit != 50 {
			t.Errorf("expected limit capped at 50, got %d", response.Limit)
		}
	})

	t.Run("ignores invalid limit parameter", func(t *testing.T) {
		mock := newMockMetricsCollector()
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=invalid", nil)
		w := httptest.NewRecorder()

		api.HandleRuns(w, req)

		var response RunsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Limit != 20 {
			t.Errorf("expected default limit 20, got %d", response.Limit)
		}
	})
}

func TestHandleMetrics(t *testing.T) {
	t.Run("returns run metrics", func(t *testing.T) {
		mock := newMockMetricsCollector()
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
		w := httptest.NewRecorder()

		api.HandleMetrics(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}

		var response MetricsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.TotalProcessed != 100 {
			t.Errorf("expected total processed 100, got %d", response.TotalProcessed)
		}

		if response.TotalSuccess != 90 {
			t.Errorf("expected total success 90, got %d", response.TotalSuccess)
		}

		if response.TotalErrors != 10 {
			t.Errorf("expected total errors 10, got %d", response.TotalErrors)
		}

		if response.SuccessRate != 90.0 {
			t.Errorf("expected success rate 90.0, got %f", response.SuccessRate)
		}
	})

	t.Run("handles zero total processed", func(t *testing.T) {
		mock := newMockMetricsCollector()
		mock.runMetrics = metrics.RunMetrics{
			TotalProcessed: 0,
			TotalSuccess:   0,
			TotalErrors:    0,
		}
		api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
		w := httptest.NewRecorder()

		api.HandleMetrics(w, req)

		var response MetricsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.SuccessRate != 0 {
			t.Errorf("expected success rate 0 when no runs, got %f", response.SuccessRate)
		}
	})
}

func TestRegisterRoutes(t *testing.T) {
	mock := newMockMetricsCollector()
	api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	routes := []string{
		"/api/status",
		"/api/runs",
		"/api/metrics",
	}

	for _, route := range routes {
		req := httptest.NewRequest(http.MethodGet, route, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code == http.StatusNotFound {
			t.Errorf("route %s should be registered", route)
		}
	}
}

func TestDashboardAPIFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 30*time.Minute + 15*time.Second, "1h30m15s"},
		{2*time.Hour + 5*time.Minute, "2h5m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("formatDuration(%v) = %s, want %s", tt.duration, result, tt.expected)
			}
		})
	}
}

func TestContentTypeHeader(t *testing.T) {
	mock := newMockMetricsCollector()
	api := NewDashboardAPI(mock, DefaultDashboardAPIConfig())

	endpoints := []string{
		"/api/status",
		"/api/runs",
		"/api/metrics",
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	for _, endpoint := range endpoints {
		req := httptest.NewRequest(http.MethodGet, endpoint, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		contentType := w.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("%s: expected Content-Type 'application/json', got '%s'", endpoint, contentType)
		}
	}
}
