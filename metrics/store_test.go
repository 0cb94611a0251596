package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetricsStore(t *testing.T) {
	t.Run("creates store with default config", func(t *testing.T) {
		config := DefaultStoreConfig()
		startTime := time.Now()
		store := NewMetricsStore(config, startTime)

		if store == nil {
			t.Fatal("expected non-nil store")
		}
		if store.runCap != 100 {
			t.Errorf("expected run capacity 100, got %d", store.runCap)
		}
		if store.version != "0.0.0" {
			t.Errorf("expected version 0.0.0, got %s", store.version)
		}
	})

	t.Run("creates store with custom config", func(t *testing.T) {
		config := StoreConfig{
			RunHistoryCapacity: 50,
			Version:            "1.2.3",
		}
		startTime := time.Now()
		store := NewMetricsStore(config, startTime)

		if store.runCap != 50 {
			t.Errorf("expected run capacity 50, got %d", store.runCap)
		}
		if store.version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %s", store.version)
		}
	})

	t.Run("handles zero capacity by defaulting to 100", func(t *testing.T) {
		config := StoreConfig{RunHistoryCapacity: 0}
		store := NewMetricsStore(config, time.Now())

		if store.runCap != 100 {
			t.Errorf("expected default capacity 100, got %d", store.runCap)
		}
	})
}

func TestMetricsStore_RecordRun(t *testing.T) {
	t.Run("records a single run", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		run := RunRecord{
			ID:        "run-1",
			Stage:     StageReconstruct,
			Status:    RunStatusSuccess,
			StartTime: time.Now().Add(-time.Second),
			EndTime:   time.Now(),
			Duration:  time.Second,
		}

		store.RecordRun(run)

		runs := store.GetRecentRuns(10)
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].ID != "run-1" {
			t.Errorf("expected run ID 'run-1', got '%s'", runs[0].ID)
		}
	})

	t.Run("tracks success count", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		store.RecordRun(RunRecord{ID: "1", Status: RunStatusSuccess, Stage: StageValidate})
		store.RecordRun(RunRecord{ID: "2", Status: RunStatusSuccess, Stage: StageValidate})
		store.RecordRun(RunRecord{ID: "3", Status: RunStatusError, Stage: StageValidate})

		metrics := store.GetRunMetrics()
		if metrics.TotalProcessed != 3 {
			t.Errorf("expected 3 total, got %d", metrics.TotalProcessed)
		}
		if metrics.TotalSuccess != 2 {
			t.Errorf("expected 2 success, got %d", metrics.TotalSuccess)
		}
		if metrics.TotalErrors != 1 {
			t.Errorf("expected 1 error, got %d", metrics.TotalErrors)
		}
	})

	t.Run("tracks per-stage statistics", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		store.RecordRun(RunRecord{ID: "1", Stage: StageReconstruct, Status: RunStatusSuccess, Duration: time.Second})
		store.RecordRun(RunRecord{ID: "2", Stage: StageReconstruct, Status: RunStatusSuccess, Duration: 2 * time.Second})
		store.RecordRun(RunRecord{ID: "3", Stage: StageSynthesizePrimary, Status: RunStatusError, Duration: 5 * time.Second})

		metrics := store.GetRunMetrics()

		reconstructStats, ok := metrics.ByStage[StageReconstruct]
		if !ok {
			t.Fatal("expected reconstruct stats to exist")
		}
		if reconstructStats.Count != 2 {
			t.Errorf("expected 2 reconstruct runs, got %d", reconstructStats.Count)
		}
		if reconstructStats.SuccessRate != 100.0 {
			t.Errorf("expected 100%% reconstruct success rate, got %.1f%%", reconstructStats.SuccessRate)
		}
		expectedAvg := 1500 * time.Millisecond // (1s + 2s) / 2
		if reconstructStats.AvgDuration != expectedAvg {
			t.Errorf("expected avg duration %v, got %v", expectedAvg, reconstructStats.AvgDuration)
		}

		synthStats, ok := metrics.ByStage[StageSynthesizePrimary]
		if !ok {
			t.Fatal("expected synthesize_primary stats to exist")
		}
		if synthStats.SuccessRate != 0.0 {
			t.Errorf("expected 0%% synthesize success rate, got %.1f%%", synthStats.SuccessRate)
		}
	})
}

func TestGetRecentRuns(t *testing.T) {
	t.Run("returns empty slice when no runs", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		runs := store.GetRecentRuns(10)
		if len(runs) != 0 {
			t.Errorf("expected 0 runs, got %d", len(runs))
		}
	})

	t.Run("returns limited number of runs", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		for i := 0; i < 10; i++ {
			store.RecordRun(RunRecord{ID: string(rune('0' + i))})
		}

		runs := store.GetRecentRuns(5)
		if len(runs) != 5 {
			t.Errorf("expected 5 runs, got %d", len(runs))
		}
	})

	t.Run("returns all runs when limit exceeds available", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		store.RecordRun(RunRecord{ID: "1"})
		store.RecordRun(RunRecord{ID: "2"})
		store.RecordRun(RunRecord{ID: "3"})

		runs := store.GetRecentRuns(100)
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})

	t.Run("handles zero and negative limit", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())
		store.RecordRun(RunRecord{ID: "1"})

		if len(store.GetRecentRuns(0)) != 0 {
			t.Error("expected empty slice for limit 0")
		}
		if len(store.GetRecentRuns(-1)) != 0 {
			t.Error("expected empty slice for negative limit")
		}
	})

	t.Run("handles circular buffer wraparound", func(t *testing.T) {
		config := StoreConfig{RunHistoryCapacity: 3}
		store := NewMetricsStore(config, time.Now())

		store.RecordRun(RunRecord{ID: "1"})
		store.RecordRun(RunRecord{ID: "2"})
		store.RecordRun(RunRecord{ID: "3"})
		store.RecordRun(RunRecord{ID: "4"})
		store.RecordRun(RunRecord{ID: "5"})

		runs := store.GetRecentRuns(10)
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}

		expectedIDs := []string{"3", "4", "5"}
		for i, run := range runs {
			if run.ID != expectedIDs[i] {
				t.Errorf("run %d: expected ID '%s', got '%s'", i, expectedIDs[i], run.ID)
			}
		}
	})
}

func TestGetSystemStatus(t *testing.T) {
	t.Run("returns running status with no runs", func(t *testing.T) {
		config := StoreConfig{Version: "1.0.0"}
		store := NewMetricsStore(config, time.Now())

		status := store.GetSystemStatus()
		if status.Health != SystemHealthRunning {
			t.Errorf("expected health 'running', got '%s'", status.Health)
		}
		if status.Version != "1.0.0" {
			t.Errorf("expected version '1.0.0', got '%s'", status.Version)
		}
	})

	t.Run("returns running when recent runs are mostly successful", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		store.RecordRun(RunRecord{ID: "1", Status: RunStatusSuccess})
		store.RecordRun(RunRecord{ID: "2", Status: RunStatusError})
		store.RecordRun(RunRecord{ID: "3", Status: RunStatusSuccess})

		status := store.GetSystemStatus()
		if status.Health != SystemHealthRunning {
			t.Errorf("expected health 'running', got '%s'", status.Health)
		}
	})

	t.Run("returns degraded when recent runs are mostly errors", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		for i := 0; i < 5; i++ {
			store.RecordRun(RunRecord{ID: string(rune('0' + i)), Status: RunStatusError})
		}

		status := store.GetSystemStatus()
		if status.Health != SystemHealthDegraded {
			t.Errorf("expected health 'degraded', got '%s'", status.Health)
		}
	})

	t.Run("calculates uptime correctly", func(t *testing.T) {
		startTime := time.Now().Add(-5 * time.Minute)
		store := NewMetricsStore(DefaultStoreConfig(), startTime)

		status := store.GetSystemStatus()

		if status.Uptime < 4*time.Minute || status.Uptime > 6*time.Minute {
			t.Errorf("expected uptime ~5min, got %v", status.Uptime)
		}
	})
}

func TestMetricsStore_ConcurrentAccess(t *testing.T) {
	t.Run("handles concurrent run recording", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		var wg sync.WaitGroup
		numGoroutines := 100
		runsPerGoroutine := 10

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(goroutineID int) {
				defer wg.Done()
				for j := 0; j < runsPerGoroutine; j++ {
					store.RecordRun(RunRecord{
						ID:     string(rune(goroutineID*runsPerGoroutine + j)),
						Stage:  StageValidate,
						Status: RunStatusSuccess,
					})
				}
			}(i)
		}

		wg.Wait()

		metrics := store.GetRunMetrics()
		expected := int64(numGoroutines * runsPerGoroutine)
		if metrics.TotalProcessed != expected {
			t.Errorf("expected %d runs, got %d", expected, metrics.TotalProcessed)
		}
	})

	t.Run("handles concurrent reads and writes", func(t *testing.T) {
		store := NewMetricsStore(DefaultStoreConfig(), time.Now())

		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					store.RecordRun(RunRecord{ID: string(rune(id*100 + j)), Status: RunStatusSuccess})
				}
			}(i)
		}

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = store.GetRecentRuns(10)
					_ = store.GetRunMetrics()
					_ = store.GetSystemStatus()
				}
			}()
		}

		wg.Wait()
	})
}

func TestImplementsMetricsCollector(t *testing.T) {
	var _ MetricsCollector = (*MetricsStore)(nil)
}
