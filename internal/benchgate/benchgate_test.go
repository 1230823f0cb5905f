package benchgate

import (
	"path/filepath"
	"testing"

	"sqlitegraph/internal/storage"
)

func withTempFile(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench_results.json")
	SetFilePathOverride(path)
	t.Cleanup(func() { SetFilePathOverride("") })
}

func f(v float64) *float64 { return &v }

func TestLoadMissingFileYieldsEmpty(t *testing.T) {
	withTempFile(t)

	metrics, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics != nil {
		t.Errorf("got %v, want nil", metrics)
	}
}

func TestRecordAppendsAndReplaces(t *testing.T) {
	withTempFile(t)

	if err := Record(Metric{Name: "bfs", OpsPerSec: f(1000)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Record(Metric{Name: "khop", OpsPerSec: f(500)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(metrics))
	}

	// Replace bfs's value by name rather than appending a third entry.
	if err := Record(Metric{Name: "bfs", OpsPerSec: f(2000)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("got %d metrics after replace, want 2", len(metrics))
	}
	for _, m := range metrics {
		if m.Name == "bfs" && *m.OpsPerSec != 2000 {
			t.Errorf("bfs ops_per_sec = %v, want 2000", *m.OpsPerSec)
		}
	}
}

func TestRecordFillsRunID(t *testing.T) {
	withTempFile(t)

	if err := Record(Metric{Name: "bfs", OpsPerSec: f(1000)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics[0].RunID == "" {
		t.Error("expected Record to fill a run id when blank")
	}
}

func TestCheckThresholds(t *testing.T) {
	withTempFile(t)

	if err := Record(Metric{Name: "bfs", OpsPerSec: f(1000)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := CheckThresholds("bfs", 500); err != nil {
		t.Errorf("expected pass, got %v", err)
	}

	err := CheckThresholds("bfs", 2000)
	if storage.KindOf(err) != storage.KindSafetyViolation {
		t.Errorf("expected SafetyViolation, got %v", err)
	}

	err = CheckThresholds("missing", 1)
	if storage.KindOf(err) != storage.KindInvalidInput {
		t.Errorf("expected InvalidInput for unknown metric, got %v", err)
	}
}

func TestCompareToBaseline(t *testing.T) {
	tests := []struct {
		name              string
		current, baseline float64
		tolerance         float64
		wantRegression    bool
	}{
		{"within tolerance", 950, 1000, 0.1, false},
		{"exceeds tolerance", 850, 1000, 0.1, true},
		{"improvement", 1200, 1000, 0.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareToBaseline("bfs", tt.current, tt.baseline, tt.tolerance)
			if got.Regression != tt.wantRegression {
				t.Errorf("Regression = %v, want %v", got.Regression, tt.wantRegression)
			}
		})
	}
}
