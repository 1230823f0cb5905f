// Package benchgate records deterministic per-benchmark metrics and gates
// merges on them (spec §4.K): recorded ops/sec and bytes/sec, a threshold
// check, and a tolerance-banded baseline comparison.
package benchgate

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"

	"sqlitegraph/internal/storage"
)

const defaultFileName = "bench_results.json"

var (
	pathMu      sync.RWMutex
	overridePath string
)

// SetFilePathOverride redirects every subsequent Record/Load call to path
// for the remainder of the process (spec §6 "process-wide setter", §9
// "only the bench-file path override is process-wide").
func SetFilePathOverride(path string) {
	pathMu.Lock()
	overridePath = path
	pathMu.Unlock()
}

// filePath resolves the active bench-results path: explicit override, then
// BENCH_FILE_OVERRIDE, then the fixed default name.
func filePath() string {
	pathMu.RLock()
	p := overridePath
	pathMu.RUnlock()
	if p != "" {
		return p
	}
	if env := os.Getenv("BENCH_FILE_OVERRIDE"); env != "" {
		return env
	}
	return defaultFileName
}

// Metric is one recorded benchmark result (spec §4.K). RunID correlates a
// recorded metric with a particular bench invocation (grounded on
// kailab-control's uuid.New().String() id-generator pattern); Record fills
// it in when the caller leaves it blank.
type Metric struct {
	Name        string   `json:"name"`
	RunID       string   `json:"run_id,omitempty"`
	OpsPerSec   *float64 `json:"ops_per_sec,omitempty"`
	BytesPerSec *float64 `json:"bytes_per_sec,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Record appends or replaces (by name) the metric in the active bench
// file.
func Record(m Metric) error {
	if m.RunID == "" {
		m.RunID = uuid.New().String()
	}

	metrics, err := Load()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range metrics {
		if existing.Name == m.Name {
			metrics[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		metrics = append(metrics, m)
	}

	return save(metrics)
}

// Load reads every recorded metric; a missing file yields an empty slice.
func Load() ([]Metric, error) {
	data, err := os.ReadFile(filePath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Wrap(storage.KindIoFailure, err, "reading bench results file")
	}

	var metrics []Metric
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, storage.Wrap(storage.KindIoFailure, err, "parsing bench results file")
	}
	return metrics, nil
}

func save(metrics []Metric) error {
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "encoding bench results")
	}
	if err := os.WriteFile(filePath(), data, 0o644); err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "writing bench results file")
	}
	return nil
}

// CheckThresholds fails when the named metric's recorded ops/sec is below
// threshold, or the metric is absent.
func CheckThresholds(name string, threshold float64) error {
	metrics, err := Load()
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if m.Name == name {
			if m.OpsPerSec == nil || *m.OpsPerSec < threshold {
				return storage.New(storage.KindSafetyViolation, "benchmark below ops/sec threshold").
					WithDetail("name", name).WithDetail("threshold", threshold)
			}
			return nil
		}
	}
	return storage.New(storage.KindInvalidInput, "no recorded metric with that name").WithDetail("name", name)
}

// Comparison is the result of CompareToBaseline.
type Comparison struct {
	Name       string
	Current    float64
	Baseline   float64
	Regression bool
}

// CompareToBaseline flags a regression when current falls more than
// tolerance (a fraction, e.g. 0.1 for 10%) below baseline (grounded on
// original_source's bench_regression.rs tolerance-band semantics).
func CompareToBaseline(name string, current, baseline, tolerance float64) Comparison {
	floor := baseline * (1 - tolerance)
	return Comparison{
		Name:       name,
		Current:    current,
		Baseline:   baseline,
		Regression: current < floor,
	}
}
