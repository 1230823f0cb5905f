package safety

import (
	"testing"

	"sqlitegraph/internal/storage"
)

type fakeInspector struct {
	edges     []EdgeRow
	labels    []LabelRow
	props     []PropertyRow
	nodeIDs   []int64
	existing  map[int64]bool
	payloads  map[int64][]byte
}

func (f *fakeInspector) AllEdges() ([]EdgeRow, error)           { return f.edges, nil }
func (f *fakeInspector) AllLabels() ([]LabelRow, error)         { return f.labels, nil }
func (f *fakeInspector) AllProperties() ([]PropertyRow, error)  { return f.props, nil }
func (f *fakeInspector) AllNodeIDs() ([]int64, error)           { return f.nodeIDs, nil }
func (f *fakeInspector) NodeExistsForSafety(id int64) (bool, error) {
	return f.existing[id], nil
}
func (f *fakeInspector) NodePayload(id int64) ([]byte, error) { return f.payloads[id], nil }

var _ Inspector = (*fakeInspector)(nil)

func cleanInspector() *fakeInspector {
	return &fakeInspector{
		nodeIDs:  []int64{1, 2, 3},
		existing: map[int64]bool{1: true, 2: true, 3: true},
		edges:    []EdgeRow{{ID: 1, From: 1, To: 2, EdgeType: "calls"}},
		labels:   []LabelRow{{NodeID: 1, Label: "entry"}},
		props:    []PropertyRow{{NodeID: 1, Key: "lang"}},
		payloads: map[int64][]byte{1: []byte(`{}`), 2: []byte(`{}`), 3: []byte(`{}`)},
	}
}

func TestCheck_CleanGraphHasNoViolations(t *testing.T) {
	report, err := Check(cleanInspector(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.total() != 0 {
		t.Errorf("expected zero counters, got %+v", report.Counters)
	}
}

func TestCheck_OrphanEdge(t *testing.T) {
	ins := cleanInspector()
	ins.edges = append(ins.edges, EdgeRow{ID: 2, From: 1, To: 99, EdgeType: "calls"})

	report, err := Check(ins, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.OrphanEdges != 1 {
		t.Errorf("OrphanEdges = %d, want 1", report.Counters.OrphanEdges)
	}
}

func TestCheck_DuplicateEdge(t *testing.T) {
	ins := cleanInspector()
	ins.edges = append(ins.edges, EdgeRow{ID: 2, From: 1, To: 2, EdgeType: "calls"})

	report, err := Check(ins, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.DuplicateEdges != 1 {
		t.Errorf("DuplicateEdges = %d, want 1", report.Counters.DuplicateEdges)
	}
}

func TestCheck_InvalidLabelReference(t *testing.T) {
	ins := cleanInspector()
	ins.labels = append(ins.labels, LabelRow{NodeID: 99, Label: "ghost"})

	report, err := Check(ins, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.InvalidLabelReferences != 1 {
		t.Errorf("InvalidLabelReferences = %d, want 1", report.Counters.InvalidLabelReferences)
	}
}

func TestCheck_StrictModeFailsOnAnyViolation(t *testing.T) {
	ins := cleanInspector()
	ins.edges = append(ins.edges, EdgeRow{ID: 2, From: 1, To: 99, EdgeType: "calls"})

	_, err := Check(ins, Options{Strict: true})
	if storage.KindOf(err) != storage.KindSafetyViolation {
		t.Errorf("got %v, want SafetyViolation", err)
	}
}

func TestCheck_StrictModePassesCleanGraph(t *testing.T) {
	_, err := Check(cleanInspector(), Options{Strict: true})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCheck_DeepSweepDetectsOutOfOrderAndMalformed(t *testing.T) {
	ins := cleanInspector()
	ins.nodeIDs = []int64{1, 3, 2} // out of order
	ins.payloads[2] = []byte(`{not json`)

	report, err := Check(ins, Options{DeepSweep: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.OutOfOrderIDs != 1 {
		t.Errorf("OutOfOrderIDs = %d, want 1", report.Counters.OutOfOrderIDs)
	}
	if report.Counters.MalformedPayloads != 1 {
		t.Errorf("MalformedPayloads = %d, want 1", report.Counters.MalformedPayloads)
	}
}

func TestCheck_WithoutDeepSweepSkipsEntityChecks(t *testing.T) {
	ins := cleanInspector()
	ins.nodeIDs = []int64{1, 3, 2}
	ins.payloads[2] = []byte(`{not json`)

	report, err := Check(ins, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Counters.OutOfOrderIDs != 0 || report.Counters.MalformedPayloads != 0 {
		t.Errorf("expected deep-sweep-only counters to stay zero, got %+v", report.Counters)
	}
}
