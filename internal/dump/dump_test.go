package dump

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/pattern"
	"sqlitegraph/internal/safety"
	"sqlitegraph/internal/traverse"
)

// memSource is a fixed, in-memory Source for Dump.
type memSource struct {
	nodes []backend.Node
	edges []backend.Edge
	labels []safety.LabelRow
	props  []PropertyFull
}

func (s memSource) AllNodesFull() ([]backend.Node, error)          { return s.nodes, nil }
func (s memSource) AllEdgesFull() ([]backend.Edge, error)          { return s.edges, nil }
func (s memSource) AllLabels() ([]safety.LabelRow, error)          { return s.labels, nil }
func (s memSource) AllPropertiesFull() ([]PropertyFull, error)     { return s.props, nil }

var _ Source = memSource{}

// memDest is an in-memory Destination that relies on autoincrement ids to
// line up with the dumped ones, exactly as Restore expects of a real engine.
// It also implements Transactor, via a snapshot-and-restore BeginRestore, so
// Restore's atomicity can be exercised without a real database.
type memDest struct {
	nextNode int64
	nodes    map[int64]*backend.Node
	out      map[int64][]int64
	in       map[int64][]int64
	labels   []safety.LabelRow
	props    []PropertyFull
	cache    *pattern.Cache

	// failNodeName makes InsertNode fail for a single node name, for tests
	// that exercise rollback on a destination-level error mid-stream.
	failNodeName string
}

func newMemDest() *memDest {
	return &memDest{
		nodes: map[int64]*backend.Node{},
		out:   map[int64][]int64{},
		in:    map[int64][]int64{},
		cache: pattern.NewCache(),
	}
}

func (d *memDest) InsertNode(spec backend.NodeSpec) (int64, error) {
	if d.failNodeName != "" && spec.Name == d.failNodeName {
		return 0, fmt.Errorf("simulated failure inserting node %q", spec.Name)
	}
	d.nextNode++
	id := d.nextNode
	d.nodes[id] = &backend.Node{ID: id, Kind: spec.Kind, Name: spec.Name, FilePath: spec.FilePath, Data: spec.Data}
	return id, nil
}

// BeginRestore snapshots every field Restore's replay loop can mutate;
// rollback restores them verbatim, and commit is a no-op since nothing but
// this snapshot needs releasing.
func (d *memDest) BeginRestore() (commit func() error, rollback func(), err error) {
	nextNode := d.nextNode
	nodes := make(map[int64]*backend.Node, len(d.nodes))
	for k, v := range d.nodes {
		nodes[k] = v
	}
	out := make(map[int64][]int64, len(d.out))
	for k, v := range d.out {
		out[k] = append([]int64(nil), v...)
	}
	in := make(map[int64][]int64, len(d.in))
	for k, v := range d.in {
		in[k] = append([]int64(nil), v...)
	}
	labels := append([]safety.LabelRow(nil), d.labels...)
	props := append([]PropertyFull(nil), d.props...)

	commit = func() error { return nil }
	rollback = func() {
		d.nextNode = nextNode
		d.nodes = nodes
		d.out = out
		d.in = in
		d.labels = labels
		d.props = props
	}
	return commit, rollback, nil
}

var _ Transactor = (*memDest)(nil)
func (d *memDest) GetNode(id int64) (*backend.Node, error) { return d.nodes[id], nil }
func (d *memDest) InsertEdge(spec backend.EdgeSpec) (int64, error) {
	d.out[spec.From] = append(d.out[spec.From], spec.To)
	d.in[spec.To] = append(d.in[spec.To], spec.From)
	return int64(len(d.out[spec.From])), nil
}
func (d *memDest) Neighbors(node int64, q backend.NeighborQuery) ([]int64, error) {
	if q.Direction == backend.Incoming {
		return d.in[node], nil
	}
	return d.out[node], nil
}
func (d *memDest) NodeDegree(node int64) (int, int, error) { return len(d.out[node]), len(d.in[node]), nil }
func (d *memDest) BFS(start int64, depth int) ([]int64, error) { return traverse.BFS(d, start, depth) }
func (d *memDest) ShortestPath(start, end int64) ([]int64, bool, error) {
	return traverse.ShortestPath(d, start, end)
}
func (d *memDest) KHop(start int64, depth int, direction backend.Direction) ([]int64, error) {
	return traverse.KHop(d, start, depth, direction)
}
func (d *memDest) KHopFiltered(start int64, depth int, direction backend.Direction, allowed []string) ([]int64, error) {
	return traverse.KHopFiltered(d, start, depth, direction, allowed)
}
func (d *memDest) ChainQuery(start int64, steps []backend.ChainStep) ([]int64, error) {
	return traverse.ChainQuery(d, start, steps)
}
func (d *memDest) PatternSearch(start int64, p backend.Pattern) ([][]int64, error) {
	return pattern.Search(d, d.cache, start, p)
}
func (d *memDest) HasLabel(node int64, label string) (bool, error)            { return false, nil }
func (d *memDest) PropertyEquals(node int64, key, value string) (bool, error) { return false, nil }
func (d *memDest) NodeExists(node int64) (bool, error)                        { _, ok := d.nodes[node]; return ok, nil }
func (d *memDest) NodeKindName(node int64) (string, string, error) {
	n, ok := d.nodes[node]
	if !ok {
		return "", "", nil
	}
	return n.Kind, n.Name, nil
}
func (d *memDest) Kind() string { return "mem" }
func (d *memDest) InsertLabel(node int64, label string) error {
	d.labels = append(d.labels, safety.LabelRow{NodeID: node, Label: label})
	return nil
}
func (d *memDest) InsertProperty(node int64, key, value string) error {
	d.props = append(d.props, PropertyFull{NodeID: node, Key: key, Value: value})
	return nil
}

var _ Destination = (*memDest)(nil)

func sampleSource() memSource {
	return memSource{
		nodes: []backend.Node{
			{ID: 1, Kind: "Fn", Name: "a", Data: []byte(`{}`)},
			{ID: 2, Kind: "Fn", Name: "b", Data: []byte(`{}`)},
		},
		edges: []backend.Edge{
			{ID: 1, From: 1, To: 2, EdgeType: "calls", Data: []byte(`{}`)},
		},
		labels: []safety.LabelRow{{NodeID: 1, Label: "entry"}},
		props:  []PropertyFull{{NodeID: 1, Key: "lang", Value: "go"}},
	}
}

func TestDumpThenRestoreRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(sampleSource(), 2, &buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	dest := newMemDest()
	if err := Restore(&buf, dest); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if len(dest.nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(dest.nodes))
	}
	if dest.nodes[1].Name != "a" || dest.nodes[2].Name != "b" {
		t.Errorf("unexpected node names: %+v", dest.nodes)
	}
	if got := dest.out[1]; len(got) != 1 || got[0] != 2 {
		t.Errorf("out[1] = %v, want [2]", got)
	}
	if len(dest.labels) != 1 || dest.labels[0].Label != "entry" {
		t.Errorf("unexpected labels: %+v", dest.labels)
	}
	if len(dest.props) != 1 || dest.props[0].Value != "go" {
		t.Errorf("unexpected properties: %+v", dest.props)
	}
}

func TestDumpWritesControlLineFirst(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(sampleSource(), 2, &buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, `"schema_version":2`) {
		t.Errorf("first line = %q, want it to carry schema_version", first)
	}
	if !strings.Contains(first, `"checksum"`) {
		t.Errorf("first line = %q, want a checksum field", first)
	}
}

func TestRestoreRejectsCorruptedChecksum(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(sampleSource(), 2, &buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	corrupted := strings.Replace(buf.String(), `"name":"a"`, `"name":"tampered"`, 1)

	err := Restore(strings.NewReader(corrupted), newMemDest())
	if err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
}

func TestRestoreRejectsEmptyStream(t *testing.T) {
	err := Restore(strings.NewReader(""), newMemDest())
	if err == nil {
		t.Fatal("expected an error for an empty stream")
	}
}

func TestRestoreRollsBackOnDestinationFailure(t *testing.T) {
	src := sampleSource()
	src.nodes = append(src.nodes, backend.Node{ID: 3, Kind: "Fn", Name: "boom", Data: []byte(`{}`)})

	var buf bytes.Buffer
	if err := Dump(src, 2, &buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	dest := newMemDest()
	dest.failNodeName = "boom"

	if err := Restore(&buf, dest); err == nil {
		t.Fatal("expected an error from the failing node insert")
	}

	if len(dest.nodes) != 0 {
		t.Errorf("expected rollback to leave no nodes, got %d", len(dest.nodes))
	}
	if len(dest.labels) != 0 || len(dest.props) != 0 {
		t.Errorf("expected rollback to discard labels/properties too, got %+v / %+v", dest.labels, dest.props)
	}
}

func TestRestoreRejectsUnknownKindBeforeApplyingAnything(t *testing.T) {
	// No checksum field, so this exercises the decode pass itself rather
	// than the earlier checksum check: the first line would apply cleanly,
	// but the second line's unrecognized kind must stop it from ever being
	// applied.
	stream := `{"schema_version":2}` + "\n" +
		`{"kind":"entity","id":1,"node_kind":"Fn","name":"a","data":{}}` + "\n" +
		`{"kind":"mystery","id":2}` + "\n"

	dest := newMemDest()
	err := Restore(strings.NewReader(stream), dest)
	if err == nil {
		t.Fatal("expected an error for an unknown line kind")
	}
	if len(dest.nodes) != 0 {
		t.Errorf("expected the decode pass to reject the stream before applying anything, got %d nodes", len(dest.nodes))
	}
}
