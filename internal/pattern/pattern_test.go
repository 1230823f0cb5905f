package pattern

import (
	"reflect"
	"testing"

	"sqlitegraph/internal/backend"
)

// fakeStore is a minimal in-memory Matcher for exercising pattern.Search.
type fakeStore struct {
	nodes map[int64]struct{ kind, name string }
	out   map[int64][]fakeEdge
	props map[int64]map[string]string
}

type fakeEdge struct {
	to       int64
	edgeType string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes: map[int64]struct{ kind, name string }{},
		out:   map[int64][]fakeEdge{},
		props: map[int64]map[string]string{},
	}
}

func (s *fakeStore) addNode(id int64, kind, name string) {
	s.nodes[id] = struct{ kind, name string }{kind, name}
}

func (s *fakeStore) addEdge(from, to int64, edgeType string) {
	s.out[from] = append(s.out[from], fakeEdge{to: to, edgeType: edgeType})
}

func (s *fakeStore) NodeExists(id int64) (bool, error) {
	_, ok := s.nodes[id]
	return ok, nil
}

func (s *fakeStore) NodeKindName(id int64) (string, string, error) {
	n, ok := s.nodes[id]
	if !ok {
		return "", "", nil
	}
	return n.kind, n.name, nil
}

func (s *fakeStore) HasLabel(id int64, label string) (bool, error) {
	return false, nil
}

func (s *fakeStore) PropertyEquals(id int64, key, value string) (bool, error) {
	return s.props[id][key] == value, nil
}

func (s *fakeStore) Neighbors(node int64, q backend.NeighborQuery) ([]int64, error) {
	var out []int64
	for _, e := range s.out[node] {
		if q.EdgeType != "" && q.EdgeType != e.edgeType {
			continue
		}
		out = append(out, e.to)
	}
	return out, nil
}

func diamond() *fakeStore {
	s := newFakeStore()
	s.addNode(1, "Fn", "root")
	s.addNode(2, "Fn", "left")
	s.addNode(3, "Fn", "right")
	s.addNode(4, "Fn", "sink")
	s.addEdge(1, 2, "calls")
	s.addEdge(1, 3, "calls")
	s.addEdge(2, 4, "calls")
	s.addEdge(3, 4, "calls")
	return s
}

func TestSearch_EmptyLegsMatchesSelf(t *testing.T) {
	s := diamond()
	got, err := Search(s, NewCache(), 1, backend.Pattern{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSearch_MissingStartYieldsNoMatches(t *testing.T) {
	s := diamond()
	got, err := Search(s, NewCache(), 99, backend.Pattern{Legs: []backend.Leg{{Direction: backend.Outgoing, EdgeType: "calls"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestSearch_TwoLegPattern(t *testing.T) {
	s := diamond()
	p := backend.Pattern{Legs: []backend.Leg{
		{Direction: backend.Outgoing, EdgeType: "calls"},
		{Direction: backend.Outgoing, EdgeType: "calls"},
	}}
	got, err := Search(s, NewCache(), 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{1, 2, 4}, {1, 3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSearch_FastPathKindGlob(t *testing.T) {
	s := diamond()
	p := backend.Pattern{Legs: []backend.Leg{
		{Direction: backend.Outgoing, EdgeType: "calls", NextConstraint: backend.NodeConstraint{Kind: "F*"}},
	}}
	got, err := Search(s, NewCache(), 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{1, 2}, {1, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSearch_FastPathUsesCache(t *testing.T) {
	s := diamond()
	cache := NewCache()
	p := backend.Pattern{Legs: []backend.Leg{
		{Direction: backend.Outgoing, EdgeType: "calls", NextConstraint: backend.NodeConstraint{Kind: "Fn"}},
	}}

	first, err := Search(s, cache, 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutate the underlying store directly; the cached result must not
	// reflect the change until Invalidate is called.
	s.addEdge(1, 99, "calls")
	s.addNode(99, "Fn", "new")

	second, err := Search(s, cache, 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result changed: first %v, second %v", first, second)
	}

	cache.Invalidate()
	third, err := Search(s, cache, 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reflect.DeepEqual(third, second) {
		t.Error("expected fresh result after Invalidate to include the new edge")
	}
}

func TestSearch_DuplicateSequencesSuppressed(t *testing.T) {
	s := newFakeStore()
	s.addNode(1, "Fn", "a")
	s.addNode(2, "Fn", "b")
	s.addEdge(1, 2, "calls")
	s.addEdge(1, 2, "calls") // duplicate edge in the input

	p := backend.Pattern{Legs: []backend.Leg{{Direction: backend.Outgoing, EdgeType: "calls"}}}
	got, err := Search(s, NewCache(), 1, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int64{{1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
