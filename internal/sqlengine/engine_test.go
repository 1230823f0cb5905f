package sqlengine

import (
	"path/filepath"
	"testing"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/storage"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	e, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpenSeedsSchemaVersion(t *testing.T) {
	e := newTestEngine(t)
	version, err := e.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != storage.CurrentSchemaVersion {
		t.Errorf("got %d, want %d", version, storage.CurrentSchemaVersion)
	}
}

func TestOpenAppliesCacheSizeAndCustomPragma(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	cacheSize := -4000
	e, err := Open(path, Options{
		CacheSize:      &cacheSize,
		PragmaSettings: map[string]string{"foreign_keys": "ON"},
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer e.Close()
}

func TestInsertNodeAssignsSequentialIDs(t *testing.T) {
	e := newTestEngine(t)
	id1, err := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})
	if err != nil {
		t.Fatalf("InsertNode failed: %v", err)
	}
	id2, err := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "b"})
	if err != nil {
		t.Fatalf("InsertNode failed: %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Errorf("got ids %d and %d, want 1 and 2", id1, id2)
	}
}

func TestInsertNodeRejectsEmptyKindOrName(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.InsertNode(backend.NodeSpec{Kind: "", Name: "a"}); storage.KindOf(err) != storage.KindInvalidInput {
		t.Errorf("got %v, want InvalidInput", err)
	}
	if _, err := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: ""}); storage.KindOf(err) != storage.KindInvalidInput {
		t.Errorf("got %v, want InvalidInput", err)
	}
}

func TestGetNodeRoundTrips(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a", FilePath: "a.go", Data: []byte(`{"x":1}`)})
	if err != nil {
		t.Fatalf("InsertNode failed: %v", err)
	}
	node, err := e.GetNode(id)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.Kind != "Fn" || node.Name != "a" || node.FilePath != "a.go" {
		t.Errorf("got %+v", node)
	}
}

func TestGetNodeMissingIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetNode(99)
	if storage.KindOf(err) != storage.KindNotFound {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestInsertEdgeRejectsEmptyEdgeType(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})
	n2, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "b"})
	_, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n2, EdgeType: ""})
	if storage.KindOf(err) != storage.KindInvalidInput {
		t.Errorf("got %v, want InvalidInput", err)
	}
}

func TestNeighborsAndNodeDegree(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})
	n2, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "b"})
	n3, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "c"})

	if _, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n2, EdgeType: "calls"}); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}
	if _, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n3, EdgeType: "imports"}); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}

	out, err := e.Neighbors(n1, backend.NeighborQuery{Direction: backend.Outgoing})
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %v, want 2 neighbors", out)
	}

	filtered, err := e.Neighbors(n1, backend.NeighborQuery{Direction: backend.Outgoing, EdgeType: "calls"})
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0] != n2 {
		t.Errorf("got %v, want [%d]", filtered, n2)
	}

	outDeg, inDeg, err := e.NodeDegree(n1)
	if err != nil {
		t.Fatalf("NodeDegree failed: %v", err)
	}
	if outDeg != 2 || inDeg != 0 {
		t.Errorf("NodeDegree(n1) = %d, %d, want 2, 0", outDeg, inDeg)
	}
}

func TestNeighborsCacheInvalidatedByNewEdge(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})
	n2, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "b"})
	n3, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "c"})

	if _, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n2, EdgeType: "calls"}); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}
	if _, err := e.Neighbors(n1, backend.NeighborQuery{Direction: backend.Outgoing}); err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}

	if _, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n3, EdgeType: "calls"}); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}

	out, err := e.Neighbors(n1, backend.NeighborQuery{Direction: backend.Outgoing})
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %v, want cache to reflect the second insert", out)
	}
}

func TestHasLabelAndInsertLabelIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})

	if ok, _ := e.HasLabel(n1, "entry"); ok {
		t.Fatal("expected no label before InsertLabel")
	}
	if err := e.InsertLabel(n1, "entry"); err != nil {
		t.Fatalf("InsertLabel failed: %v", err)
	}
	if err := e.InsertLabel(n1, "entry"); err != nil {
		t.Fatalf("repeated InsertLabel failed: %v", err)
	}
	if ok, _ := e.HasLabel(n1, "entry"); !ok {
		t.Error("expected label after InsertLabel")
	}
}

func TestInsertPropertyOverwritesValue(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})

	if err := e.InsertProperty(n1, "lang", "go"); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}
	if err := e.InsertProperty(n1, "lang", "rust"); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}
	if ok, _ := e.PropertyEquals(n1, "lang", "rust"); !ok {
		t.Error("expected PropertyEquals to reflect the overwritten value")
	}
	if ok, _ := e.PropertyEquals(n1, "lang", "go"); ok {
		t.Error("expected the stale value to no longer match")
	}
}

func TestNodeExists(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})

	if ok, _ := e.NodeExists(n1); !ok {
		t.Error("expected existing node to report true")
	}
	if ok, _ := e.NodeExists(99); ok {
		t.Error("expected absent node to report false")
	}
}

func TestAllNodeIDsAndAllEdgesForSafety(t *testing.T) {
	e := newTestEngine(t)
	n1, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "a"})
	n2, _ := e.InsertNode(backend.NodeSpec{Kind: "Fn", Name: "b"})
	if _, err := e.InsertEdge(backend.EdgeSpec{From: n1, To: n2, EdgeType: "calls"}); err != nil {
		t.Fatalf("InsertEdge failed: %v", err)
	}

	ids, err := e.AllNodeIDs()
	if err != nil {
		t.Fatalf("AllNodeIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %v, want 2 ids", ids)
	}

	edges, err := e.AllEdges()
	if err != nil {
		t.Fatalf("AllEdges failed: %v", err)
	}
	if len(edges) != 1 || edges[0].From != n1 || edges[0].To != n2 {
		t.Errorf("got %+v", edges)
	}
}

func TestOpenAppliesPendingMigrationFromSeededV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	e, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Roll the freshly-created v2 database back to a hand-seeded v1 state,
	// as if it had been written by an older binary, so the reopen below
	// must actually walk applyPendingMigrations rather than finding
	// everything already at CurrentSchemaVersion.
	if _, err := e.conn.Exec("DELETE FROM graph_meta_history"); err != nil {
		t.Fatalf("seeding v1 failed: %v", err)
	}
	if _, err := e.conn.Exec("UPDATE graph_meta SET schema_version = 1"); err != nil {
		t.Fatalf("seeding v1 failed: %v", err)
	}
	if _, err := e.conn.Exec(
		"INSERT INTO graph_meta_history (version, applied_at) VALUES (1, 0)",
	); err != nil {
		t.Fatalf("seeding v1 failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	version, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != storage.CurrentSchemaVersion {
		t.Errorf("got %d, want %d", version, storage.CurrentSchemaVersion)
	}

	var historyCount int
	if err := reopened.conn.QueryRow("SELECT COUNT(*) FROM graph_meta_history").Scan(&historyCount); err != nil {
		t.Fatalf("querying graph_meta_history failed: %v", err)
	}
	if historyCount != 2 {
		t.Errorf("got %d history rows, want 2 (the seeded v1 row plus the applied v2 step)", historyCount)
	}
}

func TestOpenWithoutMigrationsSkipsApplyingPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	e, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	// Seed a v1 database so a migration is actually pending on reopen.
	if _, err := e.conn.Exec("UPDATE graph_meta SET schema_version = 1"); err != nil {
		t.Fatalf("seeding v1 failed: %v", err)
	}
	e.Close()

	reopened, err := Open(path, Options{WithoutMigrations: true})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	version, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("got %d, want 1 (pending migration left unapplied)", version)
	}
}
