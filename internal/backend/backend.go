// Package backend defines the polymorphic storage contract (spec §4.D) that
// both the SQL-backed and native engines satisfy, plus the shared input
// structs used across every component that mutates or queries the graph.
package backend

import "encoding/json"

// NodeSpec describes a node to be inserted (spec §4.D).
type NodeSpec struct {
	Kind     string
	Name     string
	FilePath string // optional; empty means absent
	Data     json.RawMessage
}

// EdgeSpec describes an edge to be inserted (spec §4.D).
type EdgeSpec struct {
	From     int64
	To       int64
	EdgeType string
	Data     json.RawMessage
}

// Direction selects outgoing or incoming adjacency. It is declared here,
// separately from storage.Direction, so callers of this package don't need
// to import internal/storage directly for the common case.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// NeighborQuery parameterises Neighbors (spec §4.D).
type NeighborQuery struct {
	Direction Direction
	EdgeType  string // empty means unfiltered
}

// ChainStep is one step of a chain query (spec §4.D, §4.B chain_query).
type ChainStep struct {
	Direction Direction
	EdgeType  string // empty means unfiltered
}

// Node is the materialised form of a stored node.
type Node struct {
	ID       int64
	Kind     string
	Name     string
	FilePath string
	Data     json.RawMessage
}

// Edge is the materialised form of a stored edge.
type Edge struct {
	ID       int64
	From     int64
	To       int64
	EdgeType string
	Data     json.RawMessage
}

// NodeConstraint matches on any subset of {kind, name prefix,
// label-membership, property-equality} (spec §4.F).
type NodeConstraint struct {
	Kind       string // empty means unconstrained. pattern.Search matches it as a
	                  // doublestar glob (e.g. "Fn*"); the reasoning filter step
	                  // compares it exactly.
	NamePrefix string
	HasLabel   string
	PropKey    string
	PropValue  string // only meaningful when PropKey != ""
}

// Empty reports whether the constraint matches every node.
func (c NodeConstraint) Empty() bool {
	return c.Kind == "" && c.NamePrefix == "" && c.HasLabel == "" && c.PropKey == ""
}

// Leg is one step of a pattern: a direction, optional edge-type constraint,
// and optional next-node constraint (spec §4.F, GLOSSARY "Leg").
type Leg struct {
	Direction  Direction
	EdgeType   string // empty means unfiltered
	NextConstraint NodeConstraint
}

// Pattern is a root constraint plus an ordered list of legs (spec §4.F).
type Pattern struct {
	Root NodeConstraint
	Legs []Leg
}

// Backend is the capability set every engine variant (and a reference to
// one) must satisfy (spec §4.D, §9 "Polymorphism over engines"). Traversal
// methods beyond Neighbors/NodeDegree are implemented once, generically, in
// package traverse, and each engine exposes them through thin methods that
// call those functions; the interface still lists them so callers can depend
// on one capability set.
type Backend interface {
	InsertNode(spec NodeSpec) (int64, error)
	GetNode(id int64) (*Node, error)
	InsertEdge(spec EdgeSpec) (int64, error)
	Neighbors(node int64, q NeighborQuery) ([]int64, error)
	NodeDegree(node int64) (outgoing, incoming int, err error)
	BFS(start int64, depth int) ([]int64, error)
	ShortestPath(start, end int64) ([]int64, bool, error)
	KHop(start int64, depth int, direction Direction) ([]int64, error)
	KHopFiltered(start int64, depth int, direction Direction, allowedEdgeTypes []string) ([]int64, error)
	ChainQuery(start int64, steps []ChainStep) ([]int64, error)
	PatternSearch(start int64, p Pattern) ([][]int64, error)

	// HasLabel and PropertyEquals back the node-constraint checks used by
	// the pattern and safety packages without either needing engine-private
	// storage details.
	HasLabel(node int64, label string) (bool, error)
	PropertyEquals(node int64, key, value string) (bool, error)
	NodeExists(node int64) (bool, error)
	NodeKindName(node int64) (kind, name string, err error)

	// Kind reports which concrete engine variant this is ("sql" or "native").
	Kind() string
}
