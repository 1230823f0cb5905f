// Package safety implements the cross-table integrity validator (spec
// §4.H): orphan/duplicate edge detection, invalid label/property
// references, and an optional deep sweep. Usable over any engine variant
// through the Inspector capability subset.
package safety

import (
	"sqlitegraph/internal/storage"
)

// Inspector is the minimal set of raw-listing operations the validator
// needs. Engines implement this in addition to backend.Backend so the
// validator never depends on SQL- or native-specific internals.
type Inspector interface {
	AllEdges() ([]EdgeRow, error)
	AllLabels() ([]LabelRow, error)
	AllProperties() ([]PropertyRow, error)
	AllNodeIDs() ([]int64, error)
	NodeExistsForSafety(id int64) (bool, error)
	NodePayload(id int64) ([]byte, error)
}

type EdgeRow struct {
	ID       int64
	From     int64
	To       int64
	EdgeType string
}

type LabelRow struct {
	NodeID int64
	Label  string
}

type PropertyRow struct {
	NodeID int64
	Key    string
}

// Counters tallies each integrity-check category (spec §4.H).
type Counters struct {
	OrphanEdges             int
	DuplicateEdges          int
	InvalidLabelReferences  int
	InvalidPropertyRefs     int
	OutOfOrderIDs           int
	MalformedPayloads       int
	DuplicateLabelPairs     int
	DuplicatePropertyPairs  int
}

func (c Counters) total() int {
	return c.OrphanEdges + c.DuplicateEdges + c.InvalidLabelReferences + c.InvalidPropertyRefs +
		c.OutOfOrderIDs + c.MalformedPayloads + c.DuplicateLabelPairs + c.DuplicatePropertyPairs
}

// Report is returned by Check (spec §4.H, §8 scenario 5).
type Report struct {
	Counters Counters
}

// Options configures Check.
type Options struct {
	Strict    bool
	DeepSweep bool
}

// Check runs the configured integrity checks. In strict mode, any non-zero
// counter fails the operation with a SafetyViolation error; otherwise the
// report is returned without failure (spec §4.H, §8 scenario 5).
func Check(ins Inspector, opts Options) (*Report, error) {
	report := &Report{}

	edges, err := ins.AllEdges()
	if err != nil {
		return nil, err
	}

	seenTriples := map[string]int{}
	for _, e := range edges {
		fromOK, err := ins.NodeExistsForSafety(e.From)
		if err != nil {
			return nil, err
		}
		toOK, err := ins.NodeExistsForSafety(e.To)
		if err != nil {
			return nil, err
		}
		if !fromOK || !toOK {
			report.Counters.OrphanEdges++
		}

		key := tripleKey(e.From, e.To, e.EdgeType)
		seenTriples[key]++
	}
	for _, count := range seenTriples {
		if count > 1 {
			report.Counters.DuplicateEdges += count - 1
		}
	}

	labels, err := ins.AllLabels()
	if err != nil {
		return nil, err
	}
	seenLabelPairs := map[string]int{}
	for _, l := range labels {
		ok, err := ins.NodeExistsForSafety(l.NodeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Counters.InvalidLabelReferences++
		}
		key := pairKey(l.NodeID, l.Label)
		seenLabelPairs[key]++
	}
	for _, count := range seenLabelPairs {
		if count > 1 {
			report.Counters.DuplicateLabelPairs += count - 1
		}
	}

	props, err := ins.AllProperties()
	if err != nil {
		return nil, err
	}
	seenPropPairs := map[string]int{}
	for _, p := range props {
		ok, err := ins.NodeExistsForSafety(p.NodeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Counters.InvalidPropertyRefs++
		}
		key := pairKey(p.NodeID, p.Key)
		seenPropPairs[key]++
	}
	for _, count := range seenPropPairs {
		if count > 1 {
			report.Counters.DuplicatePropertyPairs += count - 1
		}
	}

	if opts.DeepSweep {
		if err := deepSweep(ins, report); err != nil {
			return nil, err
		}
	}

	if opts.Strict && report.Counters.total() > 0 {
		return report, storage.New(storage.KindSafetyViolation, "integrity violations detected").
			WithDetail("report", report.Counters)
	}

	return report, nil
}

// deepSweep scans entities for out-of-order ids and malformed JSON payloads
// (spec §4.H "Deep sweep"). Duplicate (node,label)/(node,key) pairs are
// already counted above regardless of DeepSweep, since they are cheap to
// detect from the same pass; DeepSweep adds the entity-level checks.
func deepSweep(ins Inspector, report *Report) error {
	ids, err := ins.AllNodeIDs()
	if err != nil {
		return err
	}

	last := int64(0)
	for _, id := range ids {
		if id <= last {
			report.Counters.OutOfOrderIDs++
		}
		last = id

		payload, err := ins.NodePayload(id)
		if err != nil {
			return err
		}
		if !isWellFormedJSON(payload) {
			report.Counters.MalformedPayloads++
		}
	}
	return nil
}

func tripleKey(from, to int64, edgeType string) string {
	return itoa(from) + ">" + itoa(to) + ">" + edgeType
}

func pairKey(node int64, s string) string {
	return itoa(node) + ">" + s
}
