// Package reasoning implements the reasoning pipeline and its text DSL
// (spec §4.G): an ordered sequence of Pattern/KHops/Filter/Score steps
// executed over a working set of node ids, plus a small parser from text
// into PatternQuery/Pipeline/SubgraphRequest/Error.
package reasoning

import (
	"sort"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/pattern"
	"sqlitegraph/internal/storage"
)

// StepKind discriminates a pipeline step.
type StepKind int

const (
	StepPattern StepKind = iota
	StepKHops
	StepFilter
	StepScore
)

// Step is one pipeline step; only the fields relevant to Kind are read.
type Step struct {
	Kind       StepKind
	Pattern    backend.Pattern
	Depth      int
	Direction  backend.Direction
	Constraint backend.NodeConstraint
	Weights    ScoreWeights
}

// ScoredNode is one element of a Score step's output.
type ScoredNode struct {
	ID    int64
	Score float64
}

// Validate enforces spec §4.G's pipeline-shape rules: at most one Filter,
// at most one Score which must appear last.
func Validate(steps []Step) error {
	filterCount := 0
	scoreCount := 0
	for i, s := range steps {
		switch s.Kind {
		case StepFilter:
			filterCount++
		case StepScore:
			scoreCount++
			if i != len(steps)-1 {
				return storage.New(storage.KindDslParseError, "score step must be last in the pipeline")
			}
		}
	}
	if filterCount > 1 {
		return storage.New(storage.KindDslParseError, "at most one filter step is allowed")
	}
	if scoreCount > 1 {
		return storage.New(storage.KindDslParseError, "at most one score step is allowed")
	}
	return nil
}

// Execute runs steps over roots (spec §4.G). An empty seed set produces
// empty output regardless of remaining steps.
func Execute(b backend.Backend, roots []int64, steps []Step) ([]ScoredNode, error) {
	if err := Validate(steps); err != nil {
		return nil, err
	}

	set := append([]int64(nil), roots...)

	var scored []ScoredNode
	haveScores := false

	for _, step := range steps {
		if len(set) == 0 {
			return nil, nil
		}

		switch step.Kind {
		case StepPattern:
			set = stepPattern(b, set, step.Pattern)
		case StepKHops:
			next, err := stepKHops(b, set, step.Depth, step.Direction)
			if err != nil {
				return nil, err
			}
			set = next
		case StepFilter:
			next, err := stepFilter(b, set, step.Constraint)
			if err != nil {
				return nil, err
			}
			set = next
		case StepScore:
			next, err := stepScore(b, set, step.Weights)
			if err != nil {
				return nil, err
			}
			scored = next
			haveScores = true
		}
	}

	if haveScores {
		return scored, nil
	}

	out := make([]ScoredNode, len(set))
	for i, id := range set {
		out[i] = ScoredNode{ID: id}
	}
	return out, nil
}

func stepPattern(b backend.Backend, set []int64, p backend.Pattern) []int64 {
	seen := map[int64]bool{}
	var out []int64
	noopCache := pattern.NewCache()
	for _, n := range set {
		matches, err := pattern.Search(b, noopCache, n, p)
		if err != nil {
			continue
		}
		for _, seq := range matches {
			for _, id := range seq {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func stepKHops(b backend.Backend, set []int64, depth int, direction backend.Direction) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	for _, n := range set {
		hop, err := b.KHop(n, depth, direction)
		if err != nil {
			return nil, err
		}
		for _, id := range hop {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func stepFilter(b backend.Backend, set []int64, c backend.NodeConstraint) ([]int64, error) {
	var out []int64
	for _, n := range set {
		ok, err := matchesConstraint(b, n, c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func matchesConstraint(b backend.Backend, node int64, c backend.NodeConstraint) (bool, error) {
	if c.Empty() {
		return true, nil
	}
	kind, name, err := b.NodeKindName(node)
	if err != nil {
		return false, err
	}
	if c.Kind != "" && kind != c.Kind {
		return false, nil
	}
	if c.NamePrefix != "" && len(name) < len(c.NamePrefix) {
		return false, nil
	}
	if c.NamePrefix != "" && name[:len(c.NamePrefix)] != c.NamePrefix {
		return false, nil
	}
	if c.HasLabel != "" {
		ok, err := b.HasLabel(node, c.HasLabel)
		if err != nil || !ok {
			return false, err
		}
	}
	if c.PropKey != "" {
		ok, err := b.PropertyEquals(node, c.PropKey, c.PropValue)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
