package reasoning

import (
	"sort"

	"sqlitegraph/internal/backend"
)

// PropertyWeight scores a (key, value) match.
type PropertyWeight struct {
	Key    string
	Value  string
	Weight float64
}

// ScoreWeights configures a Score step (spec §4.G "weighted counts of its
// neighbours and label/property matches"). The default zero value scores
// purely by outgoing degree, matching scenario 4 ("scores descending by
// outgoing degree").
type ScoreWeights struct {
	OutgoingNeighbor float64
	IncomingNeighbor float64
	Labels           map[string]float64
	Properties       []PropertyWeight
}

// DefaultScoreWeights scores by outgoing degree alone.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{OutgoingNeighbor: 1}
}

func stepScore(b backend.Backend, set []int64, w ScoreWeights) ([]ScoredNode, error) {
	if w.OutgoingNeighbor == 0 && w.IncomingNeighbor == 0 && len(w.Labels) == 0 && len(w.Properties) == 0 {
		w = DefaultScoreWeights()
	}

	out := make([]ScoredNode, 0, len(set))
	for _, n := range set {
		outDeg, inDeg, err := b.NodeDegree(n)
		if err != nil {
			return nil, err
		}
		score := float64(outDeg)*w.OutgoingNeighbor + float64(inDeg)*w.IncomingNeighbor

		for label, weight := range w.Labels {
			ok, err := b.HasLabel(n, label)
			if err != nil {
				return nil, err
			}
			if ok {
				score += weight
			}
		}
		for _, pw := range w.Properties {
			ok, err := b.PropertyEquals(n, pw.Key, pw.Value)
			if err != nil {
				return nil, err
			}
			if ok {
				score += pw.Weight
			}
		}

		out = append(out, ScoredNode{ID: n, Score: score})
	}

	sortScored(out)
	return out, nil
}

// sortScored orders descending by score, ascending by node-id tiebreak
// (spec §4.G).
func sortScored(nodes []ScoredNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Score != nodes[j].Score {
			return nodes[i].Score > nodes[j].Score
		}
		return nodes[i].ID < nodes[j].ID
	})
}
