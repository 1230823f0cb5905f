package main

import (
	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/reasoning"
)

// describePattern renders a backend.Pattern as plain data for JSON output.
func describePattern(p backend.Pattern) map[string]interface{} {
	legs := make([]map[string]interface{}, len(p.Legs))
	for i, leg := range p.Legs {
		legs[i] = map[string]interface{}{
			"direction": directionName(leg.Direction),
			"edge_type": leg.EdgeType,
		}
	}
	return map[string]interface{}{"legs": legs}
}

func directionName(d backend.Direction) string {
	if d == backend.Incoming {
		return "incoming"
	}
	return "outgoing"
}

// describeResult renders a parsed reasoning.Result as plain data, shared by
// dsl-parse and explain-pipeline.
func describeResult(r reasoning.Result) map[string]interface{} {
	switch r.Kind {
	case reasoning.ResultPatternQuery:
		return map[string]interface{}{"kind": "pattern_query", "pattern": describePattern(r.Pattern)}
	case reasoning.ResultPipeline:
		steps := make([]map[string]interface{}, len(r.Pipeline))
		for i, s := range r.Pipeline {
			steps[i] = describeStep(s)
		}
		return map[string]interface{}{"kind": "pipeline", "steps": steps}
	case reasoning.ResultSubgraphRequest:
		return map[string]interface{}{
			"kind": "subgraph_request",
			"subgraph": map[string]interface{}{
				"depth":     r.Subgraph.Depth,
				"direction": directionName(r.Subgraph.Direction),
				"kind":      r.Subgraph.Kind,
			},
		}
	default:
		return map[string]interface{}{"kind": "unknown"}
	}
}

func describeStep(s reasoning.Step) map[string]interface{} {
	switch s.Kind {
	case reasoning.StepPattern:
		return map[string]interface{}{"step": "pattern", "pattern": describePattern(s.Pattern)}
	case reasoning.StepKHops:
		return map[string]interface{}{"step": "k_hops", "depth": s.Depth, "direction": directionName(s.Direction)}
	case reasoning.StepFilter:
		return map[string]interface{}{"step": "filter", "kind": s.Constraint.Kind}
	case reasoning.StepScore:
		return map[string]interface{}{"step": "score"}
	default:
		return map[string]interface{}{"step": "unknown"}
	}
}
