package reasoning

import (
	"strconv"
	"strings"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/storage"
)

// ResultKind discriminates a parsed DSL result (spec §4.G).
type ResultKind int

const (
	ResultPatternQuery ResultKind = iota
	ResultPipeline
	ResultSubgraphRequest
)

// SubgraphRequest is produced by the "k-hop type=KIND" form.
type SubgraphRequest struct {
	Depth     int
	Direction backend.Direction
	Kind      string // empty means unfiltered
}

// Result is the parsed form of one DSL input. Exactly one of Pattern,
// Pipeline, Subgraph is populated, per Kind.
type Result struct {
	Kind     ResultKind
	Pattern  backend.Pattern
	Pipeline []Step
	Subgraph SubgraphRequest
}

// Parse parses DSL text into a Result, or a DslParseError on any unknown
// token, conflicting clause, negative repetition, or repeated
// "filter type=" clause (spec §4.G). Whitespace-insensitive outside quoted
// property values.
func Parse(input string) (Result, error) {
	fields := tokenize(input)
	if len(fields) == 0 {
		return Result{}, storage.New(storage.KindDslParseError, "empty input")
	}

	if fields[0] == "pattern" {
		return parsePatternFilter(fields)
	}

	if hopN, ok := hopCount(fields[0]); ok {
		return parseKHop(hopN, fields[1:])
	}

	if len(fields) == 1 {
		legs, err := parseChainToken(fields[0])
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultPatternQuery, Pattern: backend.Pattern{Legs: legs}}, nil
	}

	return Result{}, storage.New(storage.KindDslParseError, "unrecognised token sequence").WithDetail("input", input)
}

// tokenize splits on whitespace, keeping the contents of double-quoted
// spans as a single token (spec §4.G "whitespace-insensitive except within
// quoted property values").
func tokenize(input string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			if inQuote {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

// hopCount recognises a "<N>-hop" token.
func hopCount(token string) (int, bool) {
	suffix := "-hop"
	if !strings.HasSuffix(token, suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(token, suffix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseKHop(depth int, rest []string) (Result, error) {
	if depth < 0 {
		return Result{}, storage.New(storage.KindDslParseError, "negative repetition/depth")
	}

	kind := ""
	filterSeen := 0
	for _, tok := range rest {
		k, ok := strings.CutPrefix(tok, "type=")
		if !ok {
			return Result{}, storage.New(storage.KindDslParseError, "unknown clause").WithDetail("token", tok)
		}
		filterSeen++
		kind = k
	}
	if filterSeen > 1 {
		return Result{}, storage.New(storage.KindDslParseError, "more than one type= clause")
	}

	return Result{
		Kind:     ResultSubgraphRequest,
		Subgraph: SubgraphRequest{Depth: depth, Direction: backend.Outgoing, Kind: kind},
	}, nil
}

func parsePatternFilter(fields []string) (Result, error) {
	if len(fields) < 2 {
		return Result{}, storage.New(storage.KindDslParseError, "pattern clause requires a chain token")
	}

	legs, err := parseChainToken(fields[1])
	if err != nil {
		return Result{}, err
	}

	steps := []Step{{Kind: StepPattern, Pattern: backend.Pattern{Legs: legs}}}

	rest := fields[2:]
	filterClauses := 0
	for i := 0; i < len(rest); i++ {
		if rest[i] != "filter" {
			return Result{}, storage.New(storage.KindDslParseError, "unknown clause after pattern").WithDetail("token", rest[i])
		}
		if i+1 >= len(rest) {
			return Result{}, storage.New(storage.KindDslParseError, "filter clause missing type=")
		}
		kind, ok := strings.CutPrefix(rest[i+1], "type=")
		if !ok {
			return Result{}, storage.New(storage.KindDslParseError, "filter clause must be type=KIND")
		}
		filterClauses++
		if filterClauses > 1 {
			return Result{}, storage.New(storage.KindDslParseError, "more than one filter type= clause")
		}
		steps = append(steps, Step{Kind: StepFilter, Constraint: backend.NodeConstraint{Kind: kind}})
		i++
	}

	return Result{Kind: ResultPipeline, Pipeline: steps}, nil
}

// parseChainToken parses "TYPE", "TYPE->TYPE->…", or "TYPE*N" into legs, all
// Outgoing with an unconstrained next-node (spec §4.G).
func parseChainToken(token string) ([]backend.Leg, error) {
	if strings.Contains(token, "*") {
		parts := strings.SplitN(token, "*", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, storage.New(storage.KindDslParseError, "malformed repetition").WithDetail("token", token)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, storage.New(storage.KindDslParseError, "malformed repetition count").WithDetail("token", token)
		}
		if n < 0 {
			return nil, storage.New(storage.KindDslParseError, "negative repetition").WithDetail("token", token)
		}
		legs := make([]backend.Leg, n)
		for i := range legs {
			legs[i] = backend.Leg{Direction: backend.Outgoing, EdgeType: parts[0]}
		}
		return legs, nil
	}

	parts := strings.Split(token, "->")
	legs := make([]backend.Leg, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, storage.New(storage.KindDslParseError, "empty edge type in chain").WithDetail("token", token)
		}
		legs = append(legs, backend.Leg{Direction: backend.Outgoing, EdgeType: p})
	}
	return legs, nil
}
