package main

import (
	"os"

	"github.com/spf13/cobra"

	"sqlitegraph/internal/reasoning"
	"sqlitegraph/internal/storage"
)

var (
	pipelineDSL   string
	pipelineFile  string
	pipelineRoots []int64
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Parse DSL text (or a file) and execute it over --root node ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsl, err := resolveDSLSource(pipelineDSL, pipelineFile)
		if err != nil {
			return err
		}

		result, err := reasoning.Parse(dsl)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		return runDSLResult(e, result)
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineDSL, "dsl", "", "DSL text to execute")
	pipelineCmd.Flags().StringVar(&pipelineFile, "file", "", "Path to a file containing DSL text")
	pipelineCmd.Flags().Int64SliceVar(&pipelineRoots, "root", nil, "Repeatable root node id")
}

func resolveDSLSource(dsl, file string) (string, error) {
	if dsl != "" && file != "" {
		return "", storage.ErrInvalidInput("specify either --dsl or --file, not both")
	}
	if dsl != "" {
		return dsl, nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", storage.Wrap(storage.KindIoFailure, err, "reading DSL file")
		}
		return string(data), nil
	}
	return "", storage.ErrInvalidInput("one of --dsl or --file is required")
}

// runDSLResult executes a parsed DSL result against an open engine and
// prints its output, dispatching on kind (spec §4.G).
func runDSLResult(e engine, result reasoning.Result) error {
	switch result.Kind {
	case reasoning.ResultPatternQuery:
		out := make(map[int64][][]int64, len(pipelineRoots))
		for _, root := range pipelineRoots {
			matches, err := e.PatternSearch(root, result.Pattern)
			if err != nil {
				return err
			}
			out[root] = matches
		}
		return printJSON(out)

	case reasoning.ResultPipeline:
		scored, err := reasoning.Execute(e, pipelineRoots, result.Pipeline)
		if err != nil {
			return err
		}
		return printJSON(scored)

	case reasoning.ResultSubgraphRequest:
		out := make(map[int64][]int64, len(pipelineRoots))
		for _, root := range pipelineRoots {
			ids, err := e.KHop(root, result.Subgraph.Depth, result.Subgraph.Direction)
			if err != nil {
				return err
			}
			if result.Subgraph.Kind != "" {
				ids = filterByKind(e, ids, result.Subgraph.Kind)
			}
			out[root] = ids
		}
		return printJSON(out)

	default:
		return storage.ErrInvalidInput("unrecognised DSL result kind")
	}
}

func filterByKind(e engine, ids []int64, kind string) []int64 {
	filtered := ids[:0]
	for _, id := range ids {
		nodeKind, _, err := e.NodeKindName(id)
		if err == nil && nodeKind == kind {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
