package main

import (
	"strings"

	"github.com/spf13/cobra"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/storage"
)

var (
	subgraphRoot  int64
	subgraphDepth int
	subgraphTypes []string
)

var subgraphCmd = &cobra.Command{
	Use:   "subgraph",
	Short: "Print the k-hop subgraph reachable from --root within --depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeTypes, nodeKinds, err := splitTypeFilters(subgraphTypes)
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

		ids, err := e.KHopFiltered(subgraphRoot, subgraphDepth, backend.Outgoing, edgeTypes)
		if err != nil {
			return err
		}

		if len(nodeKinds) > 0 {
			kindSet := make(map[string]bool, len(nodeKinds))
			for _, k := range nodeKinds {
				kindSet[k] = true
			}
			filtered := ids[:0]
			for _, id := range ids {
				kind, _, err := e.NodeKindName(id)
				if err != nil {
					return err
				}
				if kindSet[kind] {
					filtered = append(filtered, id)
				}
			}
			ids = filtered
		}

		return printJSON(map[string]interface{}{"nodes": ids})
	},
}

func init() {
	subgraphCmd.Flags().Int64Var(&subgraphRoot, "root", 0, "Root node id")
	subgraphCmd.Flags().IntVar(&subgraphDepth, "depth", 1, "Traversal depth")
	subgraphCmd.Flags().StringArrayVar(&subgraphTypes, "types", nil, `Repeatable filter, "edge=TYPE" or "node=KIND"`)
	subgraphCmd.MarkFlagRequired("root")
}

// splitTypeFilters separates --types values into edge-type and node-kind
// filters (spec §6 "subgraph --root N --depth D [--types edge=T --types node=K]").
func splitTypeFilters(types []string) (edgeTypes, nodeKinds []string, err error) {
	for _, t := range types {
		edge, ok := strings.CutPrefix(t, "edge=")
		if ok {
			edgeTypes = append(edgeTypes, edge)
			continue
		}
		kind, ok := strings.CutPrefix(t, "node=")
		if ok {
			nodeKinds = append(nodeKinds, kind)
			continue
		}
		return nil, nil, storage.ErrInvalidInput(`--types value must be "edge=TYPE" or "node=KIND": ` + t)
	}
	return edgeTypes, nodeKinds, nil
}
