package main

import (
	"github.com/spf13/cobra"

	"sqlitegraph/internal/backend"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every node's id and name, ascending by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		ids, err := e.AllNodeIDs()
		if err != nil {
			return err
		}

		type row struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		rows := make([]row, 0, len(ids))
		for _, id := range ids {
			node, err := e.GetNode(id)
			if err != nil {
				return err
			}
			rows = append(rows, row{ID: backend.NodeID(node.ID).String(), Name: node.Name})
		}

		return printJSON(rows)
	},
}
