package main

import (
	"github.com/spf13/cobra"

	"sqlitegraph/internal/reasoning"
)

var dslParseInput string

var dslParseCmd = &cobra.Command{
	Use:   "dsl-parse",
	Short: "Parse DSL text into a pattern/pipeline/subgraph request and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := reasoning.Parse(dslParseInput)
		if err != nil {
			return err
		}
		return printJSON(describeResult(result))
	},
}

func init() {
	dslParseCmd.Flags().StringVar(&dslParseInput, "input", "", "DSL text to parse")
	dslParseCmd.MarkFlagRequired("input")
}
