package main

import (
	"github.com/spf13/cobra"

	"sqlitegraph/internal/reasoning"
)

var explainPipelineDSL string

var explainPipelineCmd = &cobra.Command{
	Use:   "explain-pipeline",
	Short: "Parse DSL text and validate the resulting pipeline shape without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := reasoning.Parse(explainPipelineDSL)
		if err != nil {
			return err
		}
		if result.Kind == reasoning.ResultPipeline {
			if err := reasoning.Validate(result.Pipeline); err != nil {
				return err
			}
		}
		return printJSON(describeResult(result))
	},
}

func init() {
	explainPipelineCmd.Flags().StringVar(&explainPipelineDSL, "dsl", "", "DSL text to explain")
	explainPipelineCmd.MarkFlagRequired("dsl")
}
