package main

import (
	"github.com/spf13/cobra"

	"sqlitegraph/internal/safety"
)

var (
	safetyStrict bool
	safetyDeep   bool
	safetySweep  bool
)

var safetyCheckCmd = &cobra.Command{
	Use:   "safety-check",
	Short: "Run the cross-table integrity validator",
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

		report, err := safety.Check(e, safety.Options{Strict: safetyStrict, DeepSweep: safetyDeep || safetySweep})
		if err != nil {
			return err
		}

		return printJSON(report)
	},
}

func init() {
	safetyCheckCmd.Flags().BoolVar(&safetyStrict, "strict", false, "Fail on any non-zero counter")
	safetyCheckCmd.Flags().BoolVar(&safetyDeep, "deep", false, "Run the deep sweep")
	safetyCheckCmd.Flags().BoolVar(&safetySweep, "sweep", false, "Alias for --deep")
}
