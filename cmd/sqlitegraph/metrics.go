package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sqlitegraph/internal/benchgate"
)

var metricsReset bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print recorded bench-gate metrics in human-readable form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if metricsReset {
			benchgate.SetFilePathOverride("")
		}

		metrics, err := benchgate.Load()
		if err != nil {
			return err
		}

		for _, m := range metrics {
			line := m.Name
			if m.OpsPerSec != nil {
				line += fmt.Sprintf("  %s ops/sec", humanize.Comma(int64(*m.OpsPerSec)))
			}
			if m.BytesPerSec != nil {
				line += fmt.Sprintf("  %s/sec", humanize.Bytes(uint64(*m.BytesPerSec)))
			}
			if m.Notes != "" {
				line += "  (" + m.Notes + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsReset, "reset-metrics", false, "Clear the process-wide bench file path override")
}
