package main

import "github.com/spf13/cobra"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the engine kind and schema version",
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

		version, err := e.SchemaVersion()
		if err != nil {
			return err
		}
		ids, err := e.AllNodeIDs()
		if err != nil {
			return err
		}

		return printJSON(map[string]interface{}{
			"backend":        e.Kind(),
			"schema_version": version,
			"entity_count":   len(ids),
		})
	},
}
