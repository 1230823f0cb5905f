package main

import (
	"github.com/spf13/cobra"

	"sqlitegraph/internal/storage"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations, or report them with --dry-run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Open without auto-applying migrations first so the reported
		// "before" version reflects what's actually on disk.
		inspectCfg := cfg
		inspectCfg.WithoutMigrations = true
		before, err := openEngine(inspectCfg)
		if err != nil {
			return err
		}
		beforeVersion, err := before.SchemaVersion()
		before.Close()
		if err != nil {
			return err
		}

		pending := storage.CurrentSchemaVersion > beforeVersion

		if migrateDryRun {
			return printJSON(map[string]interface{}{
				"before_version": beforeVersion,
				"target_version": storage.CurrentSchemaVersion,
				"pending":        pending,
			})
		}

		applyCfg := cfg
		applyCfg.WithoutMigrations = false
		after, err := openEngine(applyCfg)
		if err != nil {
			return err
		}
		defer after.Close()

		afterVersion, err := after.SchemaVersion()
		if err != nil {
			return err
		}

		return printJSON(map[string]interface{}{
			"before_version": beforeVersion,
			"after_version":  afterVersion,
			"applied":        afterVersion > beforeVersion,
		})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Report pending migrations without applying them")
}
