// Package main provides the sqlitegraph CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sqlitegraph/internal/backend"
	"sqlitegraph/internal/nativeengine"
	"sqlitegraph/internal/safety"
	"sqlitegraph/internal/sqlengine"
	"sqlitegraph/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "sqlitegraph",
	Short: "Embedded, deterministic graph database CLI",
	Long:  `sqlitegraph is a CLI over an embedded graph store backed by either a SQL engine or a native binary file engine.`,
}

var (
	configPath  string
	dbPath      string
	backendFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "sqlitegraph.db", "Path to the database file")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Engine variant: sql or native (overrides config)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(subgraphCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(explainPipelineCmd)
	rootCmd.AddCommand(dslParseCmd)
	rootCmd.AddCommand(safetyCheckCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		writeErr(err)
		os.Exit(1)
	}
}

// config mirrors spec §6's Configuration table.
type config struct {
	Backend             string            `yaml:"backend"`
	WithoutMigrations   bool              `yaml:"without_migrations"`
	CacheSize           *int              `yaml:"cache_size"`
	PragmaSettings      map[string]string `yaml:"pragma_settings"`
	CreateIfMissing     bool              `yaml:"create_if_missing"`
	ReserveNodeCapacity *int              `yaml:"reserve_node_capacity"`
	ReserveEdgeCapacity *int              `yaml:"reserve_edge_capacity"`
}

func loadConfig() (config, error) {
	cfg := config{Backend: "sql", CreateIfMissing: true}
	if configPath == "" {
		applyBackendFlag(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, storage.Wrap(storage.KindIoFailure, err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, storage.Wrap(storage.KindInvalidInput, err, "parsing config file")
	}
	applyBackendFlag(&cfg)
	return cfg, nil
}

func applyBackendFlag(cfg *config) {
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if cfg.Backend == "" {
		cfg.Backend = "sql"
	}
}

// engine is the capability set the CLI needs beyond backend.Backend.
type engine interface {
	backend.Backend
	safety.Inspector
	SchemaVersion() (int, error)
	Close() error
}

func openEngine(cfg config) (engine, error) {
	switch cfg.Backend {
	case "sql":
		return sqlengine.Open(dbPath, sqlengine.Options{
			WithoutMigrations: cfg.WithoutMigrations,
			CacheSize:         cfg.CacheSize,
			PragmaSettings:    cfg.PragmaSettings,
		})
	case "native":
		return nativeengine.Open(dbPath, nativeengine.Options{
			CreateIfMissing:     cfg.CreateIfMissing,
			ReserveNodeCapacity: cfg.ReserveNodeCapacity,
			ReserveEdgeCapacity: cfg.ReserveEdgeCapacity,
		})
	default:
		return nil, storage.ErrInvalidInput("unknown backend: " + cfg.Backend)
	}
}

// writeErr serialises err as {"error": kind, "detail": ...} per spec §7,
// falling back to plain text for non-taxonomy errors.
func writeErr(err error) {
	kind := storage.KindOf(err)
	if kind == "" {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	payload := map[string]interface{}{"error": string(kind), "detail": err.Error()}
	data, _ := json.Marshal(payload)
	fmt.Fprintln(os.Stderr, string(data))
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return storage.Wrap(storage.KindIoFailure, err, "encoding output")
	}
	fmt.Println(string(data))
	return nil
}
