// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Command mediarec-admin performs offline maintenance on a Mediarec
// database: seeding sample data and moderating accounts.
//
//	mediarec-admin seed --db /data/mediarec.duckdb
//	mediarec-admin users list --json
//	mediarec-admin users block 7
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediarec-admin",
		Short: "Mediarec administration tool",
		Long: `mediarec-admin works directly on a Mediarec DuckDB database.

Without --db the database path comes from the server configuration
(config.yaml or DB_PATH). Stop the server first when using a file
database; DuckDB allows a single writer process.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logging.Init(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})
		},
	}

	rootCmd.PersistentFlags().String("db", "", "DuckDB path (overrides configuration)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSeedCmd(),
		newUsersCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "mediarec-admin version %s\n", version)
			return err
		},
	}
}

// openDatabase opens the --db path, or the configured database when the
// flag is empty.
func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	dbCfg := &config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 2}
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration (or pass --db): %w", err)
		}
		dbCfg = &cfg.Database
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbCfg.Path, err)
	}
	return db, nil
}

func closeDatabase(cmd *cobra.Command, db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: close database: %v\n", err)
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
