package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/observability"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List all known leads",
	RunE:  runLeads,
}

var (
	leadsConfigPath string
	leadsBackend    string
	leadsDBPath     string
	leadsDBURL      string
)

func init() {
	leadsCmd.Flags().StringVar(&leadsConfigPath, "config", "", "Path to config.json file")
	leadsCmd.Flags().StringVar(&leadsBackend, "backend", "", "Storage backend: memory, sqlite, or postgres")
	leadsCmd.Flags().StringVar(&leadsDBPath, "db", "", "SQLite database file path")
	leadsCmd.Flags().StringVar(&leadsDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(cmd, leadsConfigPath, leadsBackend, leadsDBPath, leadsDBURL, "", false)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	leads, err := st.ListLeads(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintLeads(leads)
	return nil
}
