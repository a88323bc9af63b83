package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/observability"
	"github.com/jonathan/lead-agent/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the before/after CRM view for a lead",
	Long:  "Renders the synthetic unqualified baseline next to the lead's current derived state. Use --json for machine-readable output.",
	RunE:  runSnapshot,
}

var (
	snapshotConfigPath string
	snapshotBackend    string
	snapshotDBPath     string
	snapshotDBURL      string
	snapshotEmail      string
	snapshotJSON       bool
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotConfigPath, "config", "", "Path to config.json file")
	snapshotCmd.Flags().StringVar(&snapshotBackend, "backend", "", "Storage backend: memory, sqlite, or postgres")
	snapshotCmd.Flags().StringVar(&snapshotDBPath, "db", "", "SQLite database file path")
	snapshotCmd.Flags().StringVar(&snapshotDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	snapshotCmd.Flags().StringVar(&snapshotEmail, "email", "", "Lead email address (required)")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "Emit the views as JSON instead of formatted boxes")
	_ = snapshotCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(cmd, snapshotConfigPath, snapshotBackend, snapshotDBPath, snapshotDBURL, "", false)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	lead, err := findLead(ctx, st, snapshotEmail)
	if err != nil {
		return err
	}

	before, after, err := snapshot.NewDifferencer(st).BeforeAfter(ctx, lead.LeadID)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	if snapshotJSON {
		out := map[string]*snapshot.View{"before": before, "after": after}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	observability.NewPrinter(os.Stdout).PrintBeforeAfter(before, after)
	return nil
}
