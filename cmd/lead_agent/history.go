package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/observability"
	"github.com/jonathan/lead-agent/internal/store"
	"github.com/jonathan/lead-agent/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the interaction timeline for a lead",
	RunE:  runHistory,
}

var (
	historyConfigPath string
	historyBackend    string
	historyDBPath     string
	historyDBURL      string
	historyEmail      string
)

func init() {
	historyCmd.Flags().StringVar(&historyConfigPath, "config", "", "Path to config.json file")
	historyCmd.Flags().StringVar(&historyBackend, "backend", "", "Storage backend: memory, sqlite, or postgres")
	historyCmd.Flags().StringVar(&historyDBPath, "db", "", "SQLite database file path")
	historyCmd.Flags().StringVar(&historyDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	historyCmd.Flags().StringVar(&historyEmail, "email", "", "Lead email address (required)")
	_ = historyCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(cmd, historyConfigPath, historyBackend, historyDBPath, historyDBURL, "", false)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	lead, err := findLead(ctx, st, historyEmail)
	if err != nil {
		return err
	}

	events, err := st.History(ctx, lead.LeadID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintTimeline(events)
	return nil
}

// findLead looks a lead up by email, failing with a user-facing error when
// the address is unknown.
func findLead(ctx context.Context, st store.Store, email string) (*types.Lead, error) {
	lead, err := st.FindLeadByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	if lead == nil {
		return nil, fmt.Errorf("no lead found for %s", email)
	}
	return lead, nil
}
