// Package main provides the lead-agent CLI: qualify inbound leads, analyze
// replies, and inspect the resulting CRM state.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lead_agent",
	Short: "AI lead qualification agent",
	Long:  "lead_agent qualifies inbound sales leads from free-text email content, scores and prioritizes them deterministically, and maintains a per-lead qualification record and interaction timeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
