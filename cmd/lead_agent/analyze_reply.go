package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/agent"
	"github.com/jonathan/lead-agent/internal/observability"
	"github.com/jonathan/lead-agent/internal/snapshot"
	"github.com/jonathan/lead-agent/internal/types"
)

var analyzeReplyCmd = &cobra.Command{
	Use:   "analyze-reply",
	Short: "Analyze an inbound reply and update the lead's qualification",
	Long: `Classifies a reply from a known (or new) sender, rescores the lead, and
persists the updated qualification record plus a reply_analyzed audit event.
When the model is unavailable the analysis degrades to deterministic keyword
classification instead of failing.`,
	RunE: runAnalyzeReply,
}

var (
	replyConfigPath string
	replyBackend    string
	replyDBPath     string
	replyDBURL      string
	replyAPIKey     string
	replyVerbose    bool

	replyEmail    string
	replySubject  string
	replyBodyFile string
)

func init() {
	analyzeReplyCmd.Flags().StringVar(&replyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	analyzeReplyCmd.Flags().StringVar(&replyBackend, "backend", "", "Storage backend: memory, sqlite, or postgres")
	analyzeReplyCmd.Flags().StringVar(&replyDBPath, "db", "", "SQLite database file path")
	analyzeReplyCmd.Flags().StringVar(&replyDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	analyzeReplyCmd.Flags().StringVar(&replyAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeReplyCmd.Flags().BoolVarP(&replyVerbose, "verbose", "v", false, "Print detailed debug information")

	analyzeReplyCmd.Flags().StringVar(&replyEmail, "email", "", "Sender email address (required)")
	analyzeReplyCmd.Flags().StringVar(&replySubject, "subject", "", "Reply subject line")
	analyzeReplyCmd.Flags().StringVar(&replyBodyFile, "body", "", "Path to a file holding the reply text (- for stdin, required)")
	_ = analyzeReplyCmd.MarkFlagRequired("email")
	_ = analyzeReplyCmd.MarkFlagRequired("body")

	rootCmd.AddCommand(analyzeReplyCmd)
}

func runAnalyzeReply(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(cmd, replyConfigPath, replyBackend, replyDBPath, replyDBURL, replyAPIKey, replyVerbose)
	if err != nil {
		return err
	}

	body, err := readBody(replyBodyFile)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	analyzer := agent.NewReplyAnalyzer(client, st)
	result, err := analyzer.Analyze(ctx, &types.ReplyInput{
		SenderEmail:  replyEmail,
		ReplySubject: replySubject,
		ReplyText:    body,
	})
	if err != nil {
		return fmt.Errorf("reply analysis failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintQualification(result.Record, result.DegradedFields, result.Fallback)

	if cfg.Verbose {
		before, after, err := snapshot.NewDifferencer(st).BeforeAfter(ctx, result.LeadID)
		if err != nil {
			return fmt.Errorf("failed to build snapshot: %w", err)
		}
		printer.PrintBeforeAfter(before, after)
	}
	return nil
}
