package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/agent"
	"github.com/jonathan/lead-agent/internal/observability"
	"github.com/jonathan/lead-agent/internal/snapshot"
	"github.com/jonathan/lead-agent/internal/types"
)

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Qualify an inbound lead from its email content",
	Long: `Analyzes an inbound contact's email, derives a lead score and priority,
and persists the qualification record plus an audit event. Provide a single
lead via flags, or a batch via --in pointing at a JSON array of lead inputs.`,
	RunE: runQualify,
}

var (
	qualifyConfigPath string
	qualifyBackend    string
	qualifyDBPath     string
	qualifyDBURL      string
	qualifyAPIKey     string
	qualifyVerbose    bool

	qualifyEmail       string
	qualifyName        string
	qualifyCompany     string
	qualifyRole        string
	qualifySource      string
	qualifySubject     string
	qualifyBodyFile    string
	qualifyInputFile   string
	qualifyConcurrency int
)

func init() {
	qualifyCmd.Flags().StringVar(&qualifyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	qualifyCmd.Flags().StringVar(&qualifyBackend, "backend", "", "Storage backend: memory, sqlite, or postgres")
	qualifyCmd.Flags().StringVar(&qualifyDBPath, "db", "", "SQLite database file path")
	qualifyCmd.Flags().StringVar(&qualifyDBURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	qualifyCmd.Flags().StringVar(&qualifyAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	qualifyCmd.Flags().BoolVarP(&qualifyVerbose, "verbose", "v", false, "Print detailed debug information")

	qualifyCmd.Flags().StringVar(&qualifyEmail, "email", "", "Lead email address")
	qualifyCmd.Flags().StringVar(&qualifyName, "name", "", "Lead name")
	qualifyCmd.Flags().StringVar(&qualifyCompany, "company", "", "Lead company")
	qualifyCmd.Flags().StringVar(&qualifyRole, "role", "", "Lead role or title")
	qualifyCmd.Flags().StringVar(&qualifySource, "source", "", "Lead source (form, referral, outbound, ...)")
	qualifyCmd.Flags().StringVar(&qualifySubject, "subject", "", "Email subject line")
	qualifyCmd.Flags().StringVar(&qualifyBodyFile, "body", "", "Path to a file holding the email body (- for stdin)")
	qualifyCmd.Flags().StringVarP(&qualifyInputFile, "in", "i", "", "Path to a JSON array of lead inputs for batch qualification")
	qualifyCmd.Flags().IntVar(&qualifyConcurrency, "concurrency", 0, "Batch concurrency (default 4)")

	rootCmd.AddCommand(qualifyCmd)
}

func runQualify(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if qualifyInputFile != "" && qualifyEmail != "" {
		return fmt.Errorf("cannot use --in with --email")
	}
	if qualifyInputFile == "" && qualifyEmail == "" {
		return fmt.Errorf("must provide either --email or --in")
	}

	cfg, err := loadRuntimeConfig(cmd, qualifyConfigPath, qualifyBackend, qualifyDBPath, qualifyDBURL, qualifyAPIKey, qualifyVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = qualifyConcurrency
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

	qualifier := agent.NewQualifier(client, st)
	printer := observability.NewPrinter(os.Stdout)

	if qualifyInputFile != "" {
		inputs, err := readLeadInputs(qualifyInputFile)
		if err != nil {
			return err
		}
		items, err := qualifier.QualifyAll(ctx, inputs, cfg.Concurrency)
		if err != nil {
			return fmt.Errorf("batch qualification failed: %w", err)
		}
		failed := 0
		for _, item := range items {
			if item.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "failed to qualify %s: %v\n", item.Input.Email, item.Err)
				continue
			}
			printer.PrintQualification(item.Result.Record, item.Result.DegradedFields, item.Result.Fallback)
		}
		fmt.Printf("Qualified %d/%d leads\n", len(items)-failed, len(items))
		return nil
	}

	body, err := readBody(qualifyBodyFile)
	if err != nil {
		return err
	}

	input := &types.LeadInput{
		Email:        qualifyEmail,
		Name:         qualifyName,
		Company:      qualifyCompany,
		Role:         qualifyRole,
		Source:       qualifySource,
		EmailSubject: qualifySubject,
		EmailBody:    body,
	}

	result, err := qualifier.Qualify(ctx, input)
	if err != nil {
		return fmt.Errorf("qualification failed: %w", err)
	}

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

// readBody reads the email body from a file, stdin ("-"), or returns empty
// when no path is given.
func readBody(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(data), nil
}

// readLeadInputs parses a JSON array of lead inputs from disk.
func readLeadInputs(path string) ([]*types.LeadInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	var inputs []*types.LeadInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return inputs, nil
}
