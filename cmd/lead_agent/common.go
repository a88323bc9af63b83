package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-agent/internal/config"
	"github.com/jonathan/lead-agent/internal/llm"
	"github.com/jonathan/lead-agent/internal/store"
)

// loadRuntimeConfig builds the effective configuration: config file values,
// then environment, then built-in defaults, with explicit CLI flags taking
// priority over all of them.
func loadRuntimeConfig(cmd *cobra.Command, configPath, backend, dbPath, dbURL, apiKey string, verbose bool) (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("db") {
		cfg.DatabasePath = dbPath
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = dbURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg.FromEnvironment()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the storage backend named in the configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendSQLite:
		return store.OpenSQLite(cfg.DatabasePath)
	case config.BackendPostgres:
		return store.ConnectPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newLLMClient creates the model client, honoring a configured model
// override for the standard tier.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}
	modelConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		modelConfig.Models[llm.TierStandard] = cfg.Model
	}
	return llm.NewClient(ctx, modelConfig, cfg.APIKey)
}
