// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Storage backend names accepted in the "backend" field.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultDatabasePath is the SQLite file used when no path is configured.
const DefaultDatabasePath = "leads.db"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or environment
// variables resolved at startup.
type Config struct {
	// Storage
	Backend      string `json:"backend,omitempty"`       // Storage backend: memory, sqlite, or postgres
	DatabasePath string `json:"database_path,omitempty"` // SQLite database file path
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL

	// Behavior
	APIKey      string `json:"api_key,omitempty"`     // Gemini API key
	Model       string `json:"model,omitempty"`       // Override for the standard-tier model name
	Concurrency int    `json:"concurrency,omitempty"` // Batch qualification concurrency
	Verbose     bool   `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnvironment fills unset fields from environment variables.
// Explicit config file values win over the environment.
func (c *Config) FromEnvironment() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Backend == "" {
		c.Backend = os.Getenv("LEAD_AGENT_BACKEND")
	}
}

// ApplyDefaults fills remaining empty fields with built-in defaults.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		if c.DatabaseURL != "" {
			c.Backend = BackendPostgres
		} else {
			c.Backend = BackendSQLite
		}
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("config error: unknown backend %q (want memory, sqlite, or postgres)", c.Backend)
	}

	if c.Backend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: backend 'postgres' requires 'database_url'")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}

	return nil
}
