// =============================================================================
// eBay Order Export - Configuration Module
// =============================================================================
//
// This module loads the application configuration and resolves the API
// credential. Two sources are involved:
//
//   1. config.yaml: ledger location, default time window and result limit,
//      API endpoint settings.
//   2. The credential: the EBAY_ACCESS_TOKEN environment variable (a local
//      .env file is honored) or a token file named on the command line. The
//      token never lives in config.yaml.
//
// The flow is load -> apply defaults -> validate. Validation failures are
// terminal; the pipeline must not start with incomplete settings.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnvVar is the environment variable holding the OAuth access token.
const TokenEnvVar = "EBAY_ACCESS_TOKEN"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// LEDGER SETTINGS
	// =========================================================================

	// LedgerPath is the path to the ledger workbook.
	LedgerPath string `yaml:"ledger_path"`

	// WorksheetName is the worksheet inside the workbook holding the ledger.
	WorksheetName string `yaml:"worksheet_name"`

	// DisableBackup skips the workbook backup that normally precedes the
	// full-rewrite save.
	DisableBackup bool `yaml:"disable_backup"`

	// =========================================================================
	// FETCH SETTINGS
	// =========================================================================

	// Days is how many days back the order window reaches.
	// Default: 3
	Days int `yaml:"days"`

	// Limit is the maximum number of orders the bulk listing may return.
	// Default: 100
	Limit int `yaml:"limit"`

	// APIBaseURL is the Fulfillment API host.
	// Default: "https://api.ebay.com"
	APIBaseURL string `yaml:"api_base_url"`

	// HTTPTimeoutSeconds is the per-request timeout.
	// Default: 30
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// RunLogDir is the directory for per-run JSON summary logs.
	// Empty disables run logs.
	RunLogDir string `yaml:"run_log_dir"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with all defaults applied and no ledger
// location set. The ledger settings must then come from command-line flags.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from a YAML file and applies defaults.
// A missing file is not an error: the defaults are returned and the caller's
// flags must fill in the rest.
//
// PARAMETERS:
//   - path: Path to the configuration file.
//
// RETURNS:
//   - The configuration with defaults applied. Validate is NOT called here;
//     callers validate after merging command-line flags.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Days == 0 {
		cfg.Days = 3
	}
	if cfg.Limit == 0 {
		cfg.Limit = 100
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.ebay.com"
	}
	if cfg.HTTPTimeoutSeconds == 0 {
		cfg.HTTPTimeoutSeconds = 30
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the merged configuration before a run starts.
// Every violation is terminal and user-visible immediately.
func (c *Config) Validate() error {
	if c.LedgerPath == "" {
		return fmt.Errorf("ledger path must not be empty (set ledger_path or --excel)")
	}
	if c.WorksheetName == "" {
		return fmt.Errorf("worksheet name must not be empty (set worksheet_name or --sheet)")
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be a positive integer, got %d", c.Days)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be a positive integer, got %d", c.Limit)
	}
	return nil
}

// =============================================================================
// CREDENTIAL RESOLUTION
// =============================================================================

// ResolveToken returns the OAuth access token.
//
// PARAMETERS:
//   - tokenFile: Optional path to a file holding the token. Takes precedence
//     over the environment.
//
// RESOLUTION ORDER:
//   1. The token file, if one was named.
//   2. The EBAY_ACCESS_TOKEN environment variable. A .env file in the
//      working directory is loaded first if present, so the token can live
//      next to the binary instead of the shell profile.
func ResolveToken(tokenFile string) (string, error) {
	if tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("token file %s is empty", tokenFile)
		}
		return token, nil
	}

	// Best effort; a missing .env just means the variable must already be
	// exported.
	_ = godotenv.Load()

	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if token == "" {
		return "", fmt.Errorf("no access token: set %s or use --token-file", TokenEnvVar)
	}
	return token, nil
}
