package config

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/explorer"
	"github.com/pendergraft/trustscore/internal/scoring"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig
	Explorer  ExplorerConfig
	Scoring   ScoringConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	IdleTimeout    int // seconds
	// RequestTimeout bounds every /api/v1 request. It must exceed the
	// scoring timeout so slow reviews still get their fallback panel.
	RequestTimeout int // seconds
	MaxBodyBytes   int64
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP
	TrustProxy bool
	// FilterScanners rejects vulnerability-scanner probes with a 400
	FilterScanners bool
}

// ExplorerConfig holds block-explorer settings
type ExplorerConfig struct {
	APIKey      string
	ChainsFile  string
	SourcifyURL string
	Timeout     time.Duration
	MaxRetries  int
	// Chains maps CAIP-2 chain IDs to explorer base URLs. Entries from
	// ChainsFile override the built-in defaults.
	Chains map[string]string
}

// ScoringConfig holds trust-score settings
type ScoringConfig struct {
	Preset  scoring.Preset
	Timeout time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	BurstSize      int
	CleanupMinutes int
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled     bool
	ServiceName string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			Host:           getEnv("HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			RequestTimeout: getEnvInt("SERVER_REQUEST_TIMEOUT", 30),
			MaxBodyBytes:   int64(getEnvInt("SERVER_MAX_BODY_KB", 64)) * 1024,
			TrustProxy:     getEnvBool("TRUST_PROXY", false),
			FilterScanners: getEnvBool("SECURITY_FILTER_ENABLED", true),
		},
		Explorer: ExplorerConfig{
			APIKey:      getEnv("EXPLORER_API_KEY", ""),
			ChainsFile:  getEnv("EXPLORER_CHAINS_FILE", ""),
			SourcifyURL: getEnv("SOURCIFY_URL", explorer.DefaultSourcifyURL),
			Timeout:     getEnvDuration("EXPLORER_TIMEOUT", 10*time.Second),
			MaxRetries:  getEnvInt("EXPLORER_MAX_RETRIES", 2),
		},
		Scoring: ScoringConfig{
			Preset:  scoring.Preset(getEnv("SCORING_PRESET", string(scoring.PresetFull))),
			Timeout: getEnvDuration("SCORING_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin: getEnvInt("RATE_LIMIT_RPM", 120),
			BurstSize:      getEnvInt("RATE_LIMIT_BURST", 20),
			CleanupMinutes: getEnvInt("RATE_LIMIT_CLEANUP_MINUTES", 10),
		},
		Metrics: MetricsConfig{
			Enabled:     getEnvBool("METRICS_ENABLED", false),
			ServiceName: getEnv("METRICS_SERVICE_NAME", "trustscore"),
		},
	}

	if _, err := scoring.WeightsFor(cfg.Scoring.Preset); err != nil {
		return nil, fmt.Errorf("SCORING_PRESET: %w", err)
	}
	if rt := time.Duration(cfg.Server.RequestTimeout) * time.Second; rt > 0 && cfg.Scoring.Timeout >= rt {
		return nil, fmt.Errorf("SCORING_TIMEOUT (%s) must be shorter than SERVER_REQUEST_TIMEOUT (%s)", cfg.Scoring.Timeout, rt)
	}
	if cfg.Explorer.MaxRetries < 0 {
		return nil, fmt.Errorf("EXPLORER_MAX_RETRIES must not be negative")
	}
	if !strings.HasSuffix(cfg.Explorer.SourcifyURL, "/") {
		cfg.Explorer.SourcifyURL += "/"
	}

	cfg.Explorer.Chains = chains.DefaultExplorers()
	if cfg.Explorer.ChainsFile != "" {
		extra, err := LoadChainsFile(cfg.Explorer.ChainsFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(cfg.Explorer.Chains, extra)
	}

	return cfg, nil
}

// LoadChainsFile reads a YAML mapping of CAIP-2 chain IDs to explorer base
// URLs:
//
//	eip155:1: https://api.etherscan.io/
//	eip155:8453: https://api.basescan.org/
func LoadChainsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chains file: %w", err)
	}

	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing chains file %s: %w", path, err)
	}
	for id, url := range table {
		if _, err := chains.ParseChainID(id); err != nil {
			return nil, fmt.Errorf("chains file %s: %w", path, err)
		}
		if url == "" {
			return nil, fmt.Errorf("chains file %s: empty explorer URL for %s", path, id)
		}
	}
	return table, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("1500ms", "10s") or a bare
// number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}
