package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all curio configuration. It is built once at startup and
// passed explicitly into the orchestrator; nothing reads globals at runtime.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Data directory (logs, config files, encryption key)
	DataDir string `yaml:"data_dir"`

	// Database connection
	DB DBConfig `yaml:"db"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Learning pipeline limits
	Learning LearningConfig `yaml:"learning"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DSN returns a keyword/value Postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		d.Host, d.Port, d.Name, d.User, d.Password)
}

// LLMConfig configures the LLM client and the two call sites.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// Model identifiers per call site
	ChoiceModel     string `yaml:"choice_model"`
	ReflectionModel string `yaml:"reflection_model"`

	// Max output token bounds per call site
	ChoiceMaxTokens     int `yaml:"choice_max_tokens"`
	ReflectionMaxTokens int `yaml:"reflection_max_tokens"`
}

// LearningConfig bounds the research pipeline.
type LearningConfig struct {
	MaxSearchQueries   int    `yaml:"max_search_queries"`
	MaxResultsPerQuery int    `yaml:"max_results_per_query"`
	MaxFetchesPerQuery int    `yaml:"max_fetches_per_query"`
	MaxContentPerPage  int    `yaml:"max_content_per_page"`
	ContentPerResult   int    `yaml:"content_per_result"` // reflection prompt budget per result
	FetchTimeout       string `yaml:"fetch_timeout"`
	UserAgent          string `yaml:"user_agent"`

	// Insight count at which an interest is promoted to "deepening".
	// Inherited threshold; kept overridable rather than re-derived.
	DeepeningThreshold int `yaml:"deepening_threshold"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "curio",
		Version: "1.0.0",

		DataDir: DefaultDataDir(),

		DB: DBConfig{
			Host:     "localhost",
			Port:     "5433",
			Name:     "curio_memory",
			User:     "curio",
			Password: "curio_memory_2026",
		},

		LLM: LLMConfig{
			BaseURL:             "https://api.anthropic.com/v1",
			Timeout:             "120s",
			ChoiceModel:         "claude-sonnet-4-20250514",
			ReflectionModel:     "claude-sonnet-4-20250514",
			ChoiceMaxTokens:     1000,
			ReflectionMaxTokens: 1500,
		},

		Learning: LearningConfig{
			MaxSearchQueries:   3,
			MaxResultsPerQuery: 3,
			MaxFetchesPerQuery: 2,
			MaxContentPerPage:  4000,
			ContentPerResult:   2000,
			FetchTimeout:       "10s",
			UserAgent:          "Mozilla/5.0 (compatible; curio/1.0)",
			DeepeningThreshold: 10,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultDataDir resolves the curio data directory: CURIO_DATA_DIR if set,
// otherwise ~/.curio.
func DefaultDataDir() string {
	if dir := os.Getenv("CURIO_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".curio"
	}
	return filepath.Join(home, ".curio")
}

// Load builds the configuration: defaults, then the optional config.yaml in
// the data directory, then db.env, then environment variables. Later sources
// win.
func Load(dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	path := filepath.Join(cfg.DataDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyDBEnv(filepath.Join(cfg.DataDir, "config", "db.env"))
	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if host := os.Getenv("CURIO_DB_HOST"); host != "" {
		c.DB.Host = host
	}
	if port := os.Getenv("CURIO_DB_PORT"); port != "" {
		c.DB.Port = port
	}
	if name := os.Getenv("CURIO_DB_NAME"); name != "" {
		c.DB.Name = name
	}
	if user := os.Getenv("CURIO_DB_USER"); user != "" {
		c.DB.User = user
	}
	if pw := os.Getenv("CURIO_DB_PASSWORD"); pw != "" {
		c.DB.Password = pw
	}
}

// KeyFilePath returns the path of the local encryption key file that gates
// the secrets-table API key lookup.
func (c *Config) KeyFilePath() string {
	return filepath.Join(c.DataDir, "config", "encryption.key")
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetFetchTimeout returns the page fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Learning.FetchTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
