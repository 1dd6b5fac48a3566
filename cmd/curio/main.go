package main

import (
	"fmt"
	"os"
	"strings"

	"curio/internal/config"
	"curio/internal/llm"
	"curio/internal/logging"
	"curio/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	dataDir string

	// Built in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "curio - autonomous learning sessions backed by persistent memory",
	Long: `curio runs scheduled learning sessions for an AI assistant with a
persistent memory store.

Each session picks a topic worth exploring (from tracked interests, queued
research, and what the user is working on), runs a bounded round of web
research, reflects on what was found, and writes the insights back to
Postgres so later sessions start smarter.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		zapConfig := zap.NewProductionConfig()
		if cfg.Logging.Format == "text" {
			zapConfig.Encoding = "console"
		}
		if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			zapConfig.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(cfg.DataDir); err != nil {
			logger.Warn("Category logging unavailable", zap.Error(err))
		}
		logging.Boot("curio %s starting (data dir %s)", cfg.Version, cfg.DataDir)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore connects to Postgres and applies configured limits.
func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open store (%s:%s/%s): %w",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, err)
	}
	st.SetDeepeningThreshold(cfg.Learning.DeepeningThreshold)
	return st, nil
}

// resolveAPIKey finds the Anthropic API key: configuration/environment first,
// then the encrypted secrets table when a local encryption key file exists.
func resolveAPIKey(st *store.Store) string {
	if cfg.LLM.APIKey != "" {
		return cfg.LLM.APIKey
	}

	keyData, err := os.ReadFile(cfg.KeyFilePath())
	if err != nil {
		return ""
	}
	secret, err := st.LookupSecret("api_key", "anthropic", strings.TrimSpace(string(keyData)))
	if err != nil {
		logger.Warn("Secrets lookup failed", zap.Error(err))
		return ""
	}
	return secret
}

// newLLMClient builds the Anthropic client from configuration.
func newLLMClient(apiKey string) *llm.AnthropicClient {
	return llm.NewAnthropicClientWithConfig(llm.AnthropicConfig{
		APIKey:  apiKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.GetLLMTimeout(),
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $CURIO_DATA_DIR or ~/.curio)")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(interestsCmd)
	rootCmd.AddCommand(addInterestCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(insightsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
