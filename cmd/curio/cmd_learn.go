package main

import (
	"fmt"
	"strings"

	"curio/internal/learning"
	"curio/internal/research"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sessionType string

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Run one autonomous learning session",
	Long: `Runs a full learning session: choose a topic, research it on the web,
reflect on the findings, and persist the insights.

Intended to be invoked from a scheduler. The exit code is non-zero unless
the session completed, so a failed run shows up in cron mail.`,
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVar(&sessionType, "session-type", "autonomous", "session type recorded in the store")
}

func runLearn(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	// One session at a time per type; overlapping cron fires should not race
	// on the same interest and request rows.
	lock, err := st.TryAcquireRunLock(ctx, sessionType)
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if lock == nil {
		return fmt.Errorf("another %s learning session is already running", sessionType)
	}
	defer lock.Release()

	apiKey := resolveAPIKey(st)
	if apiKey == "" {
		return fmt.Errorf("no API key available: set ANTHROPIC_API_KEY or store one in the secrets table")
	}

	client := newLLMClient(apiKey)
	chooser := learning.NewChooser(st, client, cfg.LLM.ChoiceModel, cfg.LLM.ChoiceMaxTokens)
	fetcher := research.NewFetcherWithConfig(research.FetcherConfig{
		Timeout:   cfg.GetFetchTimeout(),
		UserAgent: cfg.Learning.UserAgent,
	})
	runner := research.NewRunnerWithLimits(research.NewDuckDuckGo(), fetcher, st, research.Limits{
		MaxSearchQueries:   cfg.Learning.MaxSearchQueries,
		MaxResultsPerQuery: cfg.Learning.MaxResultsPerQuery,
		MaxFetchesPerQuery: cfg.Learning.MaxFetchesPerQuery,
		MaxContentPerPage:  cfg.Learning.MaxContentPerPage,
	})
	reflector := learning.NewReflectorWithBudget(client, cfg.LLM.ReflectionModel, cfg.LLM.ReflectionMaxTokens, cfg.Learning.ContentPerResult)

	orchestrator := learning.NewOrchestrator(st, chooser, runner, reflector)
	result := orchestrator.RunSession(ctx, sessionType)

	printSessionResult(result)

	if result.Status != learning.ResultCompleted {
		logger.Warn("Learning session did not complete",
			zap.String("status", result.Status),
			zap.String("error", result.Error))
		return fmt.Errorf("session %s: %s", result.Status, result.Error)
	}
	return nil
}

func printSessionResult(result *learning.SessionResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("LEARNING SESSION COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Status: %s\n", result.Status)
	topic := result.Topic
	if topic == "" {
		topic = "N/A"
	}
	fmt.Printf("Topic: %s\n", topic)

	if len(result.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, insight := range result.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
	if len(result.NewQuestions) > 0 {
		fmt.Println("\nNew Questions:")
		for _, question := range result.NewQuestions {
			fmt.Printf("  - %s\n", question)
		}
	}
	if result.NewInterest != "" {
		fmt.Printf("\nNew Interest Sparked: %s\n", result.NewInterest)
	}
	if result.Error != "" {
		fmt.Printf("\nError: %s\n", result.Error)
	}
}
