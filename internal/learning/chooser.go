// Package learning wires topic choice, bounded research, and reflection into
// one persisted session.
package learning

import (
	"context"
	"encoding/json"
	"fmt"

	"curio/internal/llm"
	"curio/internal/logging"
)

// Context snapshot sizes for the choice prompt.
const (
	choiceInterestLimit = 15
	choicePendingLimit  = 5
	choiceProjectLimit  = 10
	choiceInsightLimit  = 5
)

// FallbackTopic is chosen when the model's topic reply cannot be parsed.
const FallbackTopic = "Go best practices 2026"

// fallbackQueries go with FallbackTopic. Exactly two, so a fallback run is
// recognizable in the research trail.
var fallbackQueries = []string{"Go best practices 2026", "modern Go development patterns"}

// TopicChoice is the chooser's decision. Fallback marks a choice synthesized
// after a parse failure rather than made by the model.
type TopicChoice struct {
	ChoiceType    string   `json:"choice_type"`
	InterestID    int64    `json:"interest_id,omitempty"`
	ResearchID    int64    `json:"research_id,omitempty"`
	Topic         string   `json:"topic"`
	SearchQueries []string `json:"search_queries"`
	WhyNow        string   `json:"why_now"`
	HopingToLearn string   `json:"hoping_to_learn"`
	Fallback      bool     `json:"-"`
}

// Chooser asks the model to pick the next topic from the memory snapshot.
type Chooser struct {
	store     Store
	client    llm.Client
	model     string
	maxTokens int
}

// NewChooser builds a topic chooser.
func NewChooser(store Store, client llm.Client, model string, maxTokens int) *Chooser {
	return &Chooser{store: store, client: client, model: model, maxTokens: maxTokens}
}

// Choose gathers the memory snapshot, asks the model, and parses its choice.
// A malformed reply degrades to the fixed fallback topic; an LLM call
// failure is returned to the caller.
func (c *Chooser) Choose(ctx context.Context) (*TopicChoice, error) {
	interests, err := c.store.ListInterests("", choiceInterestLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	pending, err := c.store.ListPendingResearch(choicePendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending research: %w", err)
	}
	userContext, err := c.store.UserContext()
	if err != nil {
		return nil, fmt.Errorf("failed to load user context: %w", err)
	}
	projects, err := c.store.ListProjects(choiceProjectLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	recent, err := c.store.ListRecentInsights(choiceInsightLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent insights: %w", err)
	}

	prompt := buildChoicePrompt(interests, pending, userContext, projects, recent)

	reply, err := c.client.Complete(ctx, c.model, c.maxTokens, prompt)
	if err != nil {
		return nil, fmt.Errorf("topic choice call failed: %w", err)
	}

	var choice TopicChoice
	if err := json.Unmarshal([]byte(llm.ExtractJSONPayload(reply)), &choice); err != nil {
		logging.SessionError("Failed to parse topic choice, using fallback: %v", err)
		return fallbackChoice(), nil
	}
	if choice.Topic == "" {
		// A parseable reply with queries but no topic is still usable
		// research; only a reply with neither falls all the way back.
		if len(choice.SearchQueries) == 0 {
			logging.SessionError("Topic choice reply had no topic or queries, using fallback")
			return fallbackChoice(), nil
		}
		logging.Session("Topic choice reply had no topic; keeping its queries")
		choice.Topic = "Unknown"
	}

	logging.Session("Chose topic %q (%s)", choice.Topic, choice.ChoiceType)
	return &choice, nil
}

func fallbackChoice() *TopicChoice {
	return &TopicChoice{
		ChoiceType:    "new_topic",
		Topic:         FallbackTopic,
		SearchQueries: append([]string(nil), fallbackQueries...),
		WhyNow:        "Fallback topic for continued learning",
		HopingToLearn: "Current Go development standards",
		Fallback:      true,
	}
}
