package learning

import (
	"context"
	"encoding/json"
	"fmt"

	"curio/internal/llm"
	"curio/internal/logging"
	"curio/internal/research"
)

// SparkedInterest is a new topic the reflection wants to pursue later.
type SparkedInterest struct {
	Topic string `json:"topic"`
	Why   string `json:"why"`
}

// Reflection is the model's synthesis of one research run. Fallback marks a
// reflection synthesized after a parse failure.
type Reflection struct {
	Summary            string           `json:"summary"`
	KeyInsights        []string         `json:"key_insights"`
	NewQuestions       []string         `json:"new_questions"`
	Confidence         string           `json:"confidence"`
	ApplicableTo       []string         `json:"applicable_to"`
	NewInterestSparked *SparkedInterest `json:"new_interest_sparked"`
	Fallback           bool             `json:"-"`
}

// Reflector asks the model to synthesize fetched research into insights.
type Reflector struct {
	client           llm.Client
	model            string
	maxTokens        int
	contentPerResult int
}

// NewReflector builds a reflector with the default per-result content budget.
func NewReflector(client llm.Client, model string, maxTokens int) *Reflector {
	return NewReflectorWithBudget(client, model, maxTokens, ReflectionContentPerResult)
}

// NewReflectorWithBudget builds a reflector with a configured per-result
// content budget for the prompt.
func NewReflectorWithBudget(client llm.Client, model string, maxTokens, contentPerResult int) *Reflector {
	if contentPerResult <= 0 {
		contentPerResult = ReflectionContentPerResult
	}
	return &Reflector{client: client, model: model, maxTokens: maxTokens, contentPerResult: contentPerResult}
}

// Reflect synthesizes the research pages for topic. A malformed reply
// degrades to a low-confidence empty reflection; an LLM call failure is
// returned to the caller.
func (r *Reflector) Reflect(ctx context.Context, topic string, pages []research.Page, hopingToLearn string) (*Reflection, error) {
	prompt := buildReflectionPrompt(topic, pages, hopingToLearn, r.contentPerResult)

	reply, err := r.client.Complete(ctx, r.model, r.maxTokens, prompt)
	if err != nil {
		return nil, fmt.Errorf("reflection call failed: %w", err)
	}

	var reflection Reflection
	if err := json.Unmarshal([]byte(llm.ExtractJSONPayload(reply)), &reflection); err != nil {
		logging.ReflectWarn("Failed to parse reflection, using fallback: %v", err)
		return fallbackReflection(), nil
	}

	logging.Reflect("Reflection on %q: %d insights, %d questions, confidence=%s",
		topic, len(reflection.KeyInsights), len(reflection.NewQuestions), reflection.Confidence)
	return &reflection, nil
}

func fallbackReflection() *Reflection {
	return &Reflection{
		Summary:      "Research completed but reflection parsing failed.",
		KeyInsights:  []string{},
		NewQuestions: []string{},
		Confidence:   "low",
		ApplicableTo: []string{},
		Fallback:     true,
	}
}
