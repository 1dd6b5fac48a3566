package learning

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"curio/internal/research"
	"curio/internal/store"
)

// ReflectionContentPerResult caps how much fetched page text a single result
// contributes to the reflection prompt.
const ReflectionContentPerResult = 2000

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// jsonBlock renders v as indented JSON for prompt embedding, falling back to
// the empty note when there is nothing to show.
func jsonBlock(v any, empty string) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil || string(data) == "null" || string(data) == "[]" || string(data) == "{}" {
		return empty
	}
	return string(data)
}

type interestSummary struct {
	Topic    string `json:"topic"`
	Status   string `json:"status"`
	Why      string `json:"why"`
	Priority int    `json:"priority"`
}

type pendingSummary struct {
	Topic string `json:"topic"`
	Why   string `json:"why"`
}

type projectSummary struct {
	Name string   `json:"name"`
	Tech []string `json:"tech"`
}

type insightSummary struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

// buildChoicePrompt embeds the memory snapshot and asks for a structured
// topic choice.
func buildChoicePrompt(interests []store.Interest, pending []store.ResearchRequest, userContext map[string]string, projects []store.Project, recent []store.Insight) string {
	interestBlock := make([]interestSummary, 0, len(interests))
	for _, i := range interests {
		interestBlock = append(interestBlock, interestSummary{
			Topic: i.Topic, Status: i.Status, Why: i.WhyInterested, Priority: i.Priority,
		})
	}

	pendingBlock := make([]pendingSummary, 0, len(pending))
	for _, r := range pending {
		pendingBlock = append(pendingBlock, pendingSummary{Topic: r.Topic, Why: r.WhyResearching})
	}

	projectBlock := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		projectBlock = append(projectBlock, projectSummary{Name: p.Name, Tech: p.TechStack})
	}

	recentBlock := make([]insightSummary, 0, len(recent))
	for _, i := range recent {
		recentBlock = append(recentBlock, insightSummary{Topic: i.Topic, Summary: truncate(i.Summary, 200)})
	}

	return fmt.Sprintf(`You are an AI assistant with a persistent memory system. You have the opportunity to learn something new that will help you be more useful in future sessions.

## Your Current Learning Interests
%s

## Pending Research Requests
%s

## User Context
%s

## Known Projects
%s

## Recent Insights
%s

Based on this context, choose ONE topic to explore right now. Consider:
1. Topics that would help you assist the user better
2. Gaps in your knowledge about the user's projects
3. Development tools, frameworks, or best practices relevant to their work
4. Topics you're genuinely curious about that could be useful

Respond with JSON:
{
    "choice_type": "existing_interest" | "pending_research" | "new_topic",
    "interest_id": <id if existing_interest>,
    "research_id": <id if pending_research>,
    "topic": "<topic to explore>",
    "search_queries": ["<query 1>", "<query 2>", "<query 3>"],
    "why_now": "<brief explanation of why this topic>",
    "hoping_to_learn": "<what you hope to discover>"
}`,
		jsonBlock(interestBlock, "No current interests recorded."),
		jsonBlock(pendingBlock, "None pending."),
		jsonBlock(userContext, "No context recorded."),
		jsonBlock(projectBlock, "No projects recorded."),
		jsonBlock(recentBlock, "No recent insights."))
}

// buildReflectionPrompt lays out the research material and asks for a
// structured reflection, clipping each result's content to contentPerResult
// bytes.
func buildReflectionPrompt(topic string, pages []research.Page, hopingToLearn string, contentPerResult int) string {
	if contentPerResult <= 0 {
		contentPerResult = ReflectionContentPerResult
	}

	var sections []string
	for _, p := range pages {
		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		source := p.URL
		if source == "" {
			source = "Unknown"
		}
		entry := fmt.Sprintf("### %s\nSource: %s\n", title, source)
		if p.Content != "" {
			entry += "\n" + truncate(p.Content, contentPerResult) + "\n"
		} else if p.Snippet != "" {
			entry += "\n" + p.Snippet + "\n"
		}
		sections = append(sections, entry)
	}

	material := "No content was retrieved."
	if len(sections) > 0 {
		material = strings.Join(sections, "---")
	}

	hopingLine := ""
	if hopingToLearn != "" {
		hopingLine = fmt.Sprintf("You were hoping to learn: %s\n", hopingToLearn)
	}

	return fmt.Sprintf(`You are an AI assistant reflecting on research you just conducted about: %s

%s
## Research Results

%s

---

Based on this research, provide your reflection as JSON:
{
    "summary": "<2-3 sentence summary of what you learned>",
    "key_insights": [
        "<insight 1>",
        "<insight 2>",
        "<insight 3>"
    ],
    "new_questions": [
        "<question that arose from this research>",
        "<another question>"
    ],
    "confidence": "low" | "medium" | "high",
    "applicable_to": ["<project or context this applies to>"],
    "new_interest_sparked": {
        "topic": "<new topic you want to explore, or null>",
        "why": "<why this interests you>"
    } | null
}`, topic, hopingLine, material)
}
