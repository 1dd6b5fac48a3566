package learning

import (
	"context"
	"fmt"
	"runtime/debug"

	"curio/internal/logging"
	"curio/internal/research"
	"curio/internal/store"

	"github.com/google/uuid"
)

// Session result statuses.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultError     = "error"
)

// SparkedInterestPriority is assigned to interests created by a reflection.
const SparkedInterestPriority = 5

// Store is the persistence surface the pipeline consumes.
type Store interface {
	ListInterests(status string, limit int) ([]store.Interest, error)
	AddInterest(topic, whyInterested, sparkedBy string, priority int, tags []string) (int64, error)
	AppendInterestInsights(id int64, insights, questions []string) error
	ListPendingResearch(limit int) ([]store.ResearchRequest, error)
	CreateResearchRequest(topic string, queries []string, why, hopingToLearn, priority string, interestID, projectID int64) (int64, error)
	UpdateResearchStatus(id int64, status, errorMessage string) error
	RecordInsight(topic, summary string, insights, questions []string, confidence string, sources []store.SourceRef, requestID, interestID int64) (int64, error)
	ListRecentInsights(limit int) ([]store.Insight, error)
	StartSession(sessionType string) (int64, error)
	CompleteSession(id int64, topic, reason, status string, insightsCount, questionsCount, newInterests int, errorMessage string) error
	UserContext() (map[string]string, error)
	ListProjects(limit int) ([]store.Project, error)
}

// TopicChooser picks what to learn next.
type TopicChooser interface {
	Choose(ctx context.Context) (*TopicChoice, error)
}

// ResearchRunner executes the bounded search-and-fetch loop.
type ResearchRunner interface {
	Run(ctx context.Context, requestID int64, queries []string) research.Outcome
}

// ResearchReflector synthesizes fetched material into insights.
type ResearchReflector interface {
	Reflect(ctx context.Context, topic string, pages []research.Page, hopingToLearn string) (*Reflection, error)
}

// SessionResult is what a learning run reports back to the CLI.
type SessionResult struct {
	Status       string   `json:"status"`
	SessionID    int64    `json:"session_id,omitempty"`
	Topic        string   `json:"topic,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Insights     []string `json:"insights,omitempty"`
	NewQuestions []string `json:"new_questions,omitempty"`
	NewInterest  string   `json:"new_interest,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Orchestrator sequences one end-to-end learning session.
type Orchestrator struct {
	store     Store
	chooser   TopicChooser
	runner    ResearchRunner
	reflector ResearchReflector
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(st Store, chooser TopicChooser, runner ResearchRunner, reflector ResearchReflector) *Orchestrator {
	return &Orchestrator{store: st, chooser: chooser, runner: runner, reflector: reflector}
}

// RunSession executes one session end to end. It never returns an error:
// anything unexpected, panics included, collapses into a result with status
// "error" so a scheduled run always reports something. Every log line of a
// run carries the same run id, which is what ties a cron mail to the store
// rows it produced.
func (o *Orchestrator) RunSession(ctx context.Context, sessionType string) (result *SessionResult) {
	runID := uuid.NewString()[:8]

	defer func() {
		if r := recover(); r != nil {
			logging.SessionError("[run %s] Learning session panicked: %v\n%s", runID, r, debug.Stack())
			result = &SessionResult{Status: ResultError, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	res, err := o.run(ctx, runID, sessionType)
	if err != nil {
		logging.SessionError("[run %s] Learning session error: %v", runID, err)
		return &SessionResult{Status: ResultError, Error: err.Error()}
	}
	return res
}

func (o *Orchestrator) run(ctx context.Context, runID, sessionType string) (*SessionResult, error) {
	sessionID, err := o.store.StartSession(sessionType)
	if err != nil {
		return nil, err
	}
	logging.Session("[run %s] Started learning session #%d (%s)", runID, sessionID, sessionType)

	choice, err := o.chooser.Choose(ctx)
	if err != nil {
		return nil, err
	}
	logging.Session("[run %s] Topic: %s, queries: %v", runID, choice.Topic, choice.SearchQueries)

	requestID := choice.ResearchID
	if requestID == 0 {
		requestID, err = o.store.CreateResearchRequest(
			choice.Topic, choice.SearchQueries, choice.WhyNow, choice.HopingToLearn,
			store.PriorityMedium, choice.InterestID, 0)
		if err != nil {
			return nil, err
		}
	}

	if err := o.store.UpdateResearchStatus(requestID, store.ResearchStatusInProgress, ""); err != nil {
		return nil, err
	}

	out := o.runner.Run(ctx, requestID, choice.SearchQueries)

	if len(out.Pages) == 0 {
		// Nothing to reflect on: fail both the request and the session.
		if err := o.store.UpdateResearchStatus(requestID, store.ResearchStatusFailed, "No results found"); err != nil {
			return nil, err
		}
		if err := o.store.CompleteSession(sessionID, choice.Topic, choice.WhyNow,
			store.SessionStatusFailed, 0, 0, 0, "No research results"); err != nil {
			return nil, err
		}
		return &SessionResult{
			Status:    ResultFailed,
			SessionID: sessionID,
			Topic:     choice.Topic,
			Error:     "No results found",
		}, nil
	}

	reflection, err := o.reflector.Reflect(ctx, choice.Topic, out.Pages, choice.HopingToLearn)
	if err != nil {
		return nil, err
	}

	confidence := reflection.Confidence
	if confidence == "" {
		confidence = "medium"
	}

	sources := make([]store.SourceRef, 0, len(out.Pages))
	for _, p := range out.Pages {
		sources = append(sources, store.SourceRef{URL: p.URL, Title: p.Title})
	}

	if _, err := o.store.RecordInsight(choice.Topic, reflection.Summary,
		reflection.KeyInsights, reflection.NewQuestions, confidence, sources,
		requestID, choice.InterestID); err != nil {
		return nil, err
	}

	if choice.InterestID != 0 {
		if err := o.store.AppendInterestInsights(choice.InterestID,
			reflection.KeyInsights, reflection.NewQuestions); err != nil {
			return nil, err
		}
	}

	newInterests := 0
	newInterestTopic := ""
	if s := reflection.NewInterestSparked; s != nil && s.Topic != "" {
		why := s.Why
		if why == "" {
			why = "Sparked by research"
		}
		if _, err := o.store.AddInterest(s.Topic, why,
			"Research on: "+choice.Topic, SparkedInterestPriority, nil); err != nil {
			return nil, err
		}
		newInterests = 1
		newInterestTopic = s.Topic
	}

	if err := o.store.UpdateResearchStatus(requestID, store.ResearchStatusCompleted, ""); err != nil {
		return nil, err
	}
	if err := o.store.CompleteSession(sessionID, choice.Topic, choice.WhyNow,
		store.SessionStatusCompleted, len(reflection.KeyInsights),
		len(reflection.NewQuestions), newInterests, ""); err != nil {
		return nil, err
	}

	logging.Session("[run %s] Session #%d completed: %d insights, %d questions, %d new interests",
		runID, sessionID, len(reflection.KeyInsights), len(reflection.NewQuestions), newInterests)

	return &SessionResult{
		Status:       ResultCompleted,
		SessionID:    sessionID,
		Topic:        choice.Topic,
		Summary:      reflection.Summary,
		Insights:     reflection.KeyInsights,
		NewQuestions: reflection.NewQuestions,
		NewInterest:  newInterestTopic,
	}, nil
}
