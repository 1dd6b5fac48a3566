package store

import "time"

// Interest lifecycle statuses. An interest only escalates
// (curious -> exploring -> deepening); the pipeline never regresses one.
const (
	InterestStatusCurious   = "curious"
	InterestStatusExploring = "exploring"
	InterestStatusDeepening = "deepening"
)

// Research request statuses. Status moves forward exactly once through
// pending -> in_progress -> completed|failed; failed is terminal.
const (
	ResearchStatusPending    = "pending"
	ResearchStatusInProgress = "in_progress"
	ResearchStatusCompleted  = "completed"
	ResearchStatusFailed     = "failed"
)

// Session statuses.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// Research request priorities, ranked urgent < high < medium < low when
// picking pending work.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Interest is a tracked topic the assistant may choose to explore further.
type Interest struct {
	ID                 int64     `json:"id"`
	Topic              string    `json:"topic"`
	WhyInterested      string    `json:"why_interested"`
	SparkedBy          string    `json:"sparked_by,omitempty"`
	Priority           int       `json:"priority"`
	Status             string    `json:"status"`
	Tags               []string  `json:"tags,omitempty"`
	InsightsGained     []string  `json:"insights_gained"`
	RemainingQuestions []string  `json:"remaining_questions"`
	CreatedAt          time.Time `json:"created_at"`
	LastExploredAt     time.Time `json:"last_explored_at,omitempty"`
}

// ResearchRequest is a unit of search work tied to specific queries and an
// optional triggering interest.
type ResearchRequest struct {
	ID            int64      `json:"id"`
	Topic         string     `json:"topic"`
	Queries       []string   `json:"queries"`
	WhyResearching string    `json:"why_researching,omitempty"`
	HopingToLearn string     `json:"hoping_to_learn,omitempty"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	InterestID    int64      `json:"interest_id,omitempty"`
	ProjectID     int64      `json:"project_id,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ResearchResult is one fetched/searched web resource attached to a request.
// Append-only; one row per fetched result.
type ResearchResult struct {
	ID          int64    `json:"id"`
	RequestID   int64    `json:"request_id"`
	QueryUsed   string   `json:"query_used"`
	SourceURL   string   `json:"source_url"`
	SourceTitle string   `json:"source_title"`
	Snippet     string   `json:"snippet"`
	FullContent *string  `json:"full_content,omitempty"`
	ContentType string   `json:"content_type"`
	Relevance   *float64 `json:"relevance_score,omitempty"`
}

// SourceRef identifies one source a recorded insight drew from.
type SourceRef struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Insight is a synthesized takeaway recorded after reflecting on research.
type Insight struct {
	ID         int64       `json:"id"`
	Topic      string      `json:"topic"`
	Summary    string      `json:"summary"`
	Insights   []string    `json:"insights"`
	Questions  []string    `json:"questions"`
	Confidence string      `json:"confidence"`
	Sources    []SourceRef `json:"sources"`
	RequestID  int64       `json:"request_id,omitempty"`
	InterestID int64       `json:"interest_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Session tracks one end-to-end run of the learning pipeline.
type Session struct {
	ID                  int64      `json:"id"`
	SessionType         string     `json:"session_type"`
	TopicChosen         string     `json:"topic_chosen,omitempty"`
	ChoiceReason        string     `json:"choice_reason,omitempty"`
	Status              string     `json:"status"`
	InsightsCount       int        `json:"insights_count"`
	NewQuestionsCount   int        `json:"new_questions_count"`
	NewInterestsSparked int        `json:"new_interests_sparked"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	DurationSeconds     int        `json:"duration_seconds"`
}

// Project is a read-only row from the projects table, used to bias topic
// choice toward what the user actually works on.
type Project struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	TechStack []string `json:"tech_stack"`
}
