package learning

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"curio/internal/research"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChooser struct {
	choice *TopicChoice
	err    error
}

func (s *scriptedChooser) Choose(context.Context) (*TopicChoice, error) { return s.choice, s.err }

type scriptedReflector struct {
	reflection *Reflection
	err        error
	called     bool
	gotPages   []research.Page
}

func (s *scriptedReflector) Reflect(_ context.Context, _ string, pages []research.Page, _ string) (*Reflection, error) {
	s.called = true
	s.gotPages = pages
	return s.reflection, s.err
}

type panickyChooser struct{}

func (panickyChooser) Choose(context.Context) (*TopicChoice, error) { panic("boom") }

// endToEndSearcher serves 3 results per query, like a healthy search engine.
type endToEndSearcher struct{ calls int }

func (s *endToEndSearcher) Search(_ context.Context, query string, _ int) []research.Result {
	s.calls++
	var results []research.Result
	for i := 1; i <= 3; i++ {
		results = append(results, research.Result{
			Title:   fmt.Sprintf("%s result %d", query, i),
			URL:     fmt.Sprintf("https://example.com/%s/%d", query, i),
			Snippet: "snippet",
		})
	}
	return results
}

type endToEndFetcher struct{}

func (endToEndFetcher) Fetch(_ context.Context, url string, _ int) (string, bool) {
	return "content of " + url, true
}

func TestRunSessionEndToEnd(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{choice: &TopicChoice{
		ChoiceType:    "new_topic",
		Topic:         "structured concurrency",
		SearchQueries: []string{"X", "Y", "Z", "W"}, // 4 queries, only 3 may run
		WhyNow:        "worth knowing",
		HopingToLearn: "patterns",
	}}
	reflector := &scriptedReflector{reflection: &Reflection{
		Summary:      "Learned a lot.",
		KeyInsights:  []string{"i1", "i2", "i3"},
		NewQuestions: []string{"q1", "q2"},
		Confidence:   "high",
		NewInterestSparked: &SparkedInterest{
			Topic: "errgroup internals",
			Why:   "came up repeatedly",
		},
	}}
	resultStore := &fakeResultSink{}
	runner := research.NewRunner(&endToEndSearcher{}, endToEndFetcher{}, resultStore)

	o := NewOrchestrator(st, chooser, runner, reflector)
	result := o.RunSession(context.Background(), "autonomous")

	require.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, int64(100), result.SessionID)
	assert.Equal(t, "structured concurrency", result.Topic)
	assert.Equal(t, []string{"i1", "i2", "i3"}, result.Insights)
	assert.Equal(t, "errgroup internals", result.NewInterest)

	// 3 queries x 2 kept results, every row tied to the one request.
	require.Len(t, resultStore.rows, 6)
	for _, id := range resultStore.rows {
		assert.Equal(t, int64(200), id)
	}
	require.Len(t, reflector.gotPages, 6)

	// Session bookkeeping mirrors the reflection's list lengths.
	assert.Equal(t, "completed", st.completedStatus)
	assert.Equal(t, [3]int{3, 2, 1}, st.completedCounts)
	assert.Equal(t, 1, st.insightsRecorded)
	assert.Equal(t, []string{"errgroup internals"}, st.addedInterests)

	// Request went in_progress then completed.
	require.Len(t, st.statusUpdates, 2)
	assert.Equal(t, "200:in_progress:", st.statusUpdates[0])
	assert.Equal(t, "200:completed:", st.statusUpdates[1])
}

type fakeResultSink struct {
	rows []int64
}

func (f *fakeResultSink) SaveResearchResult(requestID int64, query, url, title, snippet string, content *string, contentType string, relevance *float64) error {
	f.rows = append(f.rows, requestID)
	return nil
}

type emptySearcher struct{}

func (emptySearcher) Search(context.Context, string, int) []research.Result { return nil }

func TestRunSessionNoResults(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{choice: &TopicChoice{
		Topic:         "a dead end",
		SearchQueries: []string{"q1"},
		WhyNow:        "curiosity",
	}}
	reflector := &scriptedReflector{reflection: &Reflection{}}
	runner := research.NewRunner(emptySearcher{}, endToEndFetcher{}, nil)

	o := NewOrchestrator(st, chooser, runner, reflector)
	result := o.RunSession(context.Background(), "autonomous")

	assert.Equal(t, ResultFailed, result.Status)
	assert.Equal(t, "No results found", result.Error)
	assert.Equal(t, "a dead end", result.Topic)

	// Reflection is skipped entirely on empty research.
	assert.False(t, reflector.called)
	assert.Equal(t, "failed", st.completedStatus)
	assert.Equal(t, "No research results", st.completedError)

	require.Len(t, st.statusUpdates, 2)
	assert.True(t, strings.HasSuffix(st.statusUpdates[1], "failed:No results found"))
}

func TestRunSessionReusesExistingRequest(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{choice: &TopicChoice{
		ChoiceType:    "pending_research",
		ResearchID:    555,
		Topic:         "queued topic",
		SearchQueries: []string{"q1"},
	}}
	reflector := &scriptedReflector{reflection: &Reflection{Summary: "ok"}}
	runner := research.NewRunner(&endToEndSearcher{}, endToEndFetcher{}, nil)

	o := NewOrchestrator(st, chooser, runner, reflector)
	result := o.RunSession(context.Background(), "autonomous")

	require.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, "555:in_progress:", st.statusUpdates[0])
	assert.Equal(t, "555:completed:", st.statusUpdates[1])
}

func TestRunSessionAppendsToChosenInterest(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{choice: &TopicChoice{
		ChoiceType:    "existing_interest",
		InterestID:    42,
		Topic:         "interest topic",
		SearchQueries: []string{"q1"},
	}}
	reflector := &scriptedReflector{reflection: &Reflection{
		Summary:     "ok",
		KeyInsights: []string{"one"},
	}}
	runner := research.NewRunner(&endToEndSearcher{}, endToEndFetcher{}, nil)

	o := NewOrchestrator(st, chooser, runner, reflector)
	result := o.RunSession(context.Background(), "autonomous")

	require.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, []int64{42}, st.appendedTo)
	// No interest sparked, none created.
	assert.Empty(t, st.addedInterests)
	assert.Empty(t, result.NewInterest)
}

func TestRunSessionChooserErrorBecomesErrorResult(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{err: fmt.Errorf("llm down")}
	o := NewOrchestrator(st, chooser, research.NewRunner(emptySearcher{}, endToEndFetcher{}, nil), &scriptedReflector{})

	result := o.RunSession(context.Background(), "autonomous")
	assert.Equal(t, ResultError, result.Status)
	assert.Contains(t, result.Error, "llm down")
}

func TestRunSessionStoreErrorBecomesErrorResult(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.failStartSession = true
	o := NewOrchestrator(st, &scriptedChooser{}, research.NewRunner(emptySearcher{}, endToEndFetcher{}, nil), &scriptedReflector{})

	result := o.RunSession(context.Background(), "autonomous")
	assert.Equal(t, ResultError, result.Status)
	assert.Contains(t, result.Error, "db unavailable")
}

func TestRunSessionRecoversFromPanic(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	o := NewOrchestrator(st, panickyChooser{}, research.NewRunner(emptySearcher{}, endToEndFetcher{}, nil), &scriptedReflector{})

	result := o.RunSession(context.Background(), "autonomous")
	assert.Equal(t, ResultError, result.Status)
	assert.Contains(t, result.Error, "boom")
}

func TestRunSessionDefaultsConfidence(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	chooser := &scriptedChooser{choice: &TopicChoice{Topic: "t", SearchQueries: []string{"q"}}}
	reflector := &scriptedReflector{reflection: &Reflection{Summary: "no confidence field"}}
	runner := research.NewRunner(&endToEndSearcher{}, endToEndFetcher{}, nil)

	o := NewOrchestrator(st, chooser, runner, reflector)
	result := o.RunSession(context.Background(), "autonomous")
	require.Equal(t, ResultCompleted, result.Status)
	assert.Equal(t, 1, st.insightsRecorded)
}
