package research

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	calls      []string
	perQuery   int
	emptyURLAt int // 1-based result index whose URL is blank; 0 disables
}

// Search ignores maxResults on purpose so tests can verify the runner
// truncates oversized result sets itself.
func (f *fakeSearcher) Search(_ context.Context, query string, _ int) []Result {
	f.calls = append(f.calls, query)
	var results []Result
	for i := 1; i <= f.perQuery; i++ {
		url := fmt.Sprintf("https://example.com/%s/%d", query, i)
		if i == f.emptyURLAt {
			url = ""
		}
		results = append(results, Result{
			Title:   fmt.Sprintf("%s #%d", query, i),
			URL:     url,
			Snippet: "snippet",
		})
	}
	return results
}

type fakeFetcher struct {
	calls      []string
	maxLengths []int
	fail       bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, maxLength int) (string, bool) {
	f.calls = append(f.calls, url)
	f.maxLengths = append(f.maxLengths, maxLength)
	if f.fail {
		return "", false
	}
	return "content of " + url, true
}

type fakeResultStore struct {
	saved []savedResult
	err   error
}

type savedResult struct {
	requestID int64
	query     string
	url       string
	content   *string
}

func (f *fakeResultStore) SaveResearchResult(requestID int64, query, url, title, snippet string, content *string, contentType string, relevance *float64) error {
	f.saved = append(f.saved, savedResult{requestID: requestID, query: query, url: url, content: content})
	return f.err
}

func manyQueries(n int) []string {
	queries := make([]string, n)
	for i := range queries {
		queries[i] = fmt.Sprintf("q%d", i+1)
	}
	return queries
}

func TestRunnerBounds(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 10}
	fetcher := &fakeFetcher{}
	store := &fakeResultStore{}
	runner := NewRunner(searcher, fetcher, store)

	out := runner.Run(context.Background(), 42, manyQueries(10))

	// 10 queries in, 3 run; 10 results per query, 2 kept and fetched each.
	assert.Equal(t, 3, out.QueriesUsed)
	assert.Equal(t, []string{"q1", "q2", "q3"}, searcher.calls)
	assert.Len(t, fetcher.calls, 6)
	assert.Len(t, store.saved, 6)
	require.Len(t, out.Pages, 6)

	for _, p := range out.Pages {
		assert.True(t, p.Fetched)
		assert.NotEmpty(t, p.Content)
	}
}

func TestRunnerHonorsConfiguredLimits(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 10}
	fetcher := &fakeFetcher{}
	store := &fakeResultStore{}
	runner := NewRunnerWithLimits(searcher, fetcher, store, Limits{
		MaxSearchQueries:   1,
		MaxFetchesPerQuery: 1,
		MaxContentPerPage:  123,
	})

	out := runner.Run(context.Background(), 42, manyQueries(10))

	assert.Equal(t, 1, out.QueriesUsed)
	assert.Equal(t, []string{"q1"}, searcher.calls)
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, []int{123}, fetcher.maxLengths)
	assert.Len(t, store.saved, 1)
}

func TestLimitsZeroFieldsUseDefaults(t *testing.T) {
	t.Parallel()

	l := Limits{MaxSearchQueries: 1}.withDefaults()
	assert.Equal(t, 1, l.MaxSearchQueries)
	assert.Equal(t, MaxResultsPerQuery, l.MaxResultsPerQuery)
	assert.Equal(t, MaxFetchesPerQuery, l.MaxFetchesPerQuery)
	assert.Equal(t, MaxContentPerPage, l.MaxContentPerPage)
}

func TestRunnerSkipsEmptyURL(t *testing.T) {
	t.Parallel()

	// First hit has no URL: it is dropped and the budget moves to hits 2 and 3.
	searcher := &fakeSearcher{perQuery: 3, emptyURLAt: 1}
	fetcher := &fakeFetcher{}
	runner := NewRunner(searcher, fetcher, nil)

	out := runner.Run(context.Background(), 0, []string{"q"})

	require.Len(t, fetcher.calls, 2)
	assert.Contains(t, fetcher.calls[0], "/q/2")
	assert.Contains(t, fetcher.calls[1], "/q/3")
	assert.Len(t, out.Pages, 2)
}

func TestRunnerPersistsImmediately(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 2}
	store := &fakeResultStore{}
	runner := NewRunner(searcher, &fakeFetcher{}, store)

	runner.Run(context.Background(), 7, []string{"q1"})

	require.Len(t, store.saved, 2)
	for _, s := range store.saved {
		assert.Equal(t, int64(7), s.requestID)
		assert.Equal(t, "q1", s.query)
	}
	require.NotNil(t, store.saved[0].content)
	assert.Contains(t, *store.saved[0].content, "content of")
}

func TestRunnerNoPersistWithoutRequest(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 2}
	store := &fakeResultStore{}
	runner := NewRunner(searcher, &fakeFetcher{}, store)

	runner.Run(context.Background(), 0, []string{"q1"})
	assert.Empty(t, store.saved)
}

func TestRunnerFetchFailureKeepsRow(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 3}
	store := &fakeResultStore{}
	runner := NewRunner(searcher, &fakeFetcher{fail: true}, store)

	out := runner.Run(context.Background(), 9, []string{"q1"})

	// Rows survive with snippet only; no content column.
	require.Len(t, store.saved, 2)
	for _, s := range store.saved {
		assert.Nil(t, s.content)
	}
	for _, p := range out.Pages {
		assert.False(t, p.Fetched)
		assert.Equal(t, "snippet", p.Snippet)
	}
}

func TestRunnerSkipsBlankQueries(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 1}
	runner := NewRunner(searcher, &fakeFetcher{}, nil)

	out := runner.Run(context.Background(), 0, []string{"", "q1", "", "q2"})

	assert.Equal(t, 2, out.QueriesUsed)
	assert.Equal(t, []string{"q1", "q2"}, searcher.calls)
}

func TestRunnerNoResultsAnywhere(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 0}
	runner := NewRunner(searcher, &fakeFetcher{}, nil)

	out := runner.Run(context.Background(), 0, manyQueries(5))
	assert.Equal(t, 3, out.QueriesUsed)
	assert.Empty(t, out.Pages)
}

func TestRunnerStorePersistErrorDoesNotAbort(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{perQuery: 2}
	store := &fakeResultStore{err: fmt.Errorf("db down")}
	runner := NewRunner(searcher, &fakeFetcher{}, store)

	out := runner.Run(context.Background(), 5, []string{"q1"})
	assert.Len(t, out.Pages, 2)
}
