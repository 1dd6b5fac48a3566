package research

import (
	"context"

	"curio/internal/logging"
)

// Per-session research bounds. A learning run is a background job; these
// caps keep it cheap and polite to the search engine.
const (
	MaxSearchQueries   = 3
	MaxResultsPerQuery = 3
	MaxFetchesPerQuery = 2
	MaxContentPerPage  = 4000
)

// Limits bounds one research run. Zero fields fall back to the package
// defaults above.
type Limits struct {
	MaxSearchQueries   int
	MaxResultsPerQuery int
	MaxFetchesPerQuery int
	MaxContentPerPage  int
}

// DefaultLimits returns the standard research bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxSearchQueries:   MaxSearchQueries,
		MaxResultsPerQuery: MaxResultsPerQuery,
		MaxFetchesPerQuery: MaxFetchesPerQuery,
		MaxContentPerPage:  MaxContentPerPage,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxSearchQueries <= 0 {
		l.MaxSearchQueries = d.MaxSearchQueries
	}
	if l.MaxResultsPerQuery <= 0 {
		l.MaxResultsPerQuery = d.MaxResultsPerQuery
	}
	if l.MaxFetchesPerQuery <= 0 {
		l.MaxFetchesPerQuery = d.MaxFetchesPerQuery
	}
	if l.MaxContentPerPage <= 0 {
		l.MaxContentPerPage = d.MaxContentPerPage
	}
	return l
}

// Searcher runs one search query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []Result
}

// PageFetcher downloads a page as plain text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, maxLength int) (string, bool)
}

// ResultStore persists individual research results as they are produced.
type ResultStore interface {
	SaveResearchResult(requestID int64, query, url, title, snippet string, content *string, contentType string, relevance *float64) error
}

// Page is one search hit, possibly enriched with fetched page text.
type Page struct {
	Query   string
	Title   string
	URL     string
	Snippet string
	Content string
	Fetched bool
}

// Outcome summarizes one research run.
type Outcome struct {
	QueriesUsed int
	Pages       []Page
}

// Runner executes the bounded research loop: for each of at most
// Limits.MaxSearchQueries queries, take up to MaxResultsPerQuery search hits
// and keep the first MaxFetchesPerQuery of them that carry a URL, fetching
// each.
type Runner struct {
	searcher Searcher
	fetcher  PageFetcher
	store    ResultStore
	limits   Limits
}

// NewRunner builds a runner with the default limits. store may be nil for
// dry runs; results are then collected but not persisted.
func NewRunner(searcher Searcher, fetcher PageFetcher, store ResultStore) *Runner {
	return NewRunnerWithLimits(searcher, fetcher, store, DefaultLimits())
}

// NewRunnerWithLimits builds a runner with configured bounds.
func NewRunnerWithLimits(searcher Searcher, fetcher PageFetcher, store ResultStore, limits Limits) *Runner {
	return &Runner{searcher: searcher, fetcher: fetcher, store: store, limits: limits.withDefaults()}
}

// Run researches the given queries. Each kept result is persisted as soon as
// it is complete when requestID is set, so a crash mid-run loses at most the
// page in flight. A failed fetch still keeps the row with its snippet; a hit
// without a URL is dropped without consuming fetch budget. Run itself never
// fails; persistence errors are logged and the loop moves on.
func (r *Runner) Run(ctx context.Context, requestID int64, queries []string) Outcome {
	var out Outcome

	for _, query := range queries {
		if out.QueriesUsed >= r.limits.MaxSearchQueries {
			break
		}
		if query == "" {
			continue
		}
		out.QueriesUsed++

		results := r.searcher.Search(ctx, query, r.limits.MaxResultsPerQuery)
		if len(results) > r.limits.MaxResultsPerQuery {
			results = results[:r.limits.MaxResultsPerQuery]
		}
		logging.Research("Query %q: %d results", query, len(results))

		taken := 0
		for _, res := range results {
			if taken >= r.limits.MaxFetchesPerQuery {
				break
			}
			if res.URL == "" {
				continue
			}
			taken++

			page := Page{
				Query:   query,
				Title:   res.Title,
				URL:     res.URL,
				Snippet: res.Snippet,
			}
			if content, ok := r.fetcher.Fetch(ctx, res.URL, r.limits.MaxContentPerPage); ok {
				page.Content = content
				page.Fetched = true
			}

			r.persist(requestID, page)
			out.Pages = append(out.Pages, page)
		}
	}

	return out
}

func (r *Runner) persist(requestID int64, page Page) {
	if r.store == nil || requestID == 0 {
		return
	}

	var content *string
	if page.Fetched {
		content = &page.Content
	}
	if err := r.store.SaveResearchResult(requestID, page.Query, page.URL, page.Title, page.Snippet, content, "webpage", nil); err != nil {
		logging.ResearchWarn("Failed to persist result %s: %v", page.URL, err)
	}
}
