package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTMLToText(t *testing.T) {
	page := `<html><head><title>Go scheduler</title>
<script>alert("noise")</script><style>body{}</style></head>
<body>
<nav>skip this nav</nav>
<h1>The Go scheduler</h1>
<p>Goroutines are multiplexed onto OS threads.</p>
<p>Work stealing keeps <a href="/p">processors</a> busy.</p>
<img src="x.png" alt="diagram">
<footer>skip this footer</footer>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	f := NewFetcher(0)
	text, ok := f.Fetch(context.Background(), server.URL, MaxContentPerPage)
	require.True(t, ok)

	assert.Contains(t, text, "The Go scheduler")
	assert.Contains(t, text, "Goroutines are multiplexed onto OS threads.")
	// Link text survives, markup and hrefs do not.
	assert.Contains(t, text, "processors")
	assert.NotContains(t, text, "href")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "skip this nav")
	assert.NotContains(t, text, "skip this footer")
	assert.NotContains(t, text, "diagram")
	// No blank lines in the reduced text.
	for _, line := range strings.Split(text, "\n") {
		assert.NotEmpty(t, strings.TrimSpace(line))
	}
}

func TestFetchTruncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer server.Close()

	f := NewFetcher(0)
	text, ok := f.Fetch(context.Background(), server.URL, 4000)
	require.True(t, ok)
	assert.Len(t, text, 4000)
}

func TestFetchTruncatesOnRuneBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(strings.Repeat("é", 100))) // 2 bytes per rune
	}))
	defer server.Close()

	f := NewFetcher(0)
	text, ok := f.Fetch(context.Background(), server.URL, 25)
	require.True(t, ok)
	// The cut backs off to the previous rune start rather than splitting one.
	assert.True(t, utf8.ValidString(text))
	assert.Len(t, text, 24)
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	t.Parallel()

	s := "日本語テキスト"
	for n := 0; n <= len(s); n++ {
		got := truncate(s, n)
		assert.True(t, utf8.ValidString(got), "truncate(%q, %d) = %q", s, n, got)
		assert.LessOrEqual(t, len(got), n)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(0)
	text, ok := f.Fetch(context.Background(), server.URL, 4000)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestFetchDeadServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := NewFetcher(0)
	_, ok := f.Fetch(context.Background(), server.URL, 4000)
	assert.False(t, ok)
}

func TestFetchEmptyURL(t *testing.T) {
	t.Parallel()

	f := NewFetcher(0)
	_, ok := f.Fetch(context.Background(), "", 4000)
	assert.False(t, ok)
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcher(0)
	_, ok := f.Fetch(context.Background(), server.URL, 100)
	require.True(t, ok)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetchSendsConfiguredUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := NewFetcherWithConfig(FetcherConfig{UserAgent: "curio-test/0.1"})
	_, ok := f.Fetch(context.Background(), server.URL, 100)
	require.True(t, ok)
	assert.Equal(t, "curio-test/0.1", gotUA)
}
