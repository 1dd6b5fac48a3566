package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"curio/internal/logging"

	"golang.org/x/net/html"
)

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the fetcher to origin servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; curio/1.0)"

// Fetcher downloads a page and reduces it to plain text for the reflection
// prompt. Links, images and boilerplate elements are dropped; only readable
// text survives.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherConfig configures a Fetcher. Zero fields take the package defaults.
type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NewFetcher returns a fetcher with the given per-request timeout. A zero
// timeout means DefaultFetchTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return NewFetcherWithConfig(FetcherConfig{Timeout: timeout})
}

// NewFetcherWithConfig returns a fetcher with custom settings.
func NewFetcherWithConfig(config FetcherConfig) *Fetcher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch downloads url and returns at most maxLength characters of plain
// text. The bool reports whether usable content was obtained; failures of
// any kind degrade to ("", false) and are logged, never returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, maxLength int) (string, bool) {
	if pageURL == "" {
		return "", false
	}

	text, err := f.fetch(ctx, pageURL, maxLength)
	if err != nil {
		logging.ResearchWarn("Fetch failed for %s: %v", pageURL, err)
		return "", false
	}
	if text == "" {
		return "", false
	}

	logging.ResearchDebug("Fetched %s (%d chars)", pageURL, len(text))
	return text, true
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string, maxLength int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20)) // 2MB limit
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	if strings.Contains(contentType, "text/plain") || strings.Contains(contentType, "text/markdown") {
		text = strings.TrimSpace(string(body))
	} else {
		text, err = htmlToText(string(body))
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}

	if maxLength > 0 {
		text = truncate(text, maxLength)
	}
	return text, nil
}

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

// htmlToText reduces an HTML document to its visible text, one line per
// block, with blank lines dropped.
func htmlToText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	extractVisibleText(doc, &sb, 0)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func extractVisibleText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return // Prevent excessive recursion
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header", "img":
			return
		case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "title":
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractVisibleText(c, sb, depth+1)
	}
}
