package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *AnthropicClient {
	return NewAnthropicClientWithConfig(AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5 * time.Second,
	})
}

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{
				{Type: "text", Text: "first "},
				{Type: "text", Text: "second"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Complete(context.Background(), "claude-sonnet-4-20250514", 1000, "pick a topic")
	require.NoError(t, err)

	// Text blocks are concatenated and trimmed.
	assert.Equal(t, "first second", got)
	assert.Equal(t, "claude-sonnet-4-20250514", gotReq.Model)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "pick a topic", gotReq.Messages[0].Content)
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "claude-sonnet-4-20250514", 1000, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestAnthropicCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "claude-sonnet-4-20250514", 1000, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion")
}

func TestAnthropicCompleteNoAPIKey(t *testing.T) {
	client := NewAnthropicClient("")
	_, err := client.Complete(context.Background(), "claude-sonnet-4-20250514", 1000, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
