package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "gen-1",
	"object": "chat.completion",
	"created": 1730366400,
	"model": "mistralai/mistral-7b-instruct",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"logprobs": null,
		"message": {"role": "assistant", "content": "  {\"ticker\":\"AAPL\"}  "}
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 12, "total_tokens": 22}
}`

type chatServer struct {
	mu       sync.Mutex
	bodies   []map[string]any
	headers  []http.Header
	statuses []int
}

func (s *chatServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)

		s.mu.Lock()
		s.bodies = append(s.bodies, payload)
		s.headers = append(s.headers, r.Header.Clone())
		status := http.StatusOK
		if len(s.statuses) > 0 {
			status, s.statuses = s.statuses[0], s.statuses[1:]
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "upstream busy", "code": 503}}`))
			return
		}
		_, _ = w.Write([]byte(completionBody))
	}
}

func newTestClient(t *testing.T, s *chatServer) *Client {
	t.Helper()
	server := httptest.NewServer(s.handler(t))
	t.Cleanup(server.Close)

	cfg := &Config{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		DefaultModel: defaultModel,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		LogLevel:     "error",
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
		Referer:      "http://localhost:3000",
		Title:        defaultTitle,
	}
	client, err := NewClient(cfg,
		WithHTTPClient(server.Client()),
		WithRetryHandler(NewRetryHandler(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientChat(t *testing.T) {
	s := &chatServer{}
	client := newTestClient(t, s)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, `{"ticker":"AAPL"}`, resp.Content)
	require.Equal(t, "stop", resp.FinishReason)
	require.Equal(t, 22, resp.Usage.TotalTokens)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.bodies, 1)
	payload := s.bodies[0]
	require.Equal(t, defaultModel, payload["model"])
	require.InDelta(t, 0.6, payload["temperature"], 1e-9)
	require.EqualValues(t, 450, payload["max_tokens"])
	require.Equal(t, "Bearer test-key", s.headers[0].Get("Authorization"))
	require.Equal(t, "http://localhost:3000", s.headers[0].Get("HTTP-Referer"))
	require.Equal(t, defaultTitle, s.headers[0].Get("X-Title"))
}

func TestClientChatRetriesServerErrors(t *testing.T) {
	s := &chatServer{statuses: []int{http.StatusServiceUnavailable}}
	client := newTestClient(t, s)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Content)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.bodies, 2)
}

func TestClientChatSurfacesStatus(t *testing.T) {
	s := &chatServer{statuses: []int{http.StatusUnauthorized}}
	client := newTestClient(t, s)

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	status, body, ok := APIStatus(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Contains(t, body, "upstream busy")
}

func TestClientChatValidation(t *testing.T) {
	client := newTestClient(t, &chatServer{})

	_, err := client.Chat(context.Background(), nil)
	require.Error(t, err)
	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	cfg := &Config{
		BaseURL:      defaultBaseURL,
		DefaultModel: defaultModel,
		Timeout:      time.Second,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}
	_, err := NewClient(cfg)
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(nil)
	require.Error(t, err)

	_, _, ok := APIStatus(err)
	require.False(t, ok)
}

func TestNewClientKeepsInjectedRetryHook(t *testing.T) {
	s := &chatServer{statuses: []int{http.StatusServiceUnavailable}}
	server := httptest.NewServer(s.handler(t))
	t.Cleanup(server.Close)

	var attempts []int
	retry := NewRetryHandler(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond}).
		OnRetry(func(attempt int, _ time.Duration, _ error) { attempts = append(attempts, attempt) })

	client, err := NewClient(&Config{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		DefaultModel: defaultModel,
		Timeout:      5 * time.Second,
		LogLevel:     "error",
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}, WithHTTPClient(server.Client()), WithRetryHandler(retry))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, []int{1}, attempts)
}
