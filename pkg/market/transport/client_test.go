package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsBodyAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "marketdash-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer server.Close()

	client := New(WithUserAgent("marketdash-test"))
	resp, err := client.Get(context.Background(), server.URL, http.Header{"X-Key": []string{"secret"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"a":1}`, string(resp.Body))
}

func TestGetTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := New(WithTimeout(50 * time.Millisecond))
	start := time.Now()
	_, err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
