package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []RequestEvent
}

func (o *recordingObserver) OnRequest(e RequestEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestClient_Get_SendsAuthAndJSONHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		login, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", login)
		assert.Equal(t, "secret", password)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	status, body, err := NewClient("alice", "secret").Get(context.Background(), srv.URL+"/myself")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok": true}`, string(body))
}

func TestClient_Get_NonSuccessStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("denied"))
	}))
	defer srv.Close()

	status, body, err := NewClient("alice", "secret").Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "denied", string(body))
}

func TestClient_Get_TransportError(t *testing.T) {
	obs := &recordingObserver{}
	client := NewClient("alice", "secret", WithObserver(obs), WithTimeout(time.Second))

	_, _, err := client.Get(context.Background(), "http://127.0.0.1:1") // nothing listening

	require.Error(t, err)
	require.Len(t, obs.events, 1)
	assert.Equal(t, 0, obs.events[0].StatusCode)
	assert.Error(t, obs.events[0].Err)
}

func TestClient_Get_ReportsEventsToObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	_, _, err := NewClient("a", "b", WithObserver(obs)).Get(context.Background(), srv.URL+"/search")

	require.NoError(t, err)
	require.Len(t, obs.events, 1)
	assert.Equal(t, srv.URL+"/search", obs.events[0].URL)
	assert.Equal(t, http.StatusAccepted, obs.events[0].StatusCode)
	assert.NoError(t, obs.events[0].Err)
	assert.GreaterOrEqual(t, obs.events[0].Latency, time.Duration(0))
}

func TestClient_Get_RateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient("a", "b", WithRateLimit(0.01))

	// the single burst token is spent by the first call
	_, _, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err = client.Get(ctx, srv.URL)
	assert.Error(t, err)
}

func TestClient_Get_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewClient("a", "b").Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
