package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/sortvis/internal/algo"
	"github.com/dyluth/sortvis/internal/eventbus"
	"github.com/dyluth/sortvis/internal/runner"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, bus Pinger) (*Server, *runner.Runner) {
	t.Helper()
	r := runner.New(algo.Default[int](), runner.WithSeed(7))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})
	return New(r, bus, ":0"), r
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	t.Run("healthy without event bus", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		rec := do(t, s, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		resp := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "healthy", resp.Status)
		assert.Empty(t, resp.Redis)
	})

	t.Run("reports connected redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := eventbus.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
		require.NoError(t, err)
		defer client.Close()

		s, _ := newTestServer(t, client)
		rec := do(t, s, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "connected", resp.Redis)
	})

	t.Run("unhealthy when redis is unreachable", func(t *testing.T) {
		client, err := eventbus.NewClient(&redis.Options{
			Addr:        "localhost:16379",
			DialTimeout: 100 * time.Millisecond,
		}, "test-instance")
		require.NoError(t, err)
		defer client.Close()

		s, _ := newTestServer(t, client)
		rec := do(t, s, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		resp := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "disconnected", resp.Redis)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("rejects other methods", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		rec := do(t, s, http.MethodPost, "/healthz", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAlgorithms(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/algorithms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AlgorithmsResponse](t, rec)
	assert.Equal(t, algo.Default[int]().Names(), resp.Algorithms)
	assert.Len(t, resp.Algorithms, 8)
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"valid", SettingsBody{Elements: 10, ReadDelayUs: 0, WriteDelayUs: 5}, http.StatusNoContent},
		{"zero elements", SettingsBody{Elements: 0}, http.StatusBadRequest},
		{"negative delay", SettingsBody{Elements: 5, ReadDelayUs: -1}, http.StatusBadRequest},
		{"elements above max", SettingsBody{Elements: runner.MaxElements + 1}, http.StatusBadRequest},
		{"huge elements", SettingsBody{Elements: 2_000_000_000}, http.StatusBadRequest},
		{"read delay above max", SettingsBody{Elements: 5, ReadDelayUs: 1001}, http.StatusBadRequest},
		{"write delay above max", SettingsBody{Elements: 5, WriteDelayUs: 1001}, http.StatusBadRequest},
		{"overflowing delay", SettingsBody{Elements: 5, WriteDelayUs: 18446744073709552}, http.StatusBadRequest},
		{"bounds inclusive", SettingsBody{Elements: runner.MaxElements, ReadDelayUs: 1000, WriteDelayUs: 1000}, http.StatusNoContent},
		{"unknown field", map[string]any{"elements": 5, "speed": 3}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil)
			rec := do(t, s, http.MethodPost, "/api/configure", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("settings round trip", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		want := SettingsBody{Elements: 42, ReadDelayUs: 3, WriteDelayUs: 9}
		require.Equal(t, http.StatusNoContent, do(t, s, http.MethodPost, "/api/configure", want).Code)

		rec := do(t, s, http.MethodGet, "/api/settings", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, decodeBody[SettingsBody](t, rec))
	})
}

func TestStartAndPoll(t *testing.T) {
	s, r := newTestServer(t, nil)
	require.Equal(t, http.StatusNoContent,
		do(t, s, http.MethodPost, "/api/configure", SettingsBody{Elements: 5}).Code)

	rec := do(t, s, http.MethodPost, "/api/start", StartRequest{Algorithm: algo.NameSelection})
	require.Equal(t, http.StatusAccepted, rec.Code)
	started := decodeBody[StartResponse](t, rec)
	assert.NotEmpty(t, started.RunID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.Wait(ctx)
	require.NoError(t, err)

	rec = do(t, s, http.MethodGet, "/api/sequence", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, decodeBody[SequenceResponse](t, rec).Values)

	rec = do(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[StatsResponse](t, rec)
	assert.Equal(t, started.RunID, stats.RunID)
	assert.Equal(t, "completed", stats.Status)
	assert.Equal(t, algo.NameSelection, stats.Algorithm)
	assert.Equal(t, 5, stats.Elements)
	assert.NotZero(t, stats.ReadCount)
}

func TestStart_Errors(t *testing.T) {
	t.Run("unknown algorithm", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		rec := do(t, s, http.MethodPost, "/api/start", StartRequest{Algorithm: "Bogo Sort"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "unknown algorithm")
	})

	t.Run("malformed body", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/start", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("already running then cancel", func(t *testing.T) {
		s, r := newTestServer(t, nil)
		require.Equal(t, http.StatusNoContent,
			do(t, s, http.MethodPost, "/api/configure", SettingsBody{Elements: 200, WriteDelayUs: 200}).Code)
		require.Equal(t, http.StatusAccepted,
			do(t, s, http.MethodPost, "/api/start", StartRequest{Algorithm: algo.NameBubble}).Code)

		rec := do(t, s, http.MethodPost, "/api/start", StartRequest{Algorithm: algo.NameHeap})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = do(t, s, http.MethodPost, "/api/configure", SettingsBody{Elements: 10})
		assert.Equal(t, http.StatusConflict, rec.Code)

		assert.Equal(t, http.StatusAccepted, do(t, s, http.MethodPost, "/api/cancel", nil).Code)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		final, err := r.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, runner.StatusCancelled, final.Status)

		stats := decodeBody[StatsResponse](t, do(t, s, http.MethodGet, "/api/stats", nil))
		assert.Equal(t, "cancelled", stats.Status)
	})
}

func TestCancel_Idle(t *testing.T) {
	s, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusAccepted, do(t, s, http.MethodPost, "/api/cancel", nil).Code)

	stats := decodeBody[StatsResponse](t, do(t, s, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, "idle", stats.Status)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, nil)
	assert.Equal(t, ":0", s.Addr())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
