package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/scott4ai/ukraine-fire-tracking/internal/adapter/http"
	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	"github.com/scott4ai/ukraine-fire-tracking/internal/engine"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// mockPlayback records commands and returns canned errors.
type mockPlayback struct {
	startErr error
	speedErr error

	startedAt    time.Time
	startedEnd   time.Time
	startedSpeed string
	paused       bool
	resumed      bool
	stopped      bool
	stats        domain.Statistics
}

func (m *mockPlayback) Start(rangeStart, rangeEnd time.Time, speedKey string) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.startedAt = rangeStart
	m.startedEnd = rangeEnd
	m.startedSpeed = speedKey
	return nil
}

func (m *mockPlayback) Pause()  { m.paused = true }
func (m *mockPlayback) Resume() { m.resumed = true }
func (m *mockPlayback) Stop()   { m.stopped = true }

func (m *mockPlayback) ChangeSpeed(string) error { return m.speedErr }

func (m *mockPlayback) Statistics() domain.Statistics { return m.stats }

func newTestServer(playback *mockPlayback, readyErr error) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", playback, &mockReadiness{err: readyErr}, logger)
}

func doJSON(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestPlaybackStart(t *testing.T) {
	playback := &mockPlayback{}
	srv := newTestServer(playback, nil)

	rec := doJSON(t, srv, http.MethodPost, "/playback/start",
		`{"start_date":"2023-02-24","end_date":"2023-03-01","speed":"fast"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2023, 2, 24, 0, 0, 0, 0, time.UTC), playback.startedAt)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), playback.startedEnd)
	assert.Equal(t, "fast", playback.startedSpeed)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "started", body["status"])
}

func TestPlaybackStart_DefaultsSpeed(t *testing.T) {
	playback := &mockPlayback{}
	srv := newTestServer(playback, nil)

	rec := doJSON(t, srv, http.MethodPost, "/playback/start",
		`{"start_date":"2023-02-24T06:00:00Z","end_date":"2023-02-25T06:00:00Z"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultSpeed, playback.startedSpeed)
	assert.Equal(t, time.Date(2023, 2, 24, 6, 0, 0, 0, time.UTC), playback.startedAt)
}

func TestPlaybackStart_Conflict(t *testing.T) {
	playback := &mockPlayback{startErr: engine.ErrSessionActive}
	srv := newTestServer(playback, nil)

	rec := doJSON(t, srv, http.MethodPost, "/playback/start",
		`{"start_date":"2023-02-24","end_date":"2023-03-01"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPlaybackStart_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		startErr error
	}{
		{name: "malformed json", body: `{"start_date":`},
		{name: "bad start date", body: `{"start_date":"yesterday","end_date":"2023-03-01"}`},
		{name: "bad end date", body: `{"start_date":"2023-02-24","end_date":"soon"}`},
		{
			name:     "inverted range",
			body:     `{"start_date":"2023-03-01","end_date":"2023-02-24"}`,
			startErr: engine.ErrInvalidRange,
		},
		{
			name:     "unknown speed",
			body:     `{"start_date":"2023-02-24","end_date":"2023-03-01","speed":"ludicrous"}`,
			startErr: engine.ErrUnknownSpeed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&mockPlayback{startErr: tt.startErr}, nil)
			rec := doJSON(t, srv, http.MethodPost, "/playback/start", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlaybackCommands(t *testing.T) {
	playback := &mockPlayback{}
	srv := newTestServer(playback, nil)

	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/playback/pause", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/playback/resume", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/playback/stop", "").Code)

	assert.True(t, playback.paused)
	assert.True(t, playback.resumed)
	assert.True(t, playback.stopped)
}

func TestPlaybackSpeed(t *testing.T) {
	srv := newTestServer(&mockPlayback{}, nil)
	rec := doJSON(t, srv, http.MethodPost, "/playback/speed", `{"speed":"fastest"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(&mockPlayback{speedErr: engine.ErrUnknownSpeed}, nil)
	rec = doJSON(t, srv, http.MethodPost, "/playback/speed", `{"speed":"warp"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaybackStatistics(t *testing.T) {
	playback := &mockPlayback{stats: domain.Statistics{
		SessionID:        "sess-1",
		Running:          true,
		Speed:            "slow",
		TotalRecords:     100,
		ProcessedRecords: 40,
	}}
	srv := newTestServer(playback, nil)

	rec := doJSON(t, srv, http.MethodGet, "/playback/statistics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "sess-1", stats.SessionID)
	assert.True(t, stats.Running)
	assert.Equal(t, int64(40), stats.ProcessedRecords)
}

func TestPlaybackConfig(t *testing.T) {
	srv := newTestServer(&mockPlayback{}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/playback/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Speeds []struct {
			Key          string  `json:"key"`
			HoursPerTick float64 `json:"hours_per_tick"`
		} `json:"speeds"`
		DefaultSpeed string `json:"default_speed"`
		DefaultRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"default_range"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.DefaultSpeed, body.DefaultSpeed)
	require.Len(t, body.Speeds, 5)
	assert.Equal(t, "slowest", body.Speeds[0].Key)
	assert.Equal(t, 6.0, body.Speeds[0].HoursPerTick)

	// The default range is the last two years ending today.
	start, err := time.ParseInLocation("2006-01-02", body.DefaultRange.Start, time.UTC)
	require.NoError(t, err)
	end, err := time.ParseInLocation("2006-01-02", body.DefaultRange.End, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 730), end)
	assert.WithinDuration(t, time.Now().UTC(), end, 25*time.Hour)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockPlayback{}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&mockPlayback{}, fmt.Errorf("not ready yet"))
	rec := doJSON(t, srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockPlayback{}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
