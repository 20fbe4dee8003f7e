package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-sched/internal/config"
	"github.com/tartampluch/go-sched/internal/engine"
)

// -----------------------------------------------------------------------------
// Test Helpers
// -----------------------------------------------------------------------------

// fixedNow is a Tuesday and Day 1 in the embedded calendar.
var fixedNow = time.Date(2024, time.September, 3, 9, 30, 0, 0, time.UTC)

type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Called(route, code, elapsed)
}

func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	cal, err := engine.DefaultCalendar()
	require.NoError(t, err)
	tpl, err := engine.DefaultPeriodTemplates()
	require.NoError(t, err)

	live := engine.NewLiveTables(fs, config.DefaultSpecialFile, config.DefaultOverrideFile, config.DefaultFlagFile)
	synth := engine.NewSynthesizer(cal, tpl, live, nil, nil, nil)

	srv := New("127.0.0.1:0", synth)
	srv.Clock = engine.FixedClock{At: fixedNow}
	return srv
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// -----------------------------------------------------------------------------
// Schedule Route
// -----------------------------------------------------------------------------

func TestSched_DefaultWindow(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, srv.Handler(), http.MethodGet, config.RouteSched, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	body := decode[SchedResponse](t, resp)
	require.Len(t, body.Blocks, config.DefaultUpcoming)
	assert.Equal(t, config.TitleToday, body.Blocks[0].Title)
	assert.Equal(t, config.TitleTomorrow, body.Blocks[1].Title)
	assert.Equal(t, "Day 1", body.Blocks[0].DayLabel)
	assert.Equal(t, engine.StatusInProgress, body.Blocks[0].Status)
	assert.Equal(t, config.NextCountDefault, body.NextCount)
	assert.False(t, body.ShowBanner)
	assert.Positive(t, body.Stat.TotalDays)
}

func TestSched_Count(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteSched+"?count=12", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[SchedResponse](t, resp)
	assert.Len(t, body.Blocks, 12)
	assert.Equal(t, 19, body.NextCount)
	assert.Empty(t, body.Blocks[5].Title)

	tests := []struct {
		query string
		code  string
	}{
		{"?count=81", config.APICodeTooMany},
		{"?count=abc", config.APICodeBadCount},
		{"?count=0", config.APICodeBadCount},
		{"?count=-3", config.APICodeBadCount},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, h, http.MethodGet, config.RouteSched+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, resp).Code)
		})
	}
}

func TestSched_CancelledToday(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		config.DefaultSpecialFile: "03-09-2024,CANCEL\n",
	})
	resp := do(t, srv.Handler(), http.MethodGet, config.RouteSched, nil)
	body := decode[SchedResponse](t, resp)

	assert.Equal(t, config.ColorCancelled, body.Blocks[0].Color)
	assert.Equal(t, config.LabelCancelled, body.Blocks[0].DayLabel)
	assert.Empty(t, body.Blocks[0].Periods)
}

// -----------------------------------------------------------------------------
// Lookup & Stat Routes
// -----------------------------------------------------------------------------

func TestLookup(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		config.DefaultSpecialFile: "04-09-2024,Photo day\n",
		config.DefaultFlagFile:    "04-09-2024\n",
	})
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteAPI+"?date=04-09-2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[engine.DaySummary](t, resp)
	assert.Equal(t, "Day 2", summary.Day)
	assert.Equal(t, []string{"Photo day"}, summary.Specials)
	assert.True(t, summary.Flagged)
	assert.Equal(t, "French", summary.Periods[1])

	resp = do(t, h, http.MethodGet, config.RouteAPI+"?date=now", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Day 1", decode[engine.DaySummary](t, resp).Day)

	tests := []struct {
		date   string
		status int
		code   string
	}{
		{"2024-09-04", http.StatusBadRequest, config.APICodeBadDate},
		{"", http.StatusBadRequest, config.APICodeBadDate},
		{"01-01-2030", http.StatusNotFound, config.APICodeNoDay},
		{"07-09-2024", http.StatusNotFound, config.APICodeNoSchoolDay},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			resp := do(t, h, http.MethodGet, config.RouteAPI+"?date="+tt.date, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, resp).Code)
		})
	}
}

func TestStatAndHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteStat, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stat := decode[engine.Stat](t, resp)
	assert.Equal(t, stat.TotalDays, stat.DaysPassed+stat.DaysRemaining)

	resp = do(t, h, http.MethodGet, config.RouteHealth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, config.HealthPayload, string(body))
}

// -----------------------------------------------------------------------------
// Feed Route
// -----------------------------------------------------------------------------

func TestFeed_Caching(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteFeed+"?days=7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	etag := resp.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")
	assert.Contains(t, string(body), "SUMMARY:Day 1")

	resp = do(t, h, http.MethodGet, config.RouteFeed+"?days=7", http.Header{
		config.HeaderIfNoneMatch: []string{etag},
	})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp = do(t, h, http.MethodGet, config.RouteFeed+"?days=400", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeed_HeadHasNoBody(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, srv.Handler(), http.MethodHead, config.RouteFeed, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, nil)
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteHealth, http.Header{
		config.HeaderRequestID: []string{"abc-123"},
	})
	assert.Equal(t, "abc-123", resp.Header.Get(config.HeaderRequestID))

	resp = do(t, h, http.MethodGet, config.RouteHealth, http.Header{
		config.HeaderRequestID: []string{strings.Repeat("x", config.RequestIDMaxLen+1)},
	})
	generated := resp.Header.Get(config.HeaderRequestID)
	assert.Len(t, generated, 36)

	resp = do(t, h, http.MethodGet, config.RouteHealth, nil)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderRequestID))
}

func TestObserverAndMethods(t *testing.T) {
	srv := newTestServer(t, nil)
	obs := new(MockObserver)
	obs.On("ObserveRequest", config.RouteStat, http.StatusOK, mock.AnythingOfType("time.Duration")).Once()
	srv.Observer = obs
	h := srv.Handler()

	do(t, h, http.MethodGet, config.RouteStat, nil)
	obs.AssertExpectations(t)

	resp := do(t, h, http.MethodPost, config.RouteSched, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = do(t, h, http.MethodGet, config.RouteMetrics, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "metrics route only exists when a handler is set")
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestStart_RequiresAddr(t *testing.T) {
	srv := &Server{}
	assert.ErrorContains(t, srv.Start(context.Background()), config.ErrPortRequired)
}

func TestStart_GracefulShutdown(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = srv.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()
	assert.NoError(t, err)
}
