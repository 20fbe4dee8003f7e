// Package server exposes the schedule engine over HTTP.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tartampluch/go-sched/internal/config"
	"github.com/tartampluch/go-sched/internal/engine"
)

// Observer receives one call per served request.
type Observer interface {
	ObserveRequest(route string, code int, elapsed time.Duration)
}

// Server serves schedule blocks, day lookups, statistics and the iCal feed.
type Server struct {
	Addr     string
	Synth    *engine.Synthesizer
	Clock    engine.Clock
	FeedDays int

	// Metrics, when set, is mounted on the metrics route.
	Metrics  http.Handler
	Observer Observer
}

// New creates a server with the real clock and the default feed window.
func New(addr string, synth *engine.Synthesizer) *Server {
	return &Server{
		Addr:     addr,
		Synth:    synth,
		Clock:    engine.RealClock{},
		FeedDays: config.DefaultFeedDays,
	}
}

// SchedResponse is the payload of the schedule route.
type SchedResponse struct {
	Blocks     []engine.Block `json:"blocks"`
	Stat       engine.Stat    `json:"stat"`
	ShowBanner bool           `json:"show_banner"`
	NextCount  int            `json:"next_count"`
}

// ErrorResponse is returned with every non-2xx JSON status.
type ErrorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handler builds the router with all routes and middlewares.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, s.accessLog)

	r.HandleFunc(config.RouteHealth, handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteSched, s.handleSched).Methods(http.MethodGet)
	r.HandleFunc(config.RouteStat, s.handleStat).Methods(http.MethodGet)
	r.HandleFunc(config.RouteAPI, s.handleLookup).Methods(http.MethodGet)
	r.HandleFunc(config.RouteFeed, s.handleFeed).Methods(http.MethodGet, http.MethodHead)
	if s.Metrics != nil {
		r.Handle(config.RouteMetrics, s.Metrics).Methods(http.MethodGet)
	}
	return r
}

// Start listens on Addr and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, 1)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *Server) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(config.HealthPayload))
}

// handleSched renders the upcoming blocks. Without a count the default window
// is used; counts above the maximum are refused.
func (s *Server) handleSched(w http.ResponseWriter, r *http.Request) {
	count, requested, ok := parseCount(w, r, config.QueryCount, config.DefaultUpcoming, config.MaxUpcoming)
	if !ok {
		return
	}

	now := s.now()
	writeJSON(w, http.StatusOK, SchedResponse{
		Blocks:     s.Synth.Upcoming(now, count),
		Stat:       s.Synth.Stat(now),
		ShowBanner: engine.ShowBanner(now),
		NextCount:  engine.NextCount(count, requested),
	})
}

func (s *Server) handleStat(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Synth.Stat(s.now()))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Synth.Lookup(r.URL.Query().Get(config.QueryDate), s.now())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, summary)
	case errors.Is(err, engine.ErrBadDate):
		writeError(w, http.StatusBadRequest, config.APICodeBadDate, err)
	case errors.Is(err, engine.ErrNoDay):
		writeError(w, http.StatusNotFound, config.APICodeNoDay, err)
	case errors.Is(err, engine.ErrNotSchoolDay):
		writeError(w, http.StatusNotFound, config.APICodeNoSchoolDay, err)
	default:
		writeError(w, http.StatusInternalServerError, config.APICodeInternal, err)
	}
}

// handleFeed serves the iCal feed with an ETag derived from its content, so
// clients polling an unchanged schedule receive 304.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	def := s.FeedDays
	if def <= 0 {
		def = config.DefaultFeedDays
	}
	days, _, ok := parseCount(w, r, config.QueryDays, def, config.MaxFeedDays)
	if !ok {
		return
	}

	data, err := s.Synth.Feed(s.now(), days)
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, RequestIDFrom(r.Context()),
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.APICodeInternal, err)
		return
	}

	etag := feedETag(data)

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)

	if r.Header.Get(config.HeaderIfNoneMatch) == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		if _, err := w.Write(data); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// feedETag hashes the sorted content lines: the encoder does not fix the
// order of properties inside a component.
func feedETag(data []byte) string {
	lines := strings.Split(string(data), "\r\n")
	slices.Sort(lines)
	hash := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
}

// parseCount reads a positive integer query parameter. It writes the error
// response itself and reports ok=false when the value is unusable.
func parseCount(w http.ResponseWriter, r *http.Request, name string, def, limit int) (n int, requested, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, false, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, config.APICodeBadCount, fmt.Errorf("%s=%q", name, raw))
		return 0, true, false
	}
	if n > limit {
		writeError(w, http.StatusBadRequest, config.APICodeTooMany, fmt.Errorf("%s=%d exceeds %d", name, n, limit))
		return 0, true, false
	}
	return n, true, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := ErrorResponse{Code: code}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}
