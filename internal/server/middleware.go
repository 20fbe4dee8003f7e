package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tartampluch/go-sched/internal/config"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDFrom returns the request ID stored by the request ID middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID reuses the caller's X-Request-ID when it is short enough,
// otherwise a fresh UUID is issued. The ID is echoed in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(config.HeaderRequestID)
		if rid == "" || len(rid) > config.RequestIDMaxLen {
			rid = uuid.New().String()
		}
		w.Header().Set(config.HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// accessLog logs each request once, at a level derived from its status.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		latency := time.Since(start)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.Observer != nil {
			s.Observer.ObserveRequest(route, sw.status, latency)
		}

		attrs := []any{
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, RequestIDFrom(r.Context()),
			config.LogKeyMethod, r.Method,
			config.LogKeyPath, r.URL.Path,
			config.LogKeyQuery, r.URL.RawQuery,
			config.LogKeyStatus, sw.status,
			config.LogKeyLatency, latency.String(),
			config.LogKeyRemote, r.RemoteAddr,
		}
		switch {
		case sw.status >= http.StatusInternalServerError:
			slog.Error(config.MsgRequestFailed, attrs...)
		case sw.status >= http.StatusBadRequest:
			slog.Warn(config.MsgRequestClient, attrs...)
		default:
			slog.Info(config.MsgRequest, attrs...)
		}
	})
}
