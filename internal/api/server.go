// Package api serves the read-only diagnostics surface over HTTP: the
// session state, the latest telemetry snapshot and last sent action, and a
// plain-text monitor view. It never touches protocol state.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/trackpilot/internal/db"
	"github.com/banshee-data/trackpilot/internal/render"
	"github.com/banshee-data/trackpilot/internal/scrproto"
	"github.com/banshee-data/trackpilot/internal/session"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Monitor is the view of a live session the server exposes. Implemented by
// *session.Session.
type Monitor interface {
	State() session.State
	Latest() (*scrproto.Snapshot, *scrproto.Action)
	Frames() int
}

type Server struct {
	mon Monitor
	db  *db.DB // optional; nil disables journal endpoints
}

func NewServer(mon Monitor, journal *db.DB) *Server {
	return &Server{mon: mon, db: journal}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.showStatus)
	mux.HandleFunc("/api/telemetry", s.showTelemetry)
	mux.HandleFunc("/api/action", s.showAction)
	mux.HandleFunc("/monitor", s.showMonitor)
	if s.db != nil {
		mux.HandleFunc("/api/sessions", s.listSessions)
		s.db.AttachAdminRoutes(mux)
	}
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) showStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state":  s.mon.State().String(),
		"frames": s.mon.Frames(),
	})
}

func (s *Server) showTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	snap, _ := s.mon.Latest()
	if snap == nil {
		s.writeJSONError(w, http.StatusNotFound, "no telemetry received yet")
		return
	}
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) showAction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	_, act := s.mon.Latest()
	if act == nil {
		s.writeJSONError(w, http.StatusNotFound, "no action sent yet")
		return
	}
	json.NewEncoder(w).Encode(act)
}

// showMonitor renders the race-engineer text view of the latest frame.
func (s *Server) showMonitor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	snap, act := s.mon.Latest()
	if snap == nil {
		io.WriteString(w, "no telemetry received yet\n")
		return
	}
	io.WriteString(w, render.Snapshot(snap))
	if act != nil {
		io.WriteString(w, "\n")
		io.WriteString(w, render.Action(act))
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}
	rows, err := s.db.Sessions(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	json.NewEncoder(w).Encode(rows)
}
