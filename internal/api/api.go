package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/feed"
	"codeberg.org/mirrwin/upsmon/internal/logger"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const maxIngestBody = 64 << 10

// Server exposes the feed to the browser dashboard: series snapshots for
// the chart, a status endpoint, and an HTTP ingest path for UPS agents
// that push readings directly.
type Server struct {
	feed    *feed.Feed
	started time.Time
	httpSrv *http.Server
}

func NewServer(listen string, f *feed.Feed) *Server {
	s := &Server{
		feed:    f,
		started: time.Now(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/series/{metric}", s.getSeries).Methods("GET")
	r.HandleFunc("/api/v1/status", s.getStatus).Methods("GET")
	r.HandleFunc("/api/v1/readings", s.postReading).Methods("POST")

	s.httpSrv = &http.Server{
		Addr:              listen,
		Handler:           handlers.LoggingHandler(logger.Writer(), r),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	metric := telemetry.Metric(mux.Vars(r)["metric"])

	known := false
	for _, m := range telemetry.Tracked() {
		if m == metric {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, "unknown metric")
		return
	}

	points := s.feed.Snapshot(metric)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

type statusResponse struct {
	State         feed.State `json:"state"`
	WindowFill    int        `json:"window_fill"`
	LastReading   string     `json:"last_reading,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		State:         s.feed.State(),
		WindowFill:    s.feed.WindowFill(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if last := s.feed.LastReceived(); !last.IsZero() {
		resp.LastReading = last.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) postReading(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	reading, err := telemetry.ParseReading(body, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reading")
		return
	}

	// Store-and-return: the tick loop consumes the reading later.
	s.feed.Offer(reading)

	w.WriteHeader(http.StatusAccepted)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
