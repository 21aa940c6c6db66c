// Package httpapi exposes read-only monitoring state over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Leoace99/opsctl/internal/httpapi/middleware"
	"github.com/Leoace99/opsctl/internal/state"
)

type Server struct {
	Logger     *zap.Logger
	Streaks    state.Store
	ResultFile string

	APIKeys  []string
	RPM      int
	Burst    int
	Registry *prometheus.Registry
}

func NewServer(l *zap.Logger, st state.Store, resultFile string) *Server {
	return &Server{Logger: l, Streaks: st, ResultFile: resultFile}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.RPM, s.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if s.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireKey(s.APIKeys))
		r.Get("/api/origin/state", s.handleOriginState)
		r.Get("/api/cn/results", s.handleCNResults)
	})

	return r
}

type streakEntry struct {
	Target              string `json:"target"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastAlertUnix       int64  `json:"last_alert_unix"`
}

// handleOriginState lists the targets currently in a failure streak, sorted
// by name so the output is stable.
func (s *Server) handleOriginState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Streaks.Snapshot(r.Context())
	if err != nil {
		s.Logger.Error("state_snapshot_error", zap.Error(err))
		http.Error(w, "state error", http.StatusInternalServerError)
		return
	}

	entries := make([]streakEntry, 0, len(snap))
	for name, st := range snap {
		entries = append(entries, streakEntry{
			Target:              name,
			ConsecutiveFailures: st.ConsecutiveFailures,
			LastAlertUnix:       st.LastAlertUnix,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Target < entries[j].Target })

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// handleCNResults serves the latest run artifact verbatim.
func (s *Server) handleCNResults(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.ResultFile)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no results yet", http.StatusNotFound)
			return
		}
		s.Logger.Error("result_read_error", zap.String("file", s.ResultFile), zap.Error(err))
		http.Error(w, "result error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
