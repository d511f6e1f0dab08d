// Package server provides the HTTP server for the Samadhi pose service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/samadhi/internal/server/api"
	"github.com/ayusman/samadhi/internal/session"
	"github.com/ayusman/samadhi/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Tracker backs the analysis endpoints.
	Tracker *session.Tracker
	// Lambdas are the default blend weights for evaluation.
	Lambdas []float64
	// OnReferencesChanged runs after the reference catalog was edited.
	OnReferencesChanged func()
	// Preview supplies frames for the MJPEG preview.
	Preview Previewer
	// Observations streams live observations over WebSocket.
	Observations *ObservationHub
}

// Server represents the HTTP server for the Samadhi application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Tracker != nil {
		analysis := api.NewAnalysisHandler(s.config.Tracker)
		for _, p := range []string{"/api/angles", "/api/vectorize", "/api/similarity", "/api/classify", "/api/sources", "/api/sources/"} {
			s.mux.Handle(p, analysis)
		}
	}

	evaluate := api.NewEvaluateHandler(s.config.Store, s.config.Lambdas)
	s.mux.Handle("/api/evaluate", evaluate)
	s.mux.Handle("/api/evaluate/", evaluate)

	if s.config.Store != nil {
		references := api.NewReferenceHandler(s.config.Store, s.config.OnReferencesChanged)
		s.mux.Handle("/api/references", references)
		s.mux.Handle("/api/references/", references)

		s.mux.Handle("/api/pairs", api.NewPairHandler(s.config.Store))

		records := api.NewRecordHandler(s.config.Store)
		s.mux.Handle("/api/records", records)
		s.mux.Handle("/api/records/", records)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.Observations != nil {
		s.mux.Handle("/api/observations", s.config.Observations)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Tracker != nil {
		response["references"] = s.config.Tracker.Catalog().Len()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
