// Package server provides the HTTP server for the GlossNet sign recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/glossnet/internal/dataset"
	"github.com/ayusman/glossnet/internal/model"
	"github.com/ayusman/glossnet/internal/server/api"
	"github.com/ayusman/glossnet/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Model     *model.Model
	Labels    *dataset.Labels
}

// Server represents the HTTP server for the GlossNet application.
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

	// Register vocabulary and statistics handlers if Store is configured
	if s.config.Store != nil {
		wordsHandler := api.NewWordsHandler(s.config.Store)
		s.mux.Handle("/api/words", wordsHandler)
		s.mux.Handle("/api/words/", wordsHandler)
		s.mux.Handle("/api/stats", api.NewStatsHandler(s.config.Store))
	}

	// Register classification endpoints if Model is configured
	if s.config.Model != nil {
		s.mux.Handle("/api/predict", api.NewPredictHandler(s.config.Model, s.config.Labels))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Model, s.config.Labels))
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status":       "ok",
		"uptime":       uptime.String(),
		"model_loaded": s.config.Model != nil,
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
