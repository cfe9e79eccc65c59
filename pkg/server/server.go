package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aleksaelezovic/sparqlconsole/internal/history"
	"github.com/aleksaelezovic/sparqlconsole/internal/telemetry"
	"github.com/aleksaelezovic/sparqlconsole/pkg/console"
	"github.com/aleksaelezovic/sparqlconsole/pkg/render"
)

// Server represents the HTTP query console
type Server struct {
	runner     console.Runner
	datasets   console.DatasetLister
	history    *history.History
	dispatcher *console.Dispatcher
	sessions   *sessionStore
	options    render.Options
	addr       string
	http       *http.Server
}

// NewServer creates a console that runs queries with runner. history may be
// nil, which disables recording.
func NewServer(runner console.Runner, datasets console.DatasetLister, hist *history.History, opts render.Options, addr string) *Server {
	s := &Server{
		runner:     runner,
		datasets:   datasets,
		history:    hist,
		dispatcher: console.NewDispatcher(),
		sessions:   newSessionStore(defaultMaxSessions),
		options:    opts,
		addr:       addr,
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the console routes wrapped in request tracing
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /results/{id}", s.handleResults)
	mux.HandleFunc("GET /results/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /results/{id}/raw", s.handleRaw)
	mux.HandleFunc("POST /results/{id}/clear", s.handleClear)
	mux.HandleFunc("GET /api/datasets", s.handleDatasets)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/query", s.handleAPIQuery)
	mux.HandleFunc("GET /api/results/{id}", s.handleAPIResults)
	mux.HandleFunc("GET /api/results/{id}/graph", s.handleAPIGraph)
	return telemetry.Middleware(mux)
}

// Start starts the HTTP server and blocks until it stops. A server closed
// by Shutdown returns nil.
func (s *Server) Start() error {
	log.Printf("Starting SPARQL console at http://%s/", s.addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
