// Package api is the HTTP surface of the server: data ingest, graph export,
// chat, health, metrics, and a read-only GraphQL endpoint.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-opsgraph/pkg/config"
	"github.com/dd0wney/cluso-opsgraph/pkg/graphql"
	"github.com/dd0wney/cluso-opsgraph/pkg/health"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/metrics"
	"github.com/dd0wney/cluso-opsgraph/pkg/retrieval"
	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

// Server represents the HTTP API server
type Server struct {
	store           *storage.GraphStore
	retriever       *retrieval.Retriever
	generator       Generator
	checker         *health.Checker
	metricsRegistry *metrics.Registry
	graphqlHandler  *graphql.Handler
	logger          logging.Logger
	validate        *validator.Validate

	allowedOrigins string
	uploadMaxBytes int64
	startTime      time.Time
	port           int

	httpServer *http.Server
}

// NewServer wires the API server. A nil generator selects NoopGenerator.
func NewServer(store *storage.GraphStore, cfg config.Config, generator Generator, logger logging.Logger) *Server {
	if generator == nil {
		generator = NoopGenerator{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("api"))

	var gqlHandler *graphql.Handler
	schema, err := graphql.GenerateSchema(store)
	if err != nil {
		logger.Warn("failed to generate GraphQL schema", logging.Error(err))
	} else {
		gqlHandler = graphql.NewHandler(schema)
	}

	checker := health.NewChecker()
	checker.RegisterLivenessCheck("process", health.ProcessCheck())
	checker.RegisterReadinessCheck("graph_store", health.StoreCheck(store))

	limits := retrieval.Limits{MaxDepth: cfg.MaxDepth, MaxVisits: cfg.MaxVisits}

	return &Server{
		store:           store,
		retriever:       retrieval.NewRetriever(store, nil, limits, logger),
		generator:       generator,
		checker:         checker,
		metricsRegistry: metrics.DefaultRegistry(),
		graphqlHandler:  gqlHandler,
		logger:          logger,
		validate:        validator.New(),
		allowedOrigins:  cfg.CORSAllowedOrigins,
		uploadMaxBytes:  cfg.UploadMaxBytes,
		startTime:       time.Now(),
		port:            cfg.Port,
	}
}

// Handler builds the routed and middleware-wrapped handler. Exposed so tests
// can drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/graph/rebuild", s.handleRebuild)
	mux.HandleFunc("/graph", s.handleGraph)
	mux.HandleFunc("/stats", s.handleStats)

	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/graphql", s.handleGraphQL)

	var handler http.Handler = mux
	handler = s.bodySizeLimitMiddleware(handler, s.uploadMaxBytes)
	handler = s.metricsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", logging.String("addr", addr))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeHealth(w, s.checker.CheckReadiness())
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeHealth(w, s.checker.CheckLiveness())
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.writeHealth(w, s.checker.CheckReadiness())
}

func (s *Server) writeHealth(w http.ResponseWriter, response health.Response) {
	status := http.StatusOK
	if response.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, response)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphqlHandler == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}
	s.graphqlHandler.ServeHTTP(w, r)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	stats, err := s.store.Stats()
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, StatsResponse{
		Nodes:        stats.Nodes,
		Edges:        stats.Edges,
		GenerationID: stats.GenerationID,
		Uptime:       time.Since(s.startTime).String(),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	nodes, edges, err := s.store.Export()
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Edges: edges})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
