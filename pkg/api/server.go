// Package api serves the chainmap HTTP API: project topology for the
// graph view, and chain CRUD for the attack-chain editor.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redgraph/chainmap/pkg/graphql"
	"github.com/redgraph/chainmap/pkg/health"
	"github.com/redgraph/chainmap/pkg/logging"
	"github.com/redgraph/chainmap/pkg/metrics"
	"github.com/redgraph/chainmap/pkg/store"
	"github.com/redgraph/chainmap/pkg/topology"
)

const serverVersion = "1.0.0"

// validate checks request payload shapes
var validate = validator.New()

// Server is the HTTP API server
type Server struct {
	chains      store.ChainStore
	inventory   *topology.Inventory
	registry    *metrics.Registry
	checker     *health.Checker
	logger      logging.Logger
	graphql     http.Handler
	corsOrigins []string
	startTime   time.Time
	port        int
}

// Options configures NewServer
type Options struct {
	Chains      store.ChainStore
	Inventory   *topology.Inventory
	Registry    *metrics.Registry
	Logger      logging.Logger
	CORSOrigins []string
	Port        int
}

// NewServer creates an API server over the given stores
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	registry := opts.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	s := &Server{
		chains:      opts.Chains,
		inventory:   opts.Inventory,
		registry:    registry,
		checker:     health.NewChecker(serverVersion),
		logger:      logger.With(logging.Component("api")),
		corsOrigins: opts.CORSOrigins,
		startTime:   time.Now(),
		port:        opts.Port,
	}

	gql, err := graphql.NewHandler(opts.Chains, opts.Inventory)
	if err != nil {
		s.logger.Warn("graphql schema unavailable", logging.Error(err))
	} else {
		s.graphql = gql
	}

	return s
}

// Checker exposes the health checker so main can register dependency
// probes (e.g. the database ping)
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Routes builds the route table with the middleware chain applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.checker.Handler())
	mux.Handle("GET /metrics", s.registry.Handler())
	mux.HandleFunc("POST /graphql", s.handleGraphQL)

	mux.HandleFunc("GET /projects/{projectID}/topology", s.handleGetTopology)
	mux.HandleFunc("POST /projects/{projectID}/hosts", s.handleCreateHost)
	mux.HandleFunc("POST /hosts/{hostID}/services", s.handleCreateService)

	mux.HandleFunc("GET /projects/{projectID}/chains", s.handleListChains)
	mux.HandleFunc("POST /projects/{projectID}/chains", s.handleCreateChain)
	mux.HandleFunc("GET /chains/{chainID}", s.handleGetChain)
	mux.HandleFunc("PUT /chains/{chainID}", s.handleUpdateChain)
	mux.HandleFunc("DELETE /chains/{chainID}", s.handleDeleteChain)

	var handler http.Handler = mux
	handler = s.metricsMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

// Start runs the server until it fails or is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("api server starting", logging.String("addr", addr))

	go s.updateUptimePeriodically()

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphql == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}
	s.graphql.ServeHTTP(w, r)
}

func (s *Server) updateUptimePeriodically() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.registry.UptimeSeconds.Set(time.Since(s.startTime).Seconds())
	}
}

// Helper methods

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
