// Package api exposes the matcher over HTTP. Routes:
//
//	GET  /              upload page
//	GET  /openapi.yaml  API description
//	POST /v1/match      multipart responses + roster -> result
//	GET  /healthz       Prometheus metrics
//	GET  /stats         run counters
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/gradematch/internal/adapters/http/site"
	"github.com/okian/gradematch/internal/adapters/http/swagger"
	service "github.com/okian/gradematch/internal/app"
	"github.com/okian/gradematch/internal/domain/model"
	"github.com/okian/gradematch/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	// Process runs one in-memory matching pass over uploaded tables.
	Process(ctx context.Context, responses, roster model.Table, hooks service.Hooks) (*service.Result, error)

	// PassThreshold is used to colour result workbooks.
	PassThreshold() float64
}

// Server wires HTTP routes for the upload API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	matchHandler  *MatchHandler
	rootHandler   *site.RootHandler

	allowedOrigins []string
	maxUpload      int64
	outputName     string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		allowedOrigins: []string{"*"},
		maxUpload:      20 << 20,
		outputName:     service.DefaultOutputName,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.matchHandler = NewMatchHandler(deps, s.maxUpload, s.outputName, s.logger)
	s.rootHandler = site.NewRootHandler()
	return s
}

// Handler returns the router with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", headerRunID, headerUnmatched},
		MaxAge:         300,
	}))

	r.Get("/", s.rootHandler.HandleRoot)
	r.Get("/openapi.yaml", swagger.HandleSpec)
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/v1/match", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
