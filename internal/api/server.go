// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"phalanx-matcher/internal/common/config"
	"phalanx-matcher/internal/common/logger"
	"phalanx-matcher/internal/matcher"
	"phalanx-matcher/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Version = "0.1.0"

type Matcher interface {
	Match(ctx context.Context, founderID string, p matcher.Params) (*matcher.Result, error)
	MatchRules(ctx context.Context, founderID string, p matcher.Params) (*matcher.Result, error)
}

type FounderIngestor interface {
	Ingest(ctx context.Context, input models.FounderProfileInput) (*matcher.IngestResult, error)
}

type MatchStore interface {
	ListForFounder(ctx context.Context, founderID string, minScore float64, limit int) ([]models.Match, error)
	Stats(ctx context.Context, founderID string) (models.MatchStats, error)
	MarkViewed(ctx context.Context, matchID string) error
}

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

type Deps struct {
	Matcher  Matcher
	Ingestor FounderIngestor
	Matches  MatchStore

	// Health gates /health; Ready gates /ready and may cover more
	// dependencies.
	Health Checker
	Ready  Checker

	Matching    config.MatchingConfig
	Environment string
	Logger      logger.Logger
}

type Server struct {
	deps   Deps
	logger logger.Logger
	router chi.Router
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/api", s.handleAPIInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/match/{founderId}", s.handleMatch)
	r.Get("/match-rules/{founderId}", s.handleMatchRules)
	r.Post("/ingest/founder", s.handleIngestFounder)
	r.Get("/founders/{founderId}/matches", s.handleStoredMatches)
	r.Post("/matches/{matchId}/viewed", s.handleMarkViewed)

	return r
}

// NewHTTPServer wraps the handler with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
