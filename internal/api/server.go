// Package api exposes graph lookups, scene analysis, plan validation and the
// run archive over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dusk-indust/transcreate/internal/archive"
	"github.com/dusk-indust/transcreate/internal/graph"
	"github.com/dusk-indust/transcreate/internal/orchestrator"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// RunIDHeader carries the archive id of an analysis.
const RunIDHeader = "X-Run-ID"

// Server serves the HTTP API. One Server shares its store and engine across
// all requests.
type Server struct {
	store          graph.Store
	engine         *orchestrator.Engine
	archive        *archive.Store
	logger         *zap.Logger
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithArchive records every analysis in a. Without it the /v1/plans routes
// answer 501.
func WithArchive(a *archive.Store) Option {
	return func(s *Server) {
		s.archive = a
	}
}

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigins sets the CORS origins. The default allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates a Server over store and engine.
func NewServer(store graph.Store, engine *orchestrator.Engine, opts ...Option) *Server {
	s := &Server{
		store:          store,
		engine:         engine,
		logger:         zap.NewNop(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{RunIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/nodes", s.handleFindNode)
		r.Get("/candidates", s.handleCandidates)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{id}", s.handleGetPlan)
		r.Get("/schema/{kind}", s.handleSchema)
		r.Post("/validate/{kind}", s.handleValidate)
	})
	return r
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("HTTP API listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
