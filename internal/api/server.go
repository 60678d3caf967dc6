// ABOUTME: REST server wiring: router, middleware, and engine construction.
// ABOUTME: Transport stays thin; every route delegates to an engine package.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harperreed/habits/internal/achievement"
	"github.com/harperreed/habits/internal/analytics"
	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/dashboard"
	"github.com/harperreed/habits/internal/goal"
	"github.com/harperreed/habits/internal/storage"
	"github.com/harperreed/habits/internal/streak"
)

// Server wraps the HTTP handlers with the engines they delegate to.
type Server struct {
	log          *zap.Logger
	validate     *validator.Validate
	repo         storage.Repository
	clk          *clock.Clock
	streaks      *streak.Engine
	goals        *goal.Engine
	achievements *achievement.Engine
	aggregator   *analytics.Aggregator
	dashboard    *dashboard.Composer
}

// NewServer builds a server over the given store.
func NewServer(repo storage.Repository, clk *clock.Clock, log *zap.Logger) (*Server, error) {
	achievements, err := achievement.NewEngine(repo, clk, nil)
	if err != nil {
		return nil, fmt.Errorf("build achievement engine: %w", err)
	}
	return &Server{
		log:          log,
		validate:     validator.New(),
		repo:         repo,
		clk:          clk,
		streaks:      streak.NewEngine(repo, clk),
		goals:        goal.NewEngine(repo, clk),
		achievements: achievements,
		aggregator:   analytics.NewAggregator(repo, clk),
		dashboard:    dashboard.NewComposer(repo, clk, nil),
	}, nil
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.Healthz)

	r.Route("/habits", func(r chi.Router) {
		r.Get("/", s.ListHabits)
		r.Post("/", s.CreateHabit)
		r.Get("/{id}", s.GetHabit)
		r.Patch("/{id}", s.UpdateHabit)
		r.Delete("/{id}", s.ArchiveHabit)
		r.Post("/{id}/checkin", s.CheckIn)
		r.Get("/{id}/history", s.History)
	})

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", s.ListGoals)
		r.Post("/", s.CreateGoal)
		r.Get("/stats", s.GoalStats)
		r.Get("/{id}", s.GetGoal)
		r.Patch("/{id}", s.UpdateGoal)
		r.Delete("/{id}", s.DeleteGoal)
		r.Post("/{id}/progress", s.LogProgress)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/trends", s.Trends)
		r.Get("/heatmap", s.Heatmap)
		r.Get("/habits", s.PerHabit)
		r.Get("/month", s.Month)
	})

	r.Get("/achievements", s.Achievements)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/summary", s.Summary)
		r.Get("/weekly", s.Weekly)
		r.Get("/leaderboard", s.Leaderboard)
	})

	return r
}

// Healthz is a simple health check endpoint.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ownerID extracts the acting owner from the X-Owner-ID header.
func ownerID(r *http.Request) string {
	if owner := r.Header.Get("X-Owner-ID"); owner != "" {
		return owner
	}
	return "default"
}
