package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/core/services"
	"github.com/jakechorley/team-rota/pkg/db"
)

const requestTimeout = 30 * time.Second

// Options carries the service settings the handlers pass through
type Options struct {
	Feed  services.FeedOptions
	Sweep services.SweepOptions
}

// Server serves the rota HTTP API
type Server struct {
	store    db.Database
	logger   *zap.Logger
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewServer creates a Server backed by store
func NewServer(store db.Database, logger *zap.Logger, opts Options) *Server {
	return &Server{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		opts:     opts,
		now:      time.Now,
	}
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", s.Health)

	r.Route("/members/{memberID}", func(r chi.Router) {
		r.Get("/notifications", s.GetNotificationFeed)
		r.Get("/substitutions/pending", s.GetPendingSubstitutions)
		r.Put("/availability/{scheduleID}", s.ConfirmAvailability)
	})

	r.Post("/notifications/recipients/{recipientID}/read", s.MarkAdminMessageRead)

	r.Post("/substitutions", s.CreateSubstitutionRequest)
	r.Post("/substitutions/{requestID}/resolve", s.ResolveSubstitutionRequest)

	r.Post("/broadcasts", s.SendBroadcast)
	r.Delete("/broadcasts/{notificationID}", s.DeleteBroadcast)

	r.Post("/retention/sweep", s.RunRetentionSweep)

	return r
}

// pinger is implemented by stores that can report their connectivity
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the server and its store are up
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			respondError(w, s.logger, http.StatusServiceUnavailable, ErrCodeUnavailable, "store unavailable")
			return
		}
	}
	respondJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}
