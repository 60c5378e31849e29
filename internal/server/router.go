package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dailyink/dailyink/internal/api"
	"github.com/dailyink/dailyink/internal/database"
	mw "github.com/dailyink/dailyink/internal/middleware"
	inats "github.com/dailyink/dailyink/internal/nats"
)

// HandlerSet holds the handler functions wired in main.
type HandlerSet struct {
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	GetBalance     http.HandlerFunc
	GetHistory     http.HandlerFunc
	UnlockFeedback http.HandlerFunc

	GetStreak  http.HandlerFunc
	MarkStreak http.HandlerFunc

	GetProfile http.HandlerFunc

	CreateSubmission http.HandlerFunc
	ListSubmissions  http.HandlerFunc
	GetSubmission    http.HandlerFunc

	TodayTopic http.HandlerFunc

	AuthMiddleware func(http.Handler) http.Handler
}

// Dependencies are the backing services probed by /health/ready. A nil
// NATS client means NATS is not configured.
type Dependencies struct {
	Pool  *pgxpool.Pool
	Redis redis.Cmdable
	NATS  *inats.Client
}

type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
	SubmitRateLimiter  func(http.Handler) http.Handler
}

func NewRouter(deps Dependencies, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	r.Get("/health/ready", readiness(deps))
	r.Get("/health", readiness(deps))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthRateLimiter != nil {
					r.Use(cfg.AuthRateLimiter)
				}
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/refresh", h.Refresh)
			})

			r.With(h.AuthMiddleware).Post("/logout", h.Logout)
		})

		r.Get("/topics/today", h.TodayTopic)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/tokens", func(r chi.Router) {
				r.Get("/", h.GetBalance)
				r.Get("/history", h.GetHistory)
				r.Post("/unlock-feedback", h.UnlockFeedback)
			})

			r.Route("/streak", func(r chi.Router) {
				r.Get("/", h.GetStreak)
				r.Post("/days/{day}", h.MarkStreak)
			})

			r.Get("/profile", h.GetProfile)

			r.Route("/submissions", func(r chi.Router) {
				if cfg.SubmitRateLimiter != nil {
					r.With(cfg.SubmitRateLimiter).Post("/", h.CreateSubmission)
				} else {
					r.Post("/", h.CreateSubmission)
				}
				r.Get("/", h.ListSubmissions)
				r.Get("/{submissionID}", h.GetSubmission)
			})
		})
	})

	return r
}

func readiness(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
			"nats":     "healthy",
		}
		status := http.StatusOK
		degrade := func(component, state string) {
			health[component] = state
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		ctx := r.Context()
		if deps.Pool == nil || database.HealthCheck(ctx, deps.Pool) != nil {
			degrade("database", "unhealthy")
		}
		if deps.Redis == nil || pingRedis(ctx, deps.Redis) != nil {
			degrade("redis", "unhealthy")
		}
		switch {
		case deps.NATS == nil:
			health["nats"] = "not configured"
		case !deps.NATS.Healthy():
			degrade("nats", "unhealthy")
		}

		api.JSON(w, status, health)
	}
}

func pingRedis(ctx context.Context, c redis.Cmdable) error {
	return c.Ping(ctx).Err()
}
