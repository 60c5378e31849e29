package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dailyink/dailyink/internal/auth"
	"github.com/dailyink/dailyink/internal/config"
	"github.com/dailyink/dailyink/internal/database"
	mw "github.com/dailyink/dailyink/internal/middleware"
	inats "github.com/dailyink/dailyink/internal/nats"
	"github.com/dailyink/dailyink/internal/profile"
	iredis "github.com/dailyink/dailyink/internal/redis"
	"github.com/dailyink/dailyink/internal/server"
	"github.com/dailyink/dailyink/internal/stats"
	"github.com/dailyink/dailyink/internal/streak"
	"github.com/dailyink/dailyink/internal/submissions"
	"github.com/dailyink/dailyink/internal/tokens"
	"github.com/dailyink/dailyink/internal/topics"
	"github.com/dailyink/dailyink/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(config.NewLogger(cfg.Log, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS is optional. Without it events are dropped and profiles are not
	// updated from feedback.
	var (
		natsClient *inats.Client
		publisher  *inats.Publisher
	)
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	} else {
		slog.Warn("NATS_URL not set, event publishing disabled")
	}

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userSvc := users.NewService(users.NewRepository(pool))
	authHandler := auth.NewHandler(authSvc, userSvc)
	authMiddleware := auth.Middleware(authSvc)

	// Domain services
	loc := cfg.Tokens.Location()
	tokenSvc := tokens.NewService(tokens.NewRepository(pool), cfg.Tokens)
	streakSvc := streak.NewService(streak.NewRepository(pool), tokenSvc, publisher, loc)
	profileSvc := profile.NewService(profile.NewRepository(pool), stats.Thresholds{
		Trend:     cfg.Stats.TrendThreshold,
		Criterion: cfg.Stats.CriterionThreshold,
	})
	submissionSvc := submissions.NewService(submissions.NewRepository(pool), tokenSvc, streakSvc, publisher)
	topicSvc := topics.NewService(
		topics.NewRedisCache(redisClient, cfg.Topics.CacheTTL),
		topics.NewPostgresSource(pool),
		loc,
	)

	tokenHandler := tokens.NewHandler(tokenSvc)
	streakHandler := streak.NewHandler(streakSvc)
	profileHandler := profile.NewHandler(profileSvc)
	submissionHandler := submissions.NewHandler(submissionSvc)
	topicHandler := topics.NewHandler(topicSvc)

	authLimiter := mw.NewRateLimiter(redisClient, "auth",
		cfg.RateLimit.AuthMaxRequests,
		time.Duration(cfg.RateLimit.AuthWindowSec)*time.Second,
		mw.ClientIP,
	)
	submitLimiter := mw.NewRateLimiter(redisClient, "submit",
		cfg.RateLimit.SubmitMaxRequests,
		time.Duration(cfg.RateLimit.SubmitWindowSec)*time.Second,
		auth.UserKey(mw.ClientIP),
	)

	deps := server.Dependencies{Pool: pool, Redis: redisClient, NATS: natsClient}
	router := server.NewRouter(deps, server.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
		SubmitRateLimiter:  submitLimiter.Middleware,
	}, server.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		GetBalance:     tokenHandler.GetBalance,
		GetHistory:     tokenHandler.GetHistory,
		UnlockFeedback: tokenHandler.UnlockFeedback,

		GetStreak:  streakHandler.Get,
		MarkStreak: streakHandler.MarkDay,

		GetProfile: profileHandler.Get,

		CreateSubmission: submissionHandler.Create,
		ListSubmissions:  submissionHandler.List,
		GetSubmission:    submissionHandler.Get,

		TodayTopic: topicHandler.Today,

		AuthMiddleware: authMiddleware,
	})

	srv := server.New(cfg.Server, router)

	// The server and the feedback consumer share a lifetime: either failing
	// stops the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if natsClient != nil {
		consumer := profile.NewConsumer(profileSvc, inats.NewConsumerManager(natsClient.JetStream()))
		g.Go(func() error { return consumer.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("shutting down", "error", err)
		os.Exit(1)
	}
}
