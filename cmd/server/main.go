package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	apiecho "github.com/sketchmentor/core/api/echo"
	"github.com/sketchmentor/core/cache"
	redisvisit "github.com/sketchmentor/core/cache/redis"
	"github.com/sketchmentor/core/config"
	"github.com/sketchmentor/core/domain"
	applog "github.com/sketchmentor/core/log"
	"github.com/sketchmentor/core/mongodb"
	"github.com/sketchmentor/core/provider"
	"github.com/sketchmentor/core/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := applog.NewZerologAdapter(level, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable activity store: MongoDB when configured, in-memory
	// otherwise (local development).
	var repo domain.ActivityRepository
	if cfg.MongoURI != "" {
		if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
			logger.Fatal(ctx, "failed to initialize MongoDB", err)
		}
		defer mongodb.Disconnect(context.Background()) //nolint:errcheck
		repo, err = mongodb.NewActivityRepositoryMongo(ctx, mongodb.GetDB())
		if err != nil {
			logger.Fatal(ctx, "failed to initialize activity repository", err)
		}
	} else {
		logger.Warn(ctx, "MONGO_URI not set, activity events are held in memory only")
		repo = cache.NewMemoryActivityStore()
	}

	// Page-visit suppression window: shared via Redis when running
	// multiple replicas, process-local otherwise.
	var visits services.VisitLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal(ctx, "failed to connect to Redis", err)
		}
		visits = redisvisit.NewVisitWindow(client, cfg.VisitSuppressionWindow)
	} else {
		window := cache.NewVisitWindow(cfg.VisitSuppressionWindow)
		defer window.Close()
		visits = window
	}

	hub := provider.NewHub(provider.NewLocalBackend())
	if cfg.GoogleClientID != "" {
		hub.Register(provider.NewGoogleBackend(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL))
	}

	sessions := services.NewSessionStore(hub, cfg.LoginTrackDelay)
	recorder := services.NewActivityRecorder(sessions, repo, visits)
	sessions.AttachTracker(recorder)
	feed := services.NewActivityFeed(sessions, repo, cfg.FeedLimit)
	feed.Bind(sessions, recorder)

	if err := sessions.Initialize(ctx); err != nil {
		logger.Error(ctx, "session initialization degraded", err)
	}
	defer sessions.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	apiecho.NewSessionAPI(sessions, recorder, feed, cfg.SignInURL).RegisterRoutes(e)

	go func() {
		logger.Info(ctx, "starting HTTP server", map[string]any{"port": cfg.HTTPPort})
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server failed", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown failed", err)
	}
	logger.Info(shutdownCtx, "server stopped")
}
