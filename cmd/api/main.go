package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Krushna2656/agentic-honeypot/internal/api"
	"github.com/Krushna2656/agentic-honeypot/internal/api/handlers"
	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/services"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/cache"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/database"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/database/repository"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/internal/streaming"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting agentic honeypot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Infrastructure is optional: the core runs fully in memory
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
			natsPublisher = nil
		}
	}
	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()

	// Core services
	store := session.NewStore()
	extractor := services.NewSignalExtractor(log)
	classifier := services.NewStageClassifier(log)
	scorer := services.NewConfidenceScorer(log)
	aggregator := services.NewEvidenceAggregator(extractor, log)

	templates, err := services.NewTemplateBank(cfg.Persona)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reply templates")
	}
	policy := services.NewReplyPolicy(templates, cfg.Detection, log)

	opts := []services.EngineOption{services.WithPublisher(eventBus)}
	if redisCache != nil {
		opts = append(opts,
			services.WithClusterRegistry(redisCache),
			services.WithDecisionCache(redisCache),
		)
	}
	var repo *repository.TurnRepository
	if db != nil {
		if err := db.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to run migrations, continuing without persistence")
		} else {
			repo = repository.NewTurnRepository(db.Pool(), log)
			opts = append(opts, services.WithRecorder(repo))
		}
	}

	engine := services.NewHoneypotEngine(
		extractor, classifier, scorer, aggregator, policy, store,
		cfg.Detection, log, opts...,
	)

	h := handlers.NewHandlers(handlers.Dependencies{
		Config:     *cfg,
		Engine:     engine,
		Classifier: classifier,
		Store:      store,
		Cache:      redisCache,
		DB:         db,
		Repo:       repo,
		Logger:     log,
	})

	router := api.NewRouter(*cfg, h, redisCache, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to PostgreSQL and Redis when enabled.
// Both are optional; the service warns and continues without them.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
