package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/somos-tech/profile-service/internal/api/http"
	"github.com/somos-tech/profile-service/internal/api/http/handlers"
	"github.com/somos-tech/profile-service/internal/config"
	"github.com/somos-tech/profile-service/internal/events"
	"github.com/somos-tech/profile-service/internal/moderation"
	"github.com/somos-tech/profile-service/internal/observability"
	"github.com/somos-tech/profile-service/internal/persistence"
	"github.com/somos-tech/profile-service/internal/principal"
	"github.com/somos-tech/profile-service/internal/registry"
	"github.com/somos-tech/profile-service/internal/service"
	"github.com/somos-tech/profile-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	adminRegistry := registry.NewRegistry(pool)
	profileStore := registry.NewProfileStore(pool)
	reviewFlags := registry.NewReviewFlagStore(pool)
	roleCache := registry.NewRoleCache(redis.Client, cfg.Auth.RoleCacheTTL())

	extractor := principal.NewExtractor(cfg.Auth.PrincipalHeader)
	resolver := service.NewRoleResolver(adminRegistry, roleCache, cfg.Auth, logger)

	pipeline := moderation.NewHTTPPipeline(cfg.Moderation.Endpoint, cfg.Moderation.Timeout())
	gate := moderation.NewGate(pipeline, logger)

	dispatcher := events.NewInMemoryDispatcher()
	worker.NewReviewWorker(reviewFlags, logger).Register(dispatcher)

	profileService := service.NewProfileService(profileStore, gate, dispatcher, logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	rolesHandler := handlers.NewRolesHandler(extractor, resolver, logger)
	profileHandler := handlers.NewProfileHandler(extractor, profileService, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Roles:    rolesHandler,
		Profiles: profileHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
