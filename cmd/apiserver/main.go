// API server entry point: serves the mining pipeline over REST.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/config"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/postgres"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/redis"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/curately/ResearchTools-Intelligence/internal/interfaces/http"
	"github.com/curately/ResearchTools-Intelligence/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrateUp := flag.Bool("migrate", true, "run pending database migrations on startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(toLogConfig(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting toolminer API server",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode),
	)

	ctx := context.Background()

	if *migrateUp {
		if err := postgres.NewMigrator(cfg.Database, logger).Up(); err != nil {
			logger.Fatal("database migration failed", logging.Err(err))
		}
	}

	pg, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", logging.Err(err))
	}
	defer pg.Close()

	redisCli, err := redisclient.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis connection failed", logging.Err(err))
	}
	defer redisCli.Close()

	registries, err := registry.NewProvider(cfg.Mining.RegistryPath, logger)
	if err != nil {
		logger.Fatal("registry load failed", logging.Err(err))
	}
	defer registries.Close()
	if cfg.Mining.WatchRegistry {
		if err := registries.Watch(); err != nil {
			logger.Fatal("registry watch failed", logging.Err(err))
		}
	}

	metrics := prometheus.NewPipelineMetrics()
	catalogRepo := repositories.NewCatalogRepository(pg.Pool(), logger)
	resultCache := redisclient.NewResultCache(redisCli, logger)

	service := toolmining.NewMiningService(
		registries,
		catalogRepo,
		resultCache,
		metrics,
		logger,
		cfg.Mining.CompletenessThreshold,
	)

	checkers := []handlers.HealthChecker{
		handlers.HealthCheckFunc{CheckName: "postgres", Check: func(c *gin.Context) error {
			return pg.Pool().Ping(c.Request.Context())
		}},
		handlers.HealthCheckFunc{CheckName: "redis", Check: func(c *gin.Context) error {
			return redisCli.Raw().Ping(c.Request.Context()).Err()
		}},
	}

	router := httpserver.NewRouter(cfg.Server.Mode, service, registries, checkers, metrics.Handler(), logger)
	server := httpserver.NewServer(cfg.Server, router, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	logger.Info("toolminer API server stopped")
}

// loadConfig reads the YAML file when present, otherwise falls back to
// TOOLMINER_* environment variables only.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func toLogConfig(cfg config.LogConfig) logging.LogConfig {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	out := logging.LogConfig{Level: cfg.Level, Format: format}
	if cfg.Output != "" {
		out.OutputPaths = []string{cfg.Output}
	}
	return out
}
