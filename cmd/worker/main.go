// Worker entry point: consumes publication-ingested events from Kafka, runs
// the mining pipeline on each, and publishes the mined results.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/config"
	"github.com/curately/ResearchTools-Intelligence/internal/domain/registry"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/postgres"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/curately/ResearchTools-Intelligence/internal/infrastructure/database/redis"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/prometheus"
	miniostorage "github.com/curately/ResearchTools-Intelligence/internal/infrastructure/storage/minio"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	concurrency := flag.Int("workers", 0, "number of concurrent consumers (overrides config)")
	healthPort := flag.Int("health-port", defaultHealthPort, "health probe port")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Worker.Concurrency = *concurrency
	}

	logger, err := logging.NewLogger(toLogConfig(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting toolminer worker",
		logging.Int("consumers", cfg.Worker.Concurrency),
		logging.String("ingest_topic", cfg.Kafka.IngestTopic),
		logging.String("results_topic", cfg.Kafka.ResultsTopic),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	service := toolmining.NewMiningService(
		registries,
		repositories.NewCatalogRepository(pg.Pool(), logger),
		redisclient.NewResultCache(redisCli, logger),
		metrics,
		logger,
		cfg.Mining.CompletenessThreshold,
	)

	producer := kafka.NewResultProducer(cfg.Kafka, logger)
	defer producer.Close()

	// The section store is best effort: without it the worker mines inline
	// text only and stored-section references are skipped.
	var storage kafka.SectionStorage
	if minioCli, err := miniostorage.NewClient(ctx, cfg.MinIO, logger); err != nil {
		logger.Warn("minio unavailable, section storage disabled", logging.Err(err))
	} else {
		storage = miniostorage.NewSectionStore(minioCli, cfg.MinIO.Bucket)
	}

	// Each consumer holds its own group reader; the broker balances
	// partitions across them.
	var wg sync.WaitGroup
	consumers := make([]*kafka.IngestConsumer, cfg.Worker.Concurrency)
	for i := range consumers {
		consumers[i] = kafka.NewIngestConsumer(cfg.Kafka, service, producer, storage, logger)
		wg.Add(1)
		go func(c *kafka.IngestConsumer, id int) {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				logger.Error("consumer stopped", logging.Int("consumer", id), logging.Err(err))
			}
		}(consumers[i], i)
	}

	healthSrv := startHealthServer(*healthPort, metrics.Handler(), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", logging.String("signal", sig.String()))

	cancel()
	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Warn("consumer close error", logging.Err(err))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cfg.Worker.DrainTimeout):
		logger.Warn("drain timeout exceeded, forcing exit")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	logger.Info("toolminer worker stopped")
}

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

// startHealthServer serves liveness/readiness probes and the metrics
// exposition on a side port, away from broker traffic.
func startHealthServer(port int, metricsHandler http.Handler, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", metricsHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}
