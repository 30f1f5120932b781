package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surfari/boardwalk/internal/api"
	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/config"
	"surfari/boardwalk/internal/db"
	"surfari/boardwalk/internal/jobs"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/routes"
	"surfari/boardwalk/internal/workers"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logging.Init(cfg.Environment); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Boardwalk starting up",
		"environment", cfg.Environment,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to connect to Postgres", "error", err.Error())
		log.Fatalf("postgres: %v", err)
	}
	defer store.Close()
	logging.Info("Connected to Postgres")

	redisClient := common.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	defer redisClient.Close()

	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(cfg, store, redisClient, metricsReg)
	if err != nil {
		logging.Error("Dependency init failed", "error", err.Error())
		log.Fatalf("dependencies: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers.InitializeWorkers(ctx, deps.Services.Ledger, deps.Repos.Live,
		metricsReg, cfg.HeartbeatTTL, cfg.ReapInterval)
	jobs.InitializeJobs(ctx, deps.Repos.Links, deps.Services.RobloxOAuth,
		cfg.SurfariGroupID, cfg.RoleSyncInterval)

	router := routes.NewRouter(deps)

	// Metrics sit on the outer mux so scrapes bypass the chi middleware.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
	logging.Info("Server stopped")
}
