package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediagrab/backend/internal/api"
	"github.com/mediagrab/backend/internal/config"
	"github.com/mediagrab/backend/internal/download"
	"github.com/mediagrab/backend/internal/engine"
	"github.com/mediagrab/backend/internal/format"
	"github.com/mediagrab/backend/internal/health"
	"github.com/mediagrab/backend/internal/job"
	"github.com/mediagrab/backend/internal/logger"
	"github.com/mediagrab/backend/internal/metrics"
	"github.com/mediagrab/backend/internal/middleware"
	"github.com/mediagrab/backend/internal/storage"
	"github.com/mediagrab/backend/internal/store"
	"github.com/mediagrab/backend/internal/websocket"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log := logger.New(&logger.Config{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "server",
	})
	logger.SetDefault(log)

	ctx := context.Background()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		log.Error(ctx, "failed to create download directory", err, map[string]interface{}{
			"dir": cfg.DownloadDir,
		})
		os.Exit(1)
	}

	redisStore, err := store.NewRedis(cfg.RedisAddr)
	if err != nil {
		log.Error(ctx, "failed to connect to redis", err, map[string]interface{}{
			"addr": cfg.RedisAddr,
		})
		os.Exit(1)
	}
	defer redisStore.Close()

	jobs := job.NewStore(redisStore, cfg.ProgressTTL, cfg.ResultTTL)

	eng := engine.NewYTDLP()
	if err := eng.Ping(ctx); err != nil {
		log.Warn(ctx, "fetch engine check failed, downloads will fail until resolved", map[string]interface{}{
			"error": err.Error(),
		})
	}

	appMetrics := metrics.Default()

	hub := websocket.NewHub()
	hub.SetMetrics(appMetrics)
	go hub.Run()
	defer hub.Close()
	tracker := websocket.NewProgressTracker(hub)

	opts := []download.Option{
		download.WithNotifier(tracker),
		download.WithMetrics(appMetrics),
	}

	var storageCheck func(ctx context.Context) error
	if cfg.ArchiveEnabled {
		archive, err := storage.New(&storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Error(ctx, "failed to create storage client", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Error(ctx, "failed to ensure archive bucket", err)
			os.Exit(1)
		}
		opts = append(opts, download.WithArchiver(archive))
		storageCheck = archive.Ping
	}

	orch := download.New(jobs, eng, &download.Config{
		DownloadDir:       cfg.DownloadDir,
		WorkerCount:       cfg.WorkerCount,
		QueueCapacity:     cfg.QueueCapacity,
		JobTimeout:        cfg.JobTimeout,
		PostprocessSettle: cfg.PostprocessSettle,
	}, opts...)
	orch.Start()

	resolver := format.NewResolver(eng, cfg.MaxFormats)

	checker := health.NewChecker(&health.CheckerConfig{
		Redis:        redisStore.Client(),
		EngineCheck:  eng.Ping,
		StorageCheck: storageCheck,
		Version:      version,
	})

	wsHandler := websocket.NewHandler(hub, orch)

	router := api.NewRouter(orch, resolver, wsHandler, health.NewHandler(checker), appMetrics.Handler())

	handler := middleware.Chain(router,
		middleware.RequestID,
		middleware.Recoverer(log),
		middleware.Logging(log),
		metrics.MetricsMiddleware(appMetrics),
		middleware.CORS([]string{"*"}),
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // artifact downloads can be large
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"addr": cfg.ServerAddr,
		})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error(ctx, "server failed", err)
		os.Exit(1)
	case sig := <-stop:
		log.Info(ctx, "shutting down", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "http shutdown failed", err)
	}
	if err := orch.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "worker pool shutdown failed", err)
	}

	log.Info(ctx, "shutdown complete")
}
