package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rhale/trailtime/internal/api"
	"github.com/rhale/trailtime/internal/config"
	"github.com/rhale/trailtime/internal/factory"
	"github.com/rhale/trailtime/internal/metrics"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/station"
	redisstorage "github.com/rhale/trailtime/internal/storage/redis"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Local development overrides; missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		SecretKey: cfg.Timing.SecretKey,
		StationConfig: station.Config{
			BaseURL:     cfg.Timing.BaseURL,
			TokenExpiry: cfg.Timing.TokenExpiry(),
		},
		AuthConfig: auth.Config{
			SessionDuration: cfg.Auth.SessionDuration(),
			StaffKey:        cfg.Auth.StaffKey,
		},
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		DataDir:     cfg.Storage.DataDir,
	}

	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Periodic session cleanup
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.AuthService.CleanExpiredSessions()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Clock:           app.Clock,
		Storage:         app.Storage,
		TokenCodec:      app.TokenCodec,
		TokenExpiry:     app.TokenExpiry(),
		AuthService:     app.AuthService,
		RegistryService: app.RegistryService,
		RecorderService: app.RecorderService,
		ResultsService:  app.ResultsService,
		StationSession:  app.StationSession,
	})

	// Combine API and metrics routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", metrics.Handler())

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(mux, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
