package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/universeos/dashboard/internal/api"
	"github.com/universeos/dashboard/internal/core/service"
	"github.com/universeos/dashboard/internal/infrastructure/config"
	mongodb "github.com/universeos/dashboard/internal/infrastructure/db/mongo"
	redisdb "github.com/universeos/dashboard/internal/infrastructure/db/redis"
	"github.com/universeos/dashboard/internal/infrastructure/queue"
	"github.com/universeos/dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Msg("starting dashboard server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Data stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	gateway := mongodb.NewGateway(db)
	directory := mongodb.NewUserDirectory(db)
	if err := gateway.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure gateway indexes")
	}
	if err := directory.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure user indexes")
	}

	kv := redisdb.NewKeyValueStore(rdb)
	denylist := redisdb.NewTokenDenylist(rdb)

	// --- Core services ---
	sessions := service.NewSessionService(directory, kv, cfg.JWTSecret, cfg.TokenTTL, log)
	sessions.Restore(ctx)

	configStore := service.NewConfigService(kv, cfg.ConfigHeartbeatInterval, log)
	configStore.Restore(ctx)
	configStore.StartHeartbeat(ctx)
	defer configStore.Stop()

	catalog := service.DefaultCatalog()
	layouts := service.NewLayoutService(gateway, catalog, log)

	hub := service.NewNotificationHub(gateway, configStore, "enableRealtimeDataStreams", cfg.NotificationPollInterval, log)
	hub.Start(ctx)
	defer hub.StopAll()

	auditor := queue.NewDispatcher(0, mongodb.NewAuditSink(db), log)
	auditor.Start(ctx)

	// --- HTTP server ---
	router := api.NewRouter(api.Dependencies{
		DB:        db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Sessions:  sessions,
		Config:    configStore,
		Layouts:   layouts,
		Catalog:   catalog,
		Centers:   hub,
		Auditor:   auditor,
		Denylist:  denylist,
		Log:       log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		_ = srv.Close()
	}

	log.Info().Msg("server exited gracefully")
}
