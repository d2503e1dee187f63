package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/boltapp/marketplace-api/docs" // swagger docs

	"github.com/boltapp/marketplace-api/internal/api"
	"github.com/boltapp/marketplace-api/internal/infrastructure/config"
	mongostore "github.com/boltapp/marketplace-api/internal/infrastructure/db/mongo"
	redisstore "github.com/boltapp/marketplace-api/internal/infrastructure/db/redis"
	"github.com/boltapp/marketplace-api/internal/infrastructure/queue"
	"github.com/boltapp/marketplace-api/internal/token"
	"github.com/boltapp/marketplace-api/pkg/logger"
)

// @title Marketplace API
// @version 1.0
// @description Two-sided services marketplace with JWT authentication, listings, service requests, proposals, and bookings.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	codec, err := token.New(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, token.TTLConfig{
		Access:        cfg.Auth.AccessTokenTTL,
		Refresh:       cfg.Auth.RefreshTokenTTL,
		VerifyEmail:   cfg.Auth.VerifyEmailTTL,
		ResetPassword: cfg.Auth.ResetTokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token codec")
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()

	dispatcher := queue.NewDispatcher(
		cfg.Queue.Workers,
		queue.LogSender{Log: log},
		redisstore.NewDedupChecker(rdb),
		log,
	)
	dispatcher.Start(dispatcherCtx)

	e := api.NewRouter(cfg, db, rdb, codec, dispatcher, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
