package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kpitools/webapps/internal/core/service"
	"github.com/kpitools/webapps/internal/infrastructure/config"
	mongodb "github.com/kpitools/webapps/internal/infrastructure/db/mongo"
	redisdb "github.com/kpitools/webapps/internal/infrastructure/db/redis"
	"github.com/kpitools/webapps/internal/infrastructure/queue"
	"github.com/kpitools/webapps/internal/taskapp"
	"github.com/kpitools/webapps/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadTaskApp(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		fatalLog := logger.Get()
		fatalLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("addr", cfg.Addr).Msg("task manager starting")

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure task indexes")
	}

	auditWriter := queue.NewAuditWriter(0, auditRepo, log)
	auditWriter.Start(ctx)

	authService := service.NewAuthService(userRepo, log)
	taskService := service.NewTaskService(taskRepo, auditWriter, log)
	sessions := redisdb.NewSessionStore(rdb, cfg.SessionTTL)

	if err := authService.EnsureBootstrapUser(ctx, cfg.BootstrapUsername, cfg.BootstrapPassword); err != nil {
		log.Fatal().Err(err).Msg("ensure bootstrap user")
	}

	e := taskapp.NewRouter(authService, taskService, sessions, db, rdb, log)

	go func() {
		if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
}
