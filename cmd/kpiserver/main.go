package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kpitools/webapps/internal/core/ports"
	"github.com/kpitools/webapps/internal/core/service"
	"github.com/kpitools/webapps/internal/dashboard"
	"github.com/kpitools/webapps/internal/infrastructure/config"
	mongodb "github.com/kpitools/webapps/internal/infrastructure/db/mongo"
	redisdb "github.com/kpitools/webapps/internal/infrastructure/db/redis"
	"github.com/kpitools/webapps/internal/infrastructure/idms"
	"github.com/kpitools/webapps/pkg/logger"
)

const pageCacheTTL = 30 * time.Second

func main() {
	sqsQueueName := flag.String("sqs-queue-name", "", "SQS queue used by job submission tooling")
	logFileDir := flag.String("log-file-dir", "", "directory for the server log file")
	configFile := flag.String("config-file", "", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging and console output")
	disableAuth := flag.Bool("disable-auth", false, "bypass the auth gate entirely (development only)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDashboard(*configFile)
	if err != nil {
		logger.Init(logger.Options{})
		log := logger.Get()
		log.Fatal().Err(err).Msg("load configuration")
	}

	// Flags take precedence over file and environment values.
	if *sqsQueueName != "" {
		cfg.Queue.SQSQueueName = *sqsQueueName
	}
	if *logFileDir != "" {
		cfg.Log.FileDir = *logFileDir
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	if *disableAuth {
		cfg.Auth.Disabled = true
	}

	log := logger.Init(logger.Options{
		Level:    cfg.Log.Level,
		Pretty:   *debug,
		FileDir:  cfg.Log.FileDir,
		FileName: "kpi_server.log",
	})
	log.Info().
		Str("addr", cfg.Server.Addr).
		Bool("auth_disabled", cfg.Auth.Disabled).
		Msg("kpi server starting")

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

	tokenRepo := mongodb.NewTokenRepository(db)
	if err := tokenRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure token indexes")
	}

	gate := service.NewGateService(buildIdentityProvider(cfg), tokenRepo, service.GateConfig{
		Disabled: cfg.Auth.Disabled,
		AuthURL:  cfg.Auth.LoginURL,
	}, log)

	cache := redisdb.NewPageCache(rdb, pageCacheTTL, log)
	router := dashboard.NewRouter(gate, cache, cfg.Auth.LoginURL, log)
	e := dashboard.NewServer(router, db, rdb, log)

	go func() {
		if err := e.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
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

// buildIdentityProvider picks the HTTP IDMS client when endpoints are
// configured, falling back to the jwt-backed local provider for development.
func buildIdentityProvider(cfg *config.Dashboard) ports.IdentityProvider {
	if cfg.Auth.ExchangeURL != "" && cfg.Auth.VerifyURL != "" {
		return idms.NewHTTPProvider(idms.HTTPConfig{
			ExchangeURL: cfg.Auth.ExchangeURL,
			VerifyURL:   cfg.Auth.VerifyURL,
		})
	}
	return idms.NewLocalProvider(cfg.Auth.LocalSecret, "labeler", 0)
}
