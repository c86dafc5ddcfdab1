package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/AuthShield/pkg/anomaly"
	"github.com/NeuralTrust/AuthShield/pkg/app/cluster"
	"github.com/NeuralTrust/AuthShield/pkg/app/freeze"
	"github.com/NeuralTrust/AuthShield/pkg/app/scoring"
	"github.com/NeuralTrust/AuthShield/pkg/cache"
	"github.com/NeuralTrust/AuthShield/pkg/common"
	"github.com/NeuralTrust/AuthShield/pkg/config"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	handlers "github.com/NeuralTrust/AuthShield/pkg/handlers/http"
	"github.com/NeuralTrust/AuthShield/pkg/infra/database"
	"github.com/NeuralTrust/AuthShield/pkg/infra/identity"
	"github.com/NeuralTrust/AuthShield/pkg/infra/ledger"
	infraLogger "github.com/NeuralTrust/AuthShield/pkg/infra/logger"
	"github.com/NeuralTrust/AuthShield/pkg/infra/repository"
	"github.com/NeuralTrust/AuthShield/pkg/server"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		if !config.IsFileNotFound(err) {
			logger.WithError(err).Fatal("failed to load config")
		}
		logger.WithError(err).Warn("config file not found, relying on defaults and environment")
	}
	cfg := config.GetConfig()

	// Persistence degrades to in-memory buffers when the database is down;
	// a failed connection is not fatal.
	var gormDB *gorm.DB
	db, err := database.NewDB(logger, cfg.Database)
	if err != nil {
		logger.WithError(err).Warn("database unavailable, events and audit log buffer in memory")
	} else {
		gormDB = db.DB
		defer db.Close()
	}

	var cacheInstance common.Cache
	c, err := cache.NewCache(common.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, thresholds kept in memory only")
	} else {
		cacheInstance = c
		defer c.Close()
	}

	// Core engine state.
	scorer := anomaly.NewScorer(cfg.Model.Path, logger)
	g := graph.New()

	// Repositories.
	eventRepo := repository.NewEventRepository(gormDB, logger)
	auditRepo := repository.NewAuditRepository(gormDB, logger)
	var thresholdRepo threshold.Repository
	if cacheInstance != nil {
		thresholdRepo = repository.NewThresholdRepository(cacheInstance)
	}
	thresholds := threshold.NewStore(threshold.Thresholds{
		ClusterSize: cfg.Thresholds.ClusterSize,
		Similarity:  cfg.Thresholds.Similarity,
		RiskScore:   cfg.Thresholds.RiskScore,
	}, thresholdRepo, logger)

	// External collaborators.
	identityClient := identity.NewClient(cfg.Identity, nil, logger)
	ledgerClient := ledger.NewClient(cfg.Ledger, nil, logger)

	// Services.
	freezer := freeze.NewManager(identityClient, auditRepo, ledgerClient, g, cacheInstance, logger)
	detector := cluster.NewDetector(g, thresholds, freezer, int(cfg.Sweep.MaxConcurrentFreezes), logger)
	scoringService := scoring.NewService(scorer, g, thresholds, eventRepo, freezer, logger)

	handlerTransport := handlers.HandlerTransport{
		HealthHandler: handlers.NewHealthHandler(logger, cacheInstance, scorer, g, ledgerClient),

		SimulateHandler:     handlers.NewSimulateHandler(logger, scoringService),
		RiskScoreHandler:    handlers.NewRiskScoreHandler(logger, scoringService),
		FingerprintHandler:  handlers.NewFingerprintHandler(logger),
		Auth0WebhookHandler: handlers.NewAuth0WebhookHandler(logger, scoringService),

		ListEventsHandler:   handlers.NewListEventsHandler(logger, eventRepo),
		UserEventsHandler:   handlers.NewUserEventsHandler(logger, eventRepo),
		FlaggedUsersHandler: handlers.NewFlaggedUsersHandler(logger, eventRepo),
		FreezeLogHandler:    handlers.NewFreezeLogHandler(logger, auditRepo),

		GetThresholdsHandler:    handlers.NewGetThresholdsHandler(logger, thresholds),
		UpdateThresholdsHandler: handlers.NewUpdateThresholdsHandler(logger, thresholds),

		ListClustersHandler: handlers.NewListClustersHandler(logger, g),
		GetClusterHandler:   handlers.NewGetClusterHandler(logger, g),

		FreezeUserHandler:    handlers.NewFreezeUserHandler(logger, freezer, g),
		UnfreezeUserHandler:  handlers.NewUnfreezeUserHandler(logger, freezer),
		CheckClustersHandler: handlers.NewCheckClustersHandler(logger, detector),

		IdentityUsersHandler: handlers.NewIdentityUsersHandler(logger, identityClient),
		LedgerStatusHandler:  handlers.NewLedgerStatusHandler(logger, ledgerClient),
	}

	apiServer := server.NewAPIServer(server.APIServerDI{
		HandlerTransport: handlerTransport,
		Config:           cfg,
		Logger:           logger,
	})

	go func() {
		if err := apiServer.Run(); err != nil {
			logger.WithError(err).Fatal("api server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := apiServer.Shutdown(); err != nil {
		logger.WithError(err).Error("failed to shut down api server")
	}
}
