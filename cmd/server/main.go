package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentforge/candidate-os/adapters/event"
	httpAdapter "github.com/talentforge/candidate-os/adapters/http"
	"github.com/talentforge/candidate-os/adapters/llm"
	"github.com/talentforge/candidate-os/adapters/persistence"
	ingestUC "github.com/talentforge/candidate-os/internal/application/usecase/ingest"
	queryUC "github.com/talentforge/candidate-os/internal/application/usecase/query"
	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/internal/domain/query"
	"github.com/talentforge/candidate-os/pkg/logger"
	"github.com/talentforge/candidate-os/pkg/retrier"
	"github.com/talentforge/candidate-os/pkg/tracing"
)

func main() {
	fmt.Println("Starting Candidate OS API Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "candidate-os-server")
		if err != nil {
			appLogger.Fatal("cannot initialize tracing", err)
		}
		defer tracing.Shutdown(context.Background(), tp, appLogger)
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	openAIClient, err := llm.NewOpenAIClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init OpenAI client", err)
	}

	// Repositories
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, cfg.Pipeline.UpsertWindow, appLogger)
	queryExecutor := persistence.NewPostgresQueryExecutor(dbPool, appLogger)

	// External capabilities
	enricher := llm.NewOpenAIEnricher(openAIClient, cfg, appLogger)
	translator := llm.NewOpenAIQueryTranslator(openAIClient, cfg, appLogger)
	locations := persistence.NewCachedLocationStandardizer(
		llm.NewOpenAILocationStandardizer(openAIClient, cfg, appLogger),
		redisClient, cfg.Pipeline.LocationTTL, appLogger,
	)

	retryPolicy := retrier.Policy{
		MaxAttempts:     cfg.Pipeline.MaxRetries,
		InitialInterval: cfg.Pipeline.RetryInterval,
	}

	// Use Cases
	processor := ingestUC.NewProcessor(
		profileRepo, enricher, locations, kafkaClient,
		appLogger, cfg.Pipeline.Workers, retryPolicy,
	)
	queryUseCase := queryUC.NewQueryUseCase(
		translator, queryExecutor, query.CanonicalSchema(), appLogger, retryPolicy,
	)

	// HTTP Handlers
	ingestHandler := httpAdapter.NewIngestHandler(processor, appLogger)
	queryHandler := httpAdapter.NewQueryHandler(queryUseCase, appLogger)
	profileHandler := httpAdapter.NewProfileHandler(profileRepo, appLogger)

	router := gin.Default()
	router.Use(httpAdapter.ErrorHandler(appLogger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.POST("/ingest", ingestHandler.RunBatch)
		api.POST("/query", queryHandler.Query)
		api.GET("/candidates/:id", profileHandler.GetProfile)
	}

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	appLogger.Info("API server listening on :" + port)
	if err := router.Run(":" + port); err != nil {
		appLogger.Fatal("server stopped", err)
	}
}
