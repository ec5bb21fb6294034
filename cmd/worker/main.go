package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/talentforge/candidate-os/adapters/event"
	"github.com/talentforge/candidate-os/adapters/llm"
	"github.com/talentforge/candidate-os/adapters/persistence"
	ingestUC "github.com/talentforge/candidate-os/internal/application/usecase/ingest"
	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
	"github.com/talentforge/candidate-os/pkg/retrier"
	"github.com/talentforge/candidate-os/pkg/tracing"
)

func main() {
	fmt.Println("Starting Candidate OS Ingest Worker...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "candidate-os-worker")
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

	profileRepo := persistence.NewPostgresProfileRepo(dbPool, cfg.Pipeline.UpsertWindow, appLogger)
	enricher := llm.NewOpenAIEnricher(openAIClient, cfg, appLogger)
	locations := persistence.NewCachedLocationStandardizer(
		llm.NewOpenAILocationStandardizer(openAIClient, cfg, appLogger),
		redisClient, cfg.Pipeline.LocationTTL, appLogger,
	)

	processor := ingestUC.NewProcessor(
		profileRepo, enricher, locations, kafkaClient,
		appLogger, cfg.Pipeline.Workers,
		retrier.Policy{MaxAttempts: cfg.Pipeline.MaxRetries, InitialInterval: cfg.Pipeline.RetryInterval},
	)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicIngestRequests,
		GroupID:  "candidate-ingest-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicIngestRequests))

	ctx := context.Background()
	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			appLogger.Error("failed to fetch message from Kafka", err)
			continue
		}

		var payload event.IngestRequestPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Error("failed to decode ingest request, skipping", err,
				zap.String("key", string(msg.Key)))
			commitMessage(ctx, consumer, msg, appLogger)
			continue
		}

		records := make([]candidate.RawRecord, len(payload.Records))
		copy(records, payload.Records)

		report, err := processor.Run(ctx, ingest.Batch{ID: payload.BatchID, Records: records})
		if err != nil {
			// Leave the offset uncommitted so the batch is redelivered;
			// checkpoints make the retry skip completed records.
			if errors.Is(err, apperror.ErrUnavailable) {
				appLogger.Error("batch aborted, store unavailable", err, zap.String("batch_id", payload.BatchID))
			} else {
				appLogger.Error("batch failed", err, zap.String("batch_id", payload.BatchID))
			}
			continue
		}

		appLogger.Info("batch done",
			zap.String("batch_id", report.BatchID),
			zap.Int("persisted", len(report.Persisted)),
			zap.Int("failed", len(report.Failed)))
		commitMessage(ctx, consumer, msg, appLogger)
	}
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("failed to commit message", err)
	}
}
