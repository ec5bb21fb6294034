package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/talentforge/candidate-os/internal/config"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
)

const (
	TopicIngestRequests = "candidate.ingest.requests"
	TopicIngestReports  = "candidate.ingest.reports"
)

// IngestRequestPayload is the wire form of a batch handed to the worker.
type IngestRequestPayload struct {
	BatchID string                `json:"batch_id"`
	Records []candidate.RawRecord `json:"records"`
}

type KafkaProducerClient struct {
	RequestsWriter *kafka.Writer
	ReportsWriter  *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	requestsWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicIngestRequests,
		Balancer: &kafka.LeastBytes{},
	}

	reportsWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicIngestReports,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		RequestsWriter: requestsWriter,
		ReportsWriter:  reportsWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishIngestRequest(ctx context.Context, payload IngestRequestPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot encode ingest request: %w", err)
	}
	return c.RequestsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.BatchID),
		Value: value,
	})
}

// PublishReport emits the batch report, the sole externally observable
// summary of a run.
func (c *KafkaProducerClient) PublishReport(ctx context.Context, report *ingest.BatchReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("cannot encode batch report: %w", err)
	}
	return c.ReportsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.BatchID),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.RequestsWriter != nil {
		c.RequestsWriter.Close()
	}
	if c.ReportsWriter != nil {
		c.ReportsWriter.Close()
	}
}
