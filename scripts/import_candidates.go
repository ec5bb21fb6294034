package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/talentforge/candidate-os/adapters/event"
	"github.com/talentforge/candidate-os/internal/domain/candidate"
)

// Reads a source-system JSON export (an array of raw candidate records) and
// publishes it as one ingest request for the worker to process.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <candidates.json>", os.Args[0])
	}

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("cannot read input file: %v", err)
	}

	var records []candidate.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	payload := event.IngestRequestPayload{
		BatchID: uuid.NewString(),
		Records: records,
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("cannot encode ingest request: %v", err)
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    event.TopicIngestRequests,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	err = writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(payload.BatchID),
		Value: value,
	})
	if err != nil {
		log.Fatalf("cannot publish ingest request: %v", err)
	}

	fmt.Printf("published batch %s with %d records\n", payload.BatchID, len(records))
}
