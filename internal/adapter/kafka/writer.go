// Package kafka publishes generated export documents to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-outlook-service/internal/config"
	"github.com/couchcryptid/weather-outlook-service/internal/domain"
	"github.com/couchcryptid/weather-outlook-service/internal/export"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces export documents to a Kafka topic.
// It implements engine.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// publishBatchTimeout bounds how long a single export waits for batch-mates.
const publishBatchTimeout = 10 * time.Millisecond

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaExportTopic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           publishBatchTimeout,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes doc and writes it keyed by its export filename, so
// repeated exports of the same query land on the same partition.
func (w *Writer) Publish(ctx context.Context, doc domain.ExportDocument) error {
	msg, err := serializeToMessage(doc)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish export: %w", err)
	}
	w.logger.Debug("export published", "key", string(msg.Key), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ExportDocument into a Kafka message.
func serializeToMessage(doc domain.ExportDocument) (kafkago.Message, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize export document: %w", err)
	}

	resultType := ""
	if doc.Result != nil {
		resultType = doc.Result.ResultType()
	}
	return kafkago.Message{
		Key:   []byte(export.Filename(doc, "json")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "result_type", Value: []byte(resultType)},
			{Key: "is_future", Value: []byte(strconv.FormatBool(doc.Request.IsFuture))},
			{Key: "generated_at", Value: []byte(doc.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
