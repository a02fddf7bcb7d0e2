package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sounding-service/internal/config"
	"github.com/couchcryptid/sounding-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces retrieval outcomes to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes outcomes in a single WriteMessages call.
// Messages are keyed by station so one station's results stay ordered.
func (w *Writer) LoadBatch(ctx context.Context, outcomes []domain.RetrievalOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(outcomes))
	for i := range outcomes {
		msg, err := serializeToMessage(outcomes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d outcomes: %w", len(msgs), err)
	}
	w.logger.Debug("outcomes written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RetrievalOutcome into a Kafka message.
func serializeToMessage(out domain.RetrievalOutcome) (kafkago.Message, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize outcome: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(out.Request.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(out.Status)},
			{Key: "processed_at", Value: []byte(out.ProcessedAt.Format(time.RFC3339))},
			{Key: "request_id", Value: []byte(out.RequestID)},
		},
	}, nil
}
