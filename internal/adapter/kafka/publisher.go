// Package kafka publishes high-risk verdicts to an alerts topic for
// downstream notification services.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/terrapulse/agrorisk/internal/domain"
)

// Publisher produces risk alert messages to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alerts topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one verdict. Callers treat failure as
// non-fatal; the evaluation itself has already succeeded.
func (p *Publisher) PublishAlert(ctx context.Context, verdict domain.RiskVerdict) error {
	msg, err := serializeToMessage(verdict)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a verdict into a Kafka message keyed by crop
// and grid cell so alerts for the same field partition together.
func serializeToMessage(verdict domain.RiskVerdict) (kafkago.Message, error) {
	data, err := json.Marshal(verdict)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verdict: %w", err)
	}
	key := fmt.Sprintf("%s|%.1f,%.1f", verdict.Crop, verdict.Location.Latitude, verdict.Location.Longitude)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(verdict.RiskLevel)},
			{Key: "crop", Value: []byte(verdict.Crop)},
			{Key: "generated_at", Value: []byte(verdict.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
