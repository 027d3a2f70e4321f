// Package kafka publishes snapshot-update notifications for downstream
// consumers (alerting, dashboards). Publishing is opt-in via KAFKA_ENABLED.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/masakick/wbgt-checker/internal/config"
	"github.com/masakick/wbgt-checker/internal/domain"
)

// Publisher produces snapshot-update messages to a Kafka topic.
// It implements ingest.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// snapshotUpdate is the message payload. The full snapshot stays in the
// store; consumers re-fetch via the read API if they need the data.
type snapshotUpdate struct {
	Timestamp  string `json:"timestamp"`
	UpdateTime string `json:"updateTime"`
	DataCount  int    `json:"dataCount"`
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSnapshotUpdated announces a freshly stored snapshot.
func (p *Publisher) PublishSnapshotUpdated(ctx context.Context, snap *domain.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a snapshot's envelope into a Kafka message,
// keyed by timestamp so replays of the same cycle coalesce per partition.
func serializeToMessage(snap *domain.Snapshot) (kafkago.Message, error) {
	update := snapshotUpdate{
		Timestamp:  snap.Timestamp,
		UpdateTime: snap.UpdateTime,
		DataCount:  snap.DataCount,
	}
	data, err := json.Marshal(update)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.Timestamp),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "update_time", Value: []byte(snap.UpdateTime)},
		},
	}, nil
}
