// Package events publishes submission outcomes to Kafka so downstream
// market systems can react to insumo changes without polling the database.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/gridworks-mx/insumo-console/services/api/insumo"
)

// SubmissionEvent describes one accepted batch.
type SubmissionEvent struct {
	UnitID      string           `json:"unit_id"`
	Market      string           `json:"market"`
	Date        string           `json:"date"`
	Inserted    []int            `json:"inserted"`
	Updated     map[int][]string `json:"updated"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// Publisher produces submission events to a Kafka topic. A nil Publisher is
// valid and drops every event, so callers never need to branch on config.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSubmission serializes and publishes one submission event. Failures
// are logged, not returned: event delivery is best-effort and must never
// fail a submission that already committed.
func (p *Publisher) PublishSubmission(ctx context.Context, ev SubmissionEvent) {
	if p == nil {
		return
	}
	msg, err := serializeToMessage(ev)
	if err != nil {
		p.logger.Error("serialize submission event failed", "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish submission event failed", "error", err,
			"unit_id", ev.UnitID, "market", ev.Market, "date", ev.Date)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// FromResult builds the event payload for an accepted batch.
func FromResult(sub insumo.Submission, res insumo.UpsertResult, at time.Time) SubmissionEvent {
	return SubmissionEvent{
		UnitID:      sub.UnitID,
		Market:      sub.Market,
		Date:        sub.Date,
		Inserted:    res.Inserted,
		Updated:     res.Updated,
		SubmittedAt: at,
	}
}

func serializeToMessage(ev SubmissionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.UnitID + "|" + ev.Market + "|" + ev.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "market", Value: []byte(ev.Market)},
			{Key: "submitted_at", Value: []byte(ev.SubmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
