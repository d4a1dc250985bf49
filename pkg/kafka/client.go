// Package kafka publishes and consumes chat record events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"mindcare-go/internal/config"
	"mindcare-go/pkg/events"
	"mindcare-go/pkg/log"
)

// maxAttempts is how many times an event is handled before its offset is committed anyway.
const maxAttempts = 3

// retryBackoff is the wait after the first failed attempt; later waits grow linearly.
var retryBackoff = 500 * time.Millisecond

// RecordEventHandler processes one consumed event.
type RecordEventHandler interface {
	Handle(ctx context.Context, event events.RecordEvent) error
}

// Publisher writes record events to a Kafka topic keyed by user id, so one
// user's events stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for cfg.Topic.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(splitBrokers(cfg.Brokers)...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	log.Infof("Kafka publisher ready for topic '%s'", cfg.Topic)
	return &Publisher{writer: writer}
}

// Publish sends event to Kafka.
func (p *Publisher) Publish(ctx context.Context, event events.RecordEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal record event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
	})
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// messageReader is the part of *kafka.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StartConsumer reads record events until ctx is cancelled and passes each to
// handler. A failing event is retried up to maxAttempts times with a growing
// backoff; its offset is committed after success or after the last attempt,
// since a group reader moves past an uncommitted message anyway.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, handler RecordEventHandler) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  splitBrokers(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	log.Infof("Kafka consumer listening on topic '%s'", cfg.Topic)
	consume(ctx, r, handler)
}

func consume(ctx context.Context, r messageReader, handler RecordEventHandler) {
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("failed to close Kafka consumer: %v", err)
		}
	}()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("Kafka consumer stopped")
				return
			}
			log.Error("failed to read from Kafka", err)
			return
		}
		if !process(ctx, r, handler, m) {
			log.Info("Kafka consumer stopped while retrying")
			return
		}
	}
}

// process handles one message and commits it. It returns false when ctx was
// cancelled before the message was settled; the offset then stays uncommitted
// and the message is redelivered to the next consumer of the partition.
func process(ctx context.Context, r messageReader, handler RecordEventHandler, m kafka.Message) bool {
	var event events.RecordEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Errorf("cannot decode Kafka message: %v, value: %s", err, string(m.Value))
		// malformed payloads are committed so they do not block the partition
		commit(ctx, r, m)
		return true
	}

	if err := handleWithRetry(ctx, handler, event); err != nil {
		if ctx.Err() != nil {
			return false
		}
		log.Errorf("record event %s failed %d times, committing offset: %v", event.EventID, maxAttempts, err)
	}
	commit(ctx, r, m)
	return true
}

func handleWithRetry(ctx context.Context, handler RecordEventHandler, event events.RecordEvent) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = handler.Handle(ctx, event); err == nil {
			return nil
		}
		log.Errorw("failed to handle record event", "event_id", event.EventID, "record_id", event.RecordID, "attempt", attempt, "error", err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func commit(ctx context.Context, r messageReader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("failed to commit Kafka offset %d: %v", m.Offset, err)
	}
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
