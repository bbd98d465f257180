// Package broker forwards domain events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Publisher sends one JSON message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
	Close() error
}

// Kafka publishes through a synchronous sarama producer so every Publish
// returns only after the brokers acknowledged the write.
type Kafka struct {
	producer sarama.SyncProducer
	now      func() time.Time
}

// Config tunes the Kafka connection.
type Config struct {
	Brokers  []string
	ClientID string
	// Attempts is how many times to dial before giving up (default 5).
	Attempts int
	// Backoff is the pause between dial attempts (default 2s).
	Backoff time.Duration
}

// NewKafka dials the brokers, retrying while they come up.
func NewKafka(ctx context.Context, cfg Config) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("broker: no kafka brokers configured")
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}

	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3

	var err error
	for i := 1; i <= cfg.Attempts; i++ {
		var p sarama.SyncProducer
		p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
		if err == nil {
			return NewKafkaWithProducer(p), nil
		}

		logger.Warn("waiting for kafka", "attempt", i, "of", cfg.Attempts, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.Backoff):
		}
	}
	return nil, fmt.Errorf("broker: kafka producer: %w", err)
}

// NewKafkaWithProducer wraps an existing producer (a sarama mock in tests).
func NewKafkaWithProducer(p sarama.SyncProducer) *Kafka {
	return &Kafka{producer: p, now: time.Now}
}

func (k *Kafka) Publish(ctx context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Value:     sarama.ByteEncoder(data),
		Timestamp: k.now(),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("broker: send %s: %w", topic, err)
	}

	logger.WithCtx(ctx).Debug("event published", "topic", topic, "partition", partition, "offset", offset)
	return nil
}

func (k *Kafka) Close() error { return k.producer.Close() }

// Nop discards every message. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error { return nil }
