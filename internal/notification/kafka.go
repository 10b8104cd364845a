package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	MaxAttempts  int
	WriteTimeout time.Duration
}

// Validate checks the minimum settings needed to publish.
func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	if c.Topic == "" {
		return errors.New("kafka: topic is required")
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events as JSON keyed by event id.
type KafkaSink struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
	closed       atomic.Bool
}

// NewKafkaSink builds a synchronous writer; Notify returns once the brokers ack.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  cfg.MaxAttempts,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true, KeepAlive: 30 * time.Second}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Str("component", "kafka").Msgf(msg, args...)
		}),
		Compression: kafka.Snappy,
	}

	return newKafkaSink(writer, cfg.Topic, cfg.WriteTimeout), nil
}

func newKafkaSink(w messageWriter, topic string, writeTimeout time.Duration) *KafkaSink {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &KafkaSink{writer: w, topic: topic, writeTimeout: writeTimeout}
}

// Notify publishes e. The event type travels as a header so consumers can filter without decoding.
func (s *KafkaSink) Notify(ctx context.Context, e Event) error {
	if s.closed.Load() {
		return ErrSinkClosed
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:     []byte(e.ID),
		Value:   payload,
		Time:    e.OccurredAt,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(e.Type)}},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %s to %s: %w", e.Type, s.topic, err)
	}
	return nil
}

// Close flushes and closes the writer. It is safe to call more than once.
func (s *KafkaSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.writer.Close()
}
