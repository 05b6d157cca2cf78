package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cwbudde/algo-biosig/realtime"
)

// kafkaWriter is the part of kafka.Writer the sink uses.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes JSON-encoded results to a Kafka topic with
// bounded exponential retry. Broker hiccups cost retries, not results;
// only exhausting the retry budget surfaces an error, which the
// scheduler logs and moves past.
type KafkaSink struct {
	writer   kafkaWriter
	log      *slog.Logger
	attempts int
	backoff  time.Duration
}

// KafkaConfig configures a KafkaSink.
type KafkaConfig struct {
	// Brokers is the bootstrap broker list.
	Brokers []string

	// Topic receives the result messages.
	Topic string

	// Attempts bounds the publish tries per result (default 5).
	Attempts int

	// Backoff is the initial retry delay, doubled per attempt
	// (default 500ms).
	Backoff time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewKafkaSink creates a sink writing to the configured topic.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("sink: kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("sink: kafka topic required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	return newKafkaSink(writer, cfg), nil
}

func newKafkaSink(writer kafkaWriter, cfg KafkaConfig) *KafkaSink {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 5
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &KafkaSink{
		writer:   writer,
		log:      logger.With("component", "kafka_sink"),
		attempts: attempts,
		backoff:  backoff,
	}
}

// Publish implements realtime.ResultSink.
func (k *KafkaSink) Publish(ctx context.Context, r realtime.Result) error {
	payload, err := EncodeResult(r)
	if err != nil {
		return fmt.Errorf("sink: encode result: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(r.SessionID.String()),
		Value: payload,
		Time:  time.Now(),
	}

	backoff := k.backoff
	for attempt := 1; ; attempt++ {
		err = k.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt == k.attempts || ctx.Err() != nil {
			break
		}

		k.log.Warn("publish failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return fmt.Errorf("sink: publish after %d attempts: %w", k.attempts, err)
}

// Close flushes and closes the underlying writer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// EncodeResult renders the JSON message body published per tick.
func EncodeResult(r realtime.Result) ([]byte, error) {
	return json.Marshal(r)
}
