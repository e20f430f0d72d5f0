package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
)

// MessageHandler processes one message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

const (
	defaultHandleAttempts = 3
	defaultRetryDelay     = 200 * time.Millisecond
)

// Consumer reads analytics events in a consumer group. A message whose
// handler keeps failing is dropped after a few attempts and its offset is
// committed, so one bad event never stalls the group.
type Consumer struct {
	reader     *kafka.Reader
	handler    MessageHandler
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger

	processed atomic.Int64
	dropped   atomic.Int64
}

// NewConsumer joins cfg.ConsumerGroup on the analytics topic.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topics.AnalyticsEvents,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:     r,
		handler:    handler,
		attempts:   defaultHandleAttempts,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default().With("component", "kafka-consumer", "topic", cfg.Topics.AnalyticsEvents),
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping",
					"processed", c.processed.Load(),
					"dropped", c.dropped.Load(),
				)
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		if !c.process(ctx, msg) && ctx.Err() != nil {
			// shutting down mid-retry; leave the offset for the next member
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// process runs the handler with retries. It returns false when the message
// was dropped.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg.Key, msg.Value); err == nil {
			c.processed.Add(1)
			return true
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.retryDelay):
		}
	}
	c.dropped.Add(1)
	c.logger.Error("dropping message after repeated failures",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"attempts", c.attempts,
		"error", err,
	)
	return false
}

// Counts reports messages handled and dropped since start.
func (c *Consumer) Counts() (processed, dropped int64) {
	return c.processed.Load(), c.dropped.Load()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
