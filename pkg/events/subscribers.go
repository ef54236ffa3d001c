package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisForwarder republishes events as JSON on a Redis pub/sub channel for external consumers.
type RedisForwarder struct {
	client  redisPublisher
	channel string
}

// NewRedisForwarder builds a forwarder for channel.
func NewRedisForwarder(client redisPublisher, channel string) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel}
}

// Handle publishes evt.
func (f *RedisForwarder) Handle(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Name, err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", f.channel, err)
	}
	return nil
}

// LogSubscriber records every event it receives.
func LogSubscriber(logger *zap.Logger) Subscriber {
	return SubscriberFunc(func(ctx context.Context, evt Event) error {
		logger.Info("event published",
			zap.String("event_id", evt.ID),
			zap.String("event", evt.Name),
			zap.Any("payload", evt.Payload),
		)
		return nil
	})
}
