package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"milsabores/pkg/platform/sentinel"
)

// RedisChannel relays changes over Redis pub/sub so storefront processes
// sharing a Redis backend see each other's writes.
type RedisChannel struct {
	fanout
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisChannel(client *redis.Client, channel string, logger *slog.Logger) *RedisChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisChannel{client: client, channel: channel, logger: logger}
}

func (r *RedisChannel) Publish(ctx context.Context, change Change) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Run listens until ctx is done. Subscribers registered before or after Run
// starts receive every message that arrives while it runs.
func (r *RedisChannel) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w: %v", r.channel, sentinel.ErrUnavailable, err)
	}
	r.logger.InfoContext(ctx, "listening for storage changes", "transport", "redis", "channel", r.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			change, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				r.logger.WarnContext(ctx, "dropping malformed change", "error", err)
				continue
			}
			r.dispatch(change)
		}
	}
}
