package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"milsabores/pkg/platform/sentinel"
)

// KafkaChannel relays changes through a Kafka topic. Each process consumes
// the whole topic without a consumer group, so every process sees every
// change. The client must be created with ConsumeTopics(topic).
type KafkaChannel struct {
	fanout
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaChannel(client *kgo.Client, topic string, logger *slog.Logger) *KafkaChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaChannel{client: client, topic: topic, logger: logger}
}

// ConsumerOpts returns the client options a KafkaChannel needs: consume the
// topic from the end so a restarted process does not replay old changes.
func ConsumerOpts(topic string) []kgo.Opt {
	return []kgo.Opt{
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	}
}

func (k *KafkaChannel) Publish(ctx context.Context, change Change) error {
	payload, err := encodeChange(change)
	if err != nil {
		return err
	}
	record := &kgo.Record{Topic: k.topic, Key: []byte(change.Key), Value: payload}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce change: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Run polls the topic until ctx is done or the client is closed.
func (k *KafkaChannel) Run(ctx context.Context) error {
	k.logger.InfoContext(ctx, "listening for storage changes", "transport", "kafka", "topic", k.topic)
	for {
		fetches := k.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			k.logger.WarnContext(ctx, "fetch failed", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			change, err := decodeChange(r.Value)
			if err != nil {
				k.logger.WarnContext(ctx, "dropping malformed change", "offset", r.Offset, "error", err)
				return
			}
			k.dispatch(change)
		})
	}
}
