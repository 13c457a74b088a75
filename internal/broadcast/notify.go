package broadcast

import (
	"context"
	"log/slog"
	"time"

	"milsabores/internal/persist"
	id "milsabores/pkg/domain"
)

// NotifyingBackend wraps the shared backend for one tab: every successful
// write or delete is announced on the channel as a change from that tab.
// Announcement failures are logged; the write itself already succeeded.
type NotifyingBackend struct {
	persist.Backend
	channel Channel
	origin  id.TabID
	now     func() time.Time
	logger  *slog.Logger
}

func Notify(backend persist.Backend, channel Channel, origin id.TabID, logger *slog.Logger) *NotifyingBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyingBackend{Backend: backend, channel: channel, origin: origin, now: time.Now, logger: logger}
}

func (n *NotifyingBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := n.Backend.Set(ctx, key, value); err != nil {
		return err
	}
	n.announce(ctx, Change{Key: key, Origin: n.origin, At: n.now()})
	return nil
}

func (n *NotifyingBackend) Delete(ctx context.Context, key string) error {
	if err := n.Backend.Delete(ctx, key); err != nil {
		return err
	}
	n.announce(ctx, Change{Key: key, Origin: n.origin, Deleted: true, At: n.now()})
	return nil
}

func (n *NotifyingBackend) announce(ctx context.Context, change Change) {
	if err := n.channel.Publish(ctx, change); err != nil {
		n.logger.WarnContext(ctx, "failed to announce storage change",
			"key", change.Key,
			"tab_id", n.origin.String(),
			"error", err,
		)
	}
}

// Origin returns the tab this backend announces for.
func (n *NotifyingBackend) Origin() id.TabID {
	return n.origin
}
