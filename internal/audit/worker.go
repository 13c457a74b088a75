package audit

import (
	"context"
	"log/slog"
)

// Worker drains queued events into a Store. A failed append is logged and
// counted, then the worker moves on to the next event.
type Worker struct {
	store   Store
	inbox   <-chan Event
	logger  *slog.Logger
	dropped int
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run returns nil once the inbox is closed and drained, or ctx.Err() when ctx
// ends first.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.dropped++
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"tab_id", event.TabID.String(),
					"error", err,
				)
			}
		}
	}
}

// Dropped is the number of events the store refused. Read it after Run returns.
func (w *Worker) Dropped() int {
	return w.dropped
}
