package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "milsabores/pkg/domain"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := id.NewUserID()
	event := NewEvent(EventSessionStarted)
	event.UserID = userID

	require.NoError(t, pub.Emit(context.Background(), event))

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(EventSessionStarted), events[0].Action)
	assert.Equal(t, CategoryOperations, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := id.NewUserID()
	for range 10 {
		event := NewEvent(EventCheckoutCompleted)
		event.UserID = userID
		require.NoError(t, pub.Emit(context.Background(), event))
	}

	pub.Close()

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterCloseWritesThrough(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	require.NoError(t, pub.Emit(context.Background(), NewEvent(EventSessionEnded)))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPublisher_BufferFull_DoesNotPanic(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), NewEvent(EventAuthFailed))
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamps(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))

	require.NoError(t, pub.Emit(context.Background(), NewEvent(EventSessionStarted)))

	custom := fixed.Add(-time.Hour)
	preset := NewEvent(EventSessionEnded)
	preset.Timestamp = custom
	require.NoError(t, pub.Emit(context.Background(), preset))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, fixed, events[0].Timestamp, "missing timestamp is stamped")
	assert.Equal(t, custom, events[1].Timestamp, "existing timestamp is preserved")
}

func TestPublisher_FillsCategoryFromAction(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	require.NoError(t, pub.Emit(context.Background(), Event{Action: string(EventAuthFailed)}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategorySecurity, events[0].Category)
}

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCommerce, EventCheckoutCompleted.Category())
	assert.Equal(t, CategorySecurity, EventSessionRecovered.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}

func TestWorker_StopsWhenInboxCloses(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 2)
	inbox <- NewEvent(EventCartRecovered)
	inbox <- NewEvent(EventMigrationApplied)
	close(inbox)

	require.NoError(t, NewWorker(store, inbox, nil).Run(context.Background()))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWorker(NewInMemoryStore(), make(chan Event), nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type flakyStore struct {
	*InMemoryStore
	fail map[string]bool
}

func (s flakyStore) Append(ctx context.Context, event Event) error {
	if s.fail[event.Action] {
		return errors.New("disk full")
	}
	return s.InMemoryStore.Append(ctx, event)
}

func TestWorker_KeepsDrainingAfterAppendFailure(t *testing.T) {
	store := flakyStore{InMemoryStore: NewInMemoryStore(), fail: map[string]bool{string(EventCartRecovered): true}}
	inbox := make(chan Event, 3)
	inbox <- NewEvent(EventSessionStarted)
	inbox <- NewEvent(EventCartRecovered)
	inbox <- NewEvent(EventSessionEnded)
	close(inbox)

	w := NewWorker(store, inbox, nil)
	require.NoError(t, w.Run(context.Background()))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 1, w.Dropped())
}
