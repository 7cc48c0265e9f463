package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDispatchesTypedAndPatternHandlers(t *testing.T) {
	bus := NewEventBus(&EventBusConfig{WorkerCount: 0}, zap.NewNop())

	var liked, any int32
	require.NoError(t, bus.Subscribe(TypeEntityLiked, NewTypedEventHandler("liked",
		func(ctx context.Context, e *EntityLikedEvent) error {
			assert.Equal(t, "owner", e.OwnerID)
			atomic.AddInt32(&liked, 1)
			return nil
		})))
	require.NoError(t, bus.SubscribePattern("engagement.*", NewEventHandlerFunc("all",
		func(ctx context.Context, e Event) error {
			atomic.AddInt32(&any, 1)
			return nil
		})))

	require.NoError(t, bus.Publish(context.Background(), NewEntityLikedEvent("u1", "post", "p1", "owner")))
	require.NoError(t, bus.PublishAsync(context.Background(), NewCommentAddedEvent("u1", "post", "p1", "owner", "c1", "hi")))

	assert.Equal(t, int32(1), atomic.LoadInt32(&liked))
	assert.Equal(t, int32(2), atomic.LoadInt32(&any))

	stats := bus.Stats()
	assert.Equal(t, int64(2), stats.EventsPublished)
	assert.Equal(t, int64(2), stats.EventsProcessed)
	assert.Equal(t, 2, stats.HandlersCount)
}

func TestHandlerFailureAndPanicAreCounted(t *testing.T) {
	bus := NewEventBus(&EventBusConfig{WorkerCount: 0}, zap.NewNop())

	require.NoError(t, bus.Subscribe(TypeUserFollowed, NewEventHandlerFunc("boom",
		func(ctx context.Context, e Event) error { panic("boom") })))
	require.NoError(t, bus.Subscribe(TypeUserFollowed, NewEventHandlerFunc("err",
		func(ctx context.Context, e Event) error { return errors.New("nope") })))

	err := bus.Publish(context.Background(), NewUserFollowedEvent("a", "b"))
	assert.Error(t, err)
	assert.Equal(t, int64(1), bus.Stats().EventsFailed)
}

func TestAsyncWorkersSurviveCancelledRequestContext(t *testing.T) {
	bus := NewEventBus(&EventBusConfig{BufferSize: 10, WorkerCount: 2}, zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	var handled int32
	require.NoError(t, bus.Subscribe(TypeUserFollowed, NewEventHandlerFunc("follow",
		func(ctx context.Context, e Event) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			atomic.AddInt32(&handled, 1)
			return nil
		})))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.PublishAsync(ctx, NewUserFollowedEvent("a", "b")))
	cancel()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&handled) == 1 }, time.Second, 10*time.Millisecond)

	stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	require.NoError(t, bus.Stop(stopCtx))
	assert.Error(t, bus.Health())
}

func TestCommentPreviewTruncates(t *testing.T) {
	long := "0123456789012345678901234567890123456789012345678901234567890"
	e := NewCommentAddedEvent("u", "post", "p", "o", "c", long)
	assert.Equal(t, long[:50]+"...", e.Preview)
}
