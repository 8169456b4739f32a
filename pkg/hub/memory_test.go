package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/hub"
)

func receiveOne(t *testing.T, sub hub.Subscriber) event.Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		require.True(t, ok, "events channel closed unexpectedly")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return event.Event{}
	}
}

func assertNoEvent(t *testing.T, sub hub.Subscriber) {
	t.Helper()
	select {
	case e, ok := <-sub.Events():
		if ok {
			t.Fatalf("unexpected event %q", e.Name)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })

	ctx := context.Background()

	alice, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)
	bob, err := bus.Subscribe(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "alice", event.NewUnseenCountChanged(1)))

	got := receiveOne(t, alice)
	assert.Equal(t, event.UnseenCountChanged, got.Name)

	var payload event.UnseenCount
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, 1, payload.UnseenCount)

	// Bob's feed is untouched.
	assertNoEvent(t, bob)
}

func TestMemoryBus_MultipleSessionsPerSubscriber(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })

	ctx := context.Background()

	tab1, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)
	tab2, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "alice", event.NewUnseenCountChanged(2)))

	// Sessions are independent: each receives its own copy.
	assert.Equal(t, event.UnseenCountChanged, receiveOne(t, tab1).Name)
	assert.Equal(t, event.UnseenCountChanged, receiveOne(t, tab2).Name)
}

func TestMemoryBus_SlowSessionDropsEvents(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(2)
	t.Cleanup(func() { _ = bus.Close() })

	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)

	// Fill the buffer and overflow it; overflow must not block.
	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(ctx, "alice", event.NewUnseenCountChanged(i)))
	}

	received := 0
	for {
		select {
		case <-sub.Events():
			received++
		case <-time.After(50 * time.Millisecond):
			assert.Equal(t, 2, received, "only buffered events should be delivered")
			return
		}
	}
}

func TestMemoryBus_SubscriberClose(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })

	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "close must be idempotent")

	// Publishing after session close succeeds but delivers nothing.
	require.NoError(t, bus.Publish(ctx, "alice", event.NewUnseenCountChanged(1)))

	_, ok := <-sub.Events()
	assert.False(t, ok, "events channel must be closed")
}

func TestMemoryBus_ContextCancellation(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)

	cancel()

	// Cleanup is asynchronous; the events channel closes once it runs.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryBus_Close(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)

	ctx := context.Background()
	sub, err := bus.Subscribe(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "close must be idempotent")

	_, ok := <-sub.Events()
	assert.False(t, ok, "subscriber channels must be closed with the bus")

	assert.ErrorIs(t, bus.Publish(ctx, "alice", event.NewUnseenCountChanged(1)), hub.ErrBusClosed)

	_, err = bus.Subscribe(ctx, "alice")
	assert.ErrorIs(t, err, hub.ErrBusClosed)
}

func TestMemoryBus_MissingSubscriberID(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })

	ctx := context.Background()

	_, err := bus.Subscribe(ctx, "")
	assert.ErrorIs(t, err, hub.ErrMissingSubscriberID)
	assert.ErrorIs(t, bus.Publish(ctx, "", event.NewUnseenCountChanged(1)), hub.ErrMissingSubscriberID)
}
