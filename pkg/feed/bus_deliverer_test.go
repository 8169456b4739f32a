package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/hub"
)

func collectEvents(t *testing.T, sub hub.Subscriber, n int) []event.Event {
	t.Helper()

	events := make([]event.Event, 0, n)
	for len(events) < n {
		select {
		case e := <-sub.Events():
			events = append(events, e)
		case <-time.After(time.Second):
			t.Fatalf("expected %d events, got %d", n, len(events))
		}
	}
	return events
}

func TestBusDelivererDeliver(t *testing.T) {
	t.Parallel()

	t.Run("publishes notification and fresh count", func(t *testing.T) {
		t.Parallel()

		bus := hub.NewMemoryBus(8)
		defer func() { _ = bus.Close() }()

		storage := feed.NewMemoryStorage()
		d := feed.NewBusDeliverer(bus, storage)

		n := feed.Notification{ID: "n1", SubscriberID: "user_1", Channel: feed.ChannelInApp, Content: "hi"}
		require.NoError(t, storage.Create(context.Background(), n))

		sub, err := bus.Subscribe(context.Background(), "user_1")
		require.NoError(t, err)
		defer func() { _ = sub.Close() }()

		require.NoError(t, d.Deliver(context.Background(), n))

		events := collectEvents(t, sub, 2)
		assert.Equal(t, event.NotificationReceived, events[0].Name)
		assert.Equal(t, event.UnseenCountChanged, events[1].Name)

		var count event.UnseenCount
		require.NoError(t, events[1].Decode(&count))
		assert.Equal(t, 1, count.UnseenCount)
	})

	t.Run("skips non in-app channels", func(t *testing.T) {
		t.Parallel()

		bus := hub.NewMemoryBus(8)
		defer func() { _ = bus.Close() }()

		d := feed.NewBusDeliverer(bus, feed.NewMemoryStorage())

		sub, err := bus.Subscribe(context.Background(), "user_1")
		require.NoError(t, err)
		defer func() { _ = sub.Close() }()

		err = d.Deliver(context.Background(), feed.Notification{
			ID:           "n1",
			SubscriberID: "user_1",
			Channel:      feed.ChannelEmail,
		})
		require.NoError(t, err)

		select {
		case e := <-sub.Events():
			t.Fatalf("unexpected event %q", e.Name)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestBusDelivererPublishUnseenCount(t *testing.T) {
	t.Parallel()

	bus := hub.NewMemoryBus(8)
	defer func() { _ = bus.Close() }()

	storage := feed.NewMemoryStorage()
	require.NoError(t, storage.Create(context.Background(), feed.Notification{ID: "n1", SubscriberID: "user_1"}))
	require.NoError(t, storage.Create(context.Background(), feed.Notification{ID: "n2", SubscriberID: "user_1"}))

	d := feed.NewBusDeliverer(bus, storage)

	sub, err := bus.Subscribe(context.Background(), "user_1")
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	require.NoError(t, d.PublishUnseenCount(context.Background(), "user_1"))

	events := collectEvents(t, sub, 1)
	require.Equal(t, event.UnseenCountChanged, events[0].Name)

	var count event.UnseenCount
	require.NoError(t, events[0].Decode(&count))
	assert.Equal(t, 2, count.UnseenCount)
}
