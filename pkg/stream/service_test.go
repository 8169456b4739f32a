package stream_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/hub"
	"github.com/dmitrymomot/notifykit/pkg/identity"
	"github.com/dmitrymomot/notifykit/pkg/realtime"
	"github.com/dmitrymomot/notifykit/pkg/stream"
)

const testSecret = "s3cr3t"

type testEnv struct {
	server  *httptest.Server
	bus     *hub.MemoryBus
	storage *feed.MemoryStorage
	manager *feed.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bus := hub.NewMemoryBus(16)
	storage := feed.NewMemoryStorage()
	deliverer := feed.NewBusDeliverer(bus, storage)
	manager := feed.NewManager(storage, deliverer, feed.WithCountPublisher(deliverer))

	svc, err := stream.New(stream.Config{},
		identity.Verifier{Secret: testSecret, Required: true},
		bus, manager,
	)
	require.NoError(t, err)

	server := httptest.NewServer(svc.Router())
	t.Cleanup(func() {
		server.Close()
		_ = bus.Close()
	})

	return &testEnv{server: server, bus: bus, storage: storage, manager: manager}
}

// url builds an authenticated request URL for the subscriber.
func (e *testEnv) url(subscriberID, path string) string {
	return fmt.Sprintf("%s%s?%s=%s&%s=%s",
		e.server.URL, path,
		realtime.ParamSubscriberID, subscriberID,
		realtime.ParamSubscriberHash, identity.ComputeSubscriberHash(testSecret, subscriberID),
	)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServiceNew(t *testing.T) {
	t.Parallel()

	manager := feed.NewManager(feed.NewMemoryStorage(), nil)
	bus := hub.NewMemoryBus(1)
	defer func() { _ = bus.Close() }()

	t.Run("missing bus", func(t *testing.T) {
		t.Parallel()
		_, err := stream.New(stream.Config{}, identity.Verifier{}, nil, manager)
		require.ErrorIs(t, err, stream.ErrMissingBus)
	})

	t.Run("missing feed", func(t *testing.T) {
		t.Parallel()
		_, err := stream.New(stream.Config{}, identity.Verifier{}, bus, nil)
		require.ErrorIs(t, err, stream.ErrMissingFeed)
	})
}

func TestServiceAuthentication(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "no credentials", query: ""},
		{name: "missing hash", query: realtime.ParamSubscriberID + "=user_1"},
		{
			name: "wrong hash",
			query: realtime.ParamSubscriberID + "=user_1&" +
				realtime.ParamSubscriberHash + "=" + identity.ComputeSubscriberHash("wrong", "user_1"),
		},
		{
			name: "hash for another subscriber",
			query: realtime.ParamSubscriberID + "=user_1&" +
				realtime.ParamSubscriberHash + "=" + identity.ComputeSubscriberHash(testSecret, "user_2"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := http.Get(env.server.URL + "/notifications?" + tt.query)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			body := decodeBody(t, resp)
			errObj, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "unauthorized", errObj["code"])
		})
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(env.url("user_1", "/notifications"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestServiceFeedEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.manager.Send(ctx, feed.Notification{SubscriberID: "user_1", Content: "first"}))
	require.NoError(t, env.manager.Send(ctx, feed.Notification{SubscriberID: "user_1", Content: "second"}))
	require.NoError(t, env.manager.Send(ctx, feed.Notification{SubscriberID: "user_2", Content: "other"}))

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(env.url("user_1", "/notifications"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data, ok := body["data"].([]any)
		require.True(t, ok)
		assert.Len(t, data, 2)
	})

	t.Run("unseen count", func(t *testing.T) {
		resp, err := http.Get(env.url("user_1", "/notifications/unseen"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 2, data["unseenCount"])
	})

	t.Run("mark one seen", func(t *testing.T) {
		list, err := env.manager.List(ctx, "user_1", feed.ListOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, list)

		resp, err := http.Post(env.url("user_1", "/notifications/"+list[0].ID+"/seen"), "", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		count, err := env.manager.CountUnseen(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("mark all seen", func(t *testing.T) {
		resp, err := http.Post(env.url("user_1", "/notifications/seen"), "", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		count, err := env.manager.CountUnseen(ctx, "user_1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete", func(t *testing.T) {
		list, err := env.manager.List(ctx, "user_2", feed.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 1)

		req, err := http.NewRequest(http.MethodDelete, env.url("user_2", "/notifications/"+list[0].ID), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		list, err = env.manager.List(ctx, "user_2", feed.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestServiceWebSocket(t *testing.T) {
	t.Parallel()

	wsURL := func(env *testEnv) string {
		return "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	}

	t.Run("streams published events", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		dialer := realtime.WSDialer{
			URL: wsURL(env),
			Credentials: realtime.Credentials{
				SubscriberID:   "user_1",
				SubscriberHash: identity.ComputeSubscriberHash(testSecret, "user_1"),
			},
		}

		conn, err := dialer.Dial(context.Background())
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		// Sending through the manager publishes notification_received
		// followed by the fresh unseen count.
		require.NoError(t, env.manager.Send(context.Background(), feed.Notification{
			SubscriberID: "user_1",
			Content:      "hello",
		}))

		first, err := conn.ReadEvent()
		require.NoError(t, err)
		assert.Equal(t, event.NotificationReceived, first.Name)

		var received feed.Notification
		require.NoError(t, first.Decode(&received))
		assert.Equal(t, "hello", received.Content)

		second, err := conn.ReadEvent()
		require.NoError(t, err)
		require.Equal(t, event.UnseenCountChanged, second.Name)

		var count event.UnseenCount
		require.NoError(t, second.Decode(&count))
		assert.Equal(t, 1, count.UnseenCount)
	})

	t.Run("events are scoped to the subscriber", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		dialer := realtime.WSDialer{
			URL: wsURL(env),
			Credentials: realtime.Credentials{
				SubscriberID:   "user_1",
				SubscriberHash: identity.ComputeSubscriberHash(testSecret, "user_1"),
			},
		}
		conn, err := dialer.Dial(context.Background())
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		require.NoError(t, env.manager.Send(context.Background(), feed.Notification{
			SubscriberID: "user_2",
			Content:      "not yours",
		}))
		require.NoError(t, env.manager.Send(context.Background(), feed.Notification{
			SubscriberID: "user_1",
			Content:      "yours",
		}))

		e, err := conn.ReadEvent()
		require.NoError(t, err)
		require.Equal(t, event.NotificationReceived, e.Name)

		var received feed.Notification
		require.NoError(t, e.Decode(&received))
		assert.Equal(t, "yours", received.Content)
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		dialer := realtime.WSDialer{
			URL: wsURL(env),
			Credentials: realtime.Credentials{
				SubscriberID:   "user_1",
				SubscriberHash: "forged",
			},
		}

		_, err := dialer.Dial(context.Background())
		require.Error(t, err)
	})

	t.Run("closes socket on bus teardown", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)

		dialer := realtime.WSDialer{
			URL: wsURL(env),
			Credentials: realtime.Credentials{
				SubscriberID:   "user_1",
				SubscriberHash: identity.ComputeSubscriberHash(testSecret, "user_1"),
			},
		}
		conn, err := dialer.Dial(context.Background())
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		require.NoError(t, env.bus.Close())

		done := make(chan error, 1)
		go func() {
			_, err := conn.ReadEvent()
			done <- err
		}()

		select {
		case err := <-done:
			require.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("socket not closed after bus teardown")
		}
	})
}
