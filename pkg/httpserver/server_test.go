package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/httpserver"
)

// startServer runs srv in the background and waits for the listener.
func startServer(t *testing.T, handler http.Handler, opts ...httpserver.Option) (*httpserver.Server, context.CancelFunc, chan error) {
	t.Helper()

	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0"}, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil },
		time.Second, 5*time.Millisecond, "listener never opened")
	return srv, cancel, done
}

func waitRun(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server to stop")
		return nil
	}
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"data":{"unseenCount":3}}`))
	})

	srv, cancel, done := startServer(t, handler)

	resp, err := http.Get("http://" + srv.Addr().String() + "/notifications/unseen")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":{"unseenCount":3}}`, string(body))

	cancel()
	require.NoError(t, waitRun(t, done))

	// The listener is gone after shutdown.
	_, err = net.DialTimeout("tcp", srv.Addr().String(), 100*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_LifecycleHooks(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var order []string
	record := func(step string) func() {
		return func() {
			mu.Lock()
			order = append(order, step)
			mu.Unlock()
		}
	}

	_, cancel, done := startServer(t, http.NotFoundHandler(),
		httpserver.WithStartHook(record("start")),
		httpserver.WithStopHook(record("stop-1")),
		httpserver.WithStopHook(record("stop-2")),
	)

	// The start hook fires before Run starts serving.
	mu.Lock()
	assert.Equal(t, []string{"start"}, order)
	mu.Unlock()

	cancel()
	require.NoError(t, waitRun(t, done))

	mu.Lock()
	assert.Equal(t, []string{"start", "stop-1", "stop-2"}, order)
	mu.Unlock()
}

func TestServer_RunsAtMostOnce(t *testing.T) {
	t.Parallel()

	srv, cancel, done := startServer(t, http.NotFoundHandler())

	err := srv.Run(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

	cancel()
	require.NoError(t, waitRun(t, done))
}

func TestServer_ListenFailure(t *testing.T) {
	t.Parallel()

	// Occupy a port so the server's own listen fails.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := httpserver.New(httpserver.Config{Addr: ln.Addr().String()})
	assert.ErrorIs(t, srv.Run(context.Background(), http.NotFoundHandler()), httpserver.ErrStart)
}

func TestServer_MissingHandler(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0"})
	assert.ErrorIs(t, srv.Run(context.Background(), nil), httpserver.ErrMissingHandler)
}

func TestServer_Shutdown(t *testing.T) {
	t.Parallel()

	t.Run("before run is a no-op", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0"})
		assert.NoError(t, srv.Shutdown(context.Background()))
	})

	t.Run("unblocks a pending run", func(t *testing.T) {
		t.Parallel()

		srv, _, done := startServer(t, http.NotFoundHandler())

		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitRun(t, done))
		assert.NoError(t, srv.Shutdown(context.Background()), "shutdown must be idempotent")
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpserver.Healthz()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	t.Run("no probes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		httpserver.Readyz(nil)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("all probes pass", func(t *testing.T) {
		t.Parallel()

		busOK := func(ctx context.Context) error { return nil }
		storageOK := func(ctx context.Context) error { return nil }

		rec := httptest.NewRecorder()
		httpserver.Readyz(nil, busOK, storageOK)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("failing probe answers 503", func(t *testing.T) {
		t.Parallel()

		busDown := func(ctx context.Context) error {
			return errors.New("dial tcp 127.0.0.1:6379: connection refused")
		}
		var storageProbed bool
		storage := func(ctx context.Context) error {
			storageProbed = true
			return nil
		}

		rec := httptest.NewRecorder()
		httpserver.Readyz(nil, busDown, storage)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not ready", rec.Body.String())
		assert.False(t, storageProbed, "probes after the failure must be skipped")
	})

	t.Run("probe receives the request context", func(t *testing.T) {
		t.Parallel()

		type probeKey struct{}
		var got any
		probe := func(ctx context.Context) error {
			got = ctx.Value(probeKey{})
			return nil
		}

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		req = req.WithContext(context.WithValue(req.Context(), probeKey{}, "present"))

		httpserver.Readyz(nil, probe)(httptest.NewRecorder(), req)
		assert.Equal(t, "present", got)
	})
}
