package feed_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/feed"
)

// sweepSpy counts DeleteExpired calls on top of a real storage.
type sweepSpy struct {
	*feed.MemoryStorage
	sweeps atomic.Int64
}

func (s *sweepSpy) DeleteExpired(ctx context.Context) (int, error) {
	s.sweeps.Add(1)
	return s.MemoryStorage.DeleteExpired(ctx)
}

func TestSweeperSweep(t *testing.T) {
	t.Parallel()

	storage := feed.NewMemoryStorage()
	past := time.Now().Add(-time.Minute)
	seedNotifications(t, storage,
		feed.Notification{ID: "n1", SubscriberID: "user_1"},
		feed.Notification{ID: "n2", SubscriberID: "user_1", ExpiresAt: &past},
	)

	sweeper := feed.NewSweeper(storage)

	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := storage.CountUnseen(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSweeperStart(t *testing.T) {
	t.Parallel()

	t.Run("invalid schedule", func(t *testing.T) {
		t.Parallel()

		sweeper := feed.NewSweeper(feed.NewMemoryStorage(), feed.WithSweepSchedule("not a schedule"))
		err := sweeper.Start(context.Background())
		require.ErrorIs(t, err, feed.ErrInvalidSweepSchedule)
	})

	t.Run("runs on schedule", func(t *testing.T) {
		t.Parallel()

		storage := &sweepSpy{MemoryStorage: feed.NewMemoryStorage()}

		sweeper := feed.NewSweeper(storage, feed.WithSweepSchedule("@every 100ms"))
		require.NoError(t, sweeper.Start(context.Background()))
		defer sweeper.Stop()

		require.Eventually(t, func() bool {
			return storage.sweeps.Load() > 0
		}, 2*time.Second, 50*time.Millisecond)
	})

	t.Run("stop without start", func(t *testing.T) {
		t.Parallel()

		sweeper := feed.NewSweeper(feed.NewMemoryStorage())
		sweeper.Stop()
	})
}
