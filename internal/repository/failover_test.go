package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"freightbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct {
	err   error
	calls int
}

func (f *failingCache) GetSnapshot(ctx context.Context) (*models.DirectorySnapshot, error) {
	f.calls++
	return nil, f.err
}

func (f *failingCache) SetSnapshot(ctx context.Context, snapshot *models.DirectorySnapshot) error {
	f.calls++
	return f.err
}

func (f *failingCache) ClearSnapshot(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestFailoverSnapshotCache(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := NewMemorySnapshotCache(0)
		fallback := NewMemorySnapshotCache(0)
		failover := NewFailoverSnapshotCache(primary, fallback, &logger)

		require.NoError(t, failover.SetSnapshot(ctx, testSnapshot()))

		got, err := failover.GetSnapshot(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)

		// Writes keep the fallback warm too.
		warm, err := fallback.GetSnapshot(ctx)
		require.NoError(t, err)
		assert.NotNil(t, warm)
	})

	t.Run("PrimaryDownFallsBack", func(t *testing.T) {
		primary := &failingCache{err: errors.New("connection refused")}
		fallback := NewMemorySnapshotCache(0)
		failover := NewFailoverSnapshotCache(primary, fallback, &logger)

		require.NoError(t, failover.SetSnapshot(ctx, testSnapshot()))

		got, err := failover.GetSnapshot(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "A", got.Senders[0].Name)
	})

	t.Run("NoRepeatedProbesWhileDown", func(t *testing.T) {
		primary := &failingCache{err: errors.New("down")}
		fallback := NewMemorySnapshotCache(0)
		failover := NewFailoverSnapshotCache(primary, fallback, &logger)

		_, _ = failover.GetSnapshot(ctx) // trips the breaker
		callsAfterTrip := primary.calls

		for i := 0; i < 5; i++ {
			_, _ = failover.GetSnapshot(ctx)
		}
		assert.Equal(t, callsAfterTrip, primary.calls)
	})

	t.Run("ProbesPrimaryAfterRecoveryInterval", func(t *testing.T) {
		primary := &failingCache{err: errors.New("down")}
		fallback := NewMemorySnapshotCache(0)
		failover := NewFailoverSnapshotCache(primary, fallback, &logger)

		_, _ = failover.GetSnapshot(ctx)
		failover.lastCheck.Store(time.Now().Add(-2 * recoveryInterval).UnixNano())

		callsBefore := primary.calls
		_, _ = failover.GetSnapshot(ctx)
		assert.Equal(t, callsBefore+1, primary.calls)
	})
}
