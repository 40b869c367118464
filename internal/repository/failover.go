package repository

import (
	"context"
	"sync/atomic"
	"time"

	"freightbook/internal/domain"
	"freightbook/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing a failed
// primary again.
const recoveryInterval = time.Minute

// FailoverSnapshotCache writes through the primary cache and falls back
// to the secondary when the primary errors. The primary is probed again
// after recoveryInterval.
type FailoverSnapshotCache struct {
	primary   domain.SnapshotCache
	fallback  domain.SnapshotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSnapshotCache(primary, fallback domain.SnapshotCache, logger *zerolog.Logger) *FailoverSnapshotCache {
	return &FailoverSnapshotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverSnapshotCache) GetSnapshot(ctx context.Context) (*models.DirectorySnapshot, error) {
	if !f.isDown.Load() {
		snapshot, err := f.primary.GetSnapshot(ctx)
		if err == nil {
			return snapshot, nil
		}
		f.markDown(err)
	}

	if f.shouldProbe() {
		snapshot, err := f.primary.GetSnapshot(ctx)
		if err == nil {
			f.isDown.Store(false)
			return snapshot, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.GetSnapshot(ctx)
}

func (f *FailoverSnapshotCache) SetSnapshot(ctx context.Context, snapshot *models.DirectorySnapshot) error {
	if !f.isDown.Load() {
		err := f.primary.SetSnapshot(ctx, snapshot)
		if err == nil {
			// Keep the fallback warm so a primary outage still has data.
			_ = f.fallback.SetSnapshot(ctx, snapshot)
			return nil
		}
		f.markDown(err)
	}

	return f.fallback.SetSnapshot(ctx, snapshot)
}

func (f *FailoverSnapshotCache) ClearSnapshot(ctx context.Context) error {
	_ = f.fallback.ClearSnapshot(ctx)
	if !f.isDown.Load() {
		if err := f.primary.ClearSnapshot(ctx); err != nil {
			f.markDown(err)
			return err
		}
	}
	return nil
}

func (f *FailoverSnapshotCache) markDown(err error) {
	if f.logger != nil {
		f.logger.Error().Err(err).Msg("primary snapshot cache failed, falling back to memory")
	}
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverSnapshotCache) shouldProbe() bool {
	if !f.isDown.Load() {
		return false
	}
	last := time.Unix(0, f.lastCheck.Load())
	return time.Since(last) > recoveryInterval
}
