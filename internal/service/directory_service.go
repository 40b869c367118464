package service

import (
	"context"
	"sync"
	"time"

	"freightbook/internal/contacts"
	"freightbook/internal/domain"
	"freightbook/internal/events"
	"freightbook/internal/logging"
	"freightbook/internal/metrics"
	"freightbook/internal/models"

	"github.com/rs/zerolog"
)

// DirectoryService owns the current directory snapshot. Refresh fetches
// the booking list, runs the aggregation and swaps the snapshot in one
// step, so readers always observe a pair of directories derived from a
// single consistent booking list.
type DirectoryService struct {
	source   domain.BookingSource
	cache    domain.SnapshotCache
	eventBus domain.EventPublisher
	logger   zerolog.Logger

	mu       sync.RWMutex
	snapshot *models.DirectorySnapshot
}

func NewDirectoryService(source domain.BookingSource, cache domain.SnapshotCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		source:   source,
		cache:    cache,
		eventBus: eventBus,
		logger:   logging.Component(logger, "directory-service"),
	}
}

// Refresh re-derives both directories from a fresh booking fetch. On
// failure the previous snapshot stays in place; if no snapshot is held
// yet, a cached one is restored so the read side has something to serve.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	start := time.Now()

	records, droppedRecords, err := s.source.FetchBookings(ctx)
	if err != nil {
		metrics.ObserveRefresh("failure", time.Since(start))
		s.publishEvent(events.EventRefreshFailed, events.RefreshEventPayload{Error: err.Error()})
		s.restoreFromCache(ctx)
		return err
	}

	senders, receivers := contacts.Aggregate(records)
	snapshot := &models.DirectorySnapshot{
		Senders:        senders,
		Receivers:      receivers,
		SenderStats:    contacts.Stats(senders),
		ReceiverStats:  contacts.Stats(receivers),
		BookingCount:   len(records),
		DroppedRecords: droppedRecords,
		FetchedAt:      time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	duration := time.Since(start)
	metrics.ObserveRefresh("success", duration)
	metrics.SetSnapshotSizes(snapshot.BookingCount, len(senders), len(receivers))

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snapshot); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache snapshot")
		}
	}

	s.publishEvent(events.EventDirectoryRefreshed, events.RefreshEventPayload{
		BookingCount:     snapshot.BookingCount,
		DroppedRecords:   droppedRecords,
		SenderContacts:   len(senders),
		ReceiverContacts: len(receivers),
		DurationMillis:   duration.Milliseconds(),
		FetchedAt:        snapshot.FetchedAt,
	})

	s.logger.Info().
		Int("bookings", snapshot.BookingCount).
		Int("dropped", droppedRecords).
		Int("senders", len(senders)).
		Int("receivers", len(receivers)).
		Dur("duration", duration).
		Msg("directory refreshed")

	return nil
}

// Snapshot returns the current snapshot, nil before the first successful
// refresh.
func (s *DirectoryService) Snapshot() *models.DirectorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// restoreFromCache fills an empty snapshot holder from the cache after a
// failed refresh. A held snapshot is never replaced by cached data.
func (s *DirectoryService) restoreFromCache(ctx context.Context) {
	if s.cache == nil || s.Snapshot() != nil {
		return
	}

	cached, err := s.cache.GetSnapshot(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read cached snapshot")
		return
	}
	if cached == nil {
		return
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.snapshot = cached
	}
	s.mu.Unlock()

	s.logger.Warn().
		Time("fetched_at", cached.FetchedAt).
		Msg("refresh failed, serving cached snapshot")
}

func (s *DirectoryService) publishEvent(eventType string, payload events.RefreshEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
