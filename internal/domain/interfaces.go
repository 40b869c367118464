// Package domain holds the interfaces the service layer is wired through.
package domain

import (
	"context"

	"freightbook/internal/models"
)

// BookingSource retrieves one consistent snapshot of the booking list.
// Implementations return the validated records plus the number of records
// dropped during validation.
type BookingSource interface {
	FetchBookings(ctx context.Context) (records []models.BookingRecord, dropped int, err error)
}

// SnapshotCache stores derived directory snapshots between refreshes.
// A miss is (nil, nil), not an error.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context) (*models.DirectorySnapshot, error)
	SetSnapshot(ctx context.Context, snapshot *models.DirectorySnapshot) error
	ClearSnapshot(ctx context.Context) error
}

// EventPublisher publishes domain events with a JSON payload.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// DirectoryProvider exposes the current snapshot to read-side consumers.
type DirectoryProvider interface {
	Snapshot() *models.DirectorySnapshot
}

// Refresher re-derives the directories from a fresh booking fetch.
type Refresher interface {
	Refresh(ctx context.Context) error
}
