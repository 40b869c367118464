package contacts

import (
	"testing"
	"time"

	"freightbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() []*models.Contact {
	return []*models.Contact{
		{Name: "Acme Logistics", Phone: "9876543210", Email: "ops@acme.example", BookingCount: 5},
		{Name: "Bharat Freight", Phone: "9123456780", BookingCount: 3},
		{Name: "acme retail", Phone: "8000000000", Email: "retail@shop.example", BookingCount: 1},
	}
}

func TestFilterByTextEmptyQueryIsIdentity(t *testing.T) {
	dir := testDirectory()
	got := FilterByText(dir, "")
	require.Len(t, got, len(dir))
	for i := range dir {
		assert.Same(t, dir[i], got[i])
	}
}

func TestFilterByTextMatchesCaseInsensitive(t *testing.T) {
	dir := testDirectory()

	t.Run("name", func(t *testing.T) {
		got := FilterByText(dir, "ACME")
		require.Len(t, got, 2)
		assert.Equal(t, "Acme Logistics", got[0].Name)
		assert.Equal(t, "acme retail", got[1].Name)
	})

	t.Run("phone", func(t *testing.T) {
		got := FilterByText(dir, "912345")
		require.Len(t, got, 1)
		assert.Equal(t, "Bharat Freight", got[0].Name)
	})

	t.Run("email", func(t *testing.T) {
		got := FilterByText(dir, "retail@")
		require.Len(t, got, 1)
		assert.Equal(t, "acme retail", got[0].Name)
	})

	t.Run("no match", func(t *testing.T) {
		got := FilterByText(dir, "zzz")
		assert.Empty(t, got)
	})
}

func TestFilterByTextPreservesOrder(t *testing.T) {
	dir := testDirectory()
	got := FilterByText(dir, "e")
	require.Len(t, got, 3)
	assert.Equal(t, dir[0], got[0])
	assert.Equal(t, dir[1], got[1])
	assert.Equal(t, dir[2], got[2])
}

func TestSelectContact(t *testing.T) {
	dir := testDirectory()

	got := SelectContact(dir, "Bharat Freight", "9123456780")
	require.NotNil(t, got)
	assert.Equal(t, "Bharat Freight", got.Name)

	// Exact match only: same name with different phone misses.
	assert.Nil(t, SelectContact(dir, "Bharat Freight", "0000000000"))
	assert.Nil(t, SelectContact(dir, "Unknown", ""))
	assert.Nil(t, SelectContact(nil, "Acme Logistics", "9876543210"))
}

func TestRecentBookingsTakesFrontOfHistory(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	contact := &models.Contact{Name: "A", Phone: "1"}
	for i := 0; i < 8; i++ {
		contact.Bookings = append(contact.Bookings, models.BookingRecord{
			SenderName: "A",
			CreatedAt:  start.Add(time.Duration(i) * time.Hour),
		})
	}

	got := RecentBookings(contact, 5)
	require.Len(t, got, 5)
	// Front of the encounter-ordered history, not newest-first.
	assert.True(t, got[0].CreatedAt.Equal(start))
	assert.True(t, got[4].CreatedAt.Equal(start.Add(4*time.Hour)))
}

func TestRecentBookingsLimits(t *testing.T) {
	contact := &models.Contact{
		Bookings: []models.BookingRecord{{SenderName: "A"}, {SenderName: "A"}},
	}

	assert.Len(t, RecentBookings(contact, 10), 2)
	assert.Nil(t, RecentBookings(contact, 0))
	assert.Nil(t, RecentBookings(contact, -1))
	assert.Nil(t, RecentBookings(nil, 5))
}

func TestStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := Stats(nil)
		assert.Equal(t, 0, stats.TotalContacts)
		assert.Equal(t, 0.0, stats.TotalRevenue)
		assert.Equal(t, 0.0, stats.AverageRevenue)
	})

	t.Run("aggregated", func(t *testing.T) {
		dir := []*models.Contact{
			{TotalAmount: 100},
			{TotalAmount: 50},
		}
		stats := Stats(dir)
		assert.Equal(t, 2, stats.TotalContacts)
		assert.Equal(t, 150.0, stats.TotalRevenue)
		assert.Equal(t, 75.0, stats.AverageRevenue)
	})
}
