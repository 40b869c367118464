package contacts

import (
	"strings"

	"freightbook/internal/models"
)

// FilterByText returns the contacts whose name, phone or email contains
// the query as a case-insensitive substring. An empty query returns the
// input slice unchanged. Directory order is preserved.
func FilterByText(directory []*models.Contact, query string) []*models.Contact {
	if query == "" {
		return directory
	}

	q := strings.ToLower(query)
	out := make([]*models.Contact, 0, len(directory))
	for _, contact := range directory {
		if strings.Contains(strings.ToLower(contact.Name), q) ||
			strings.Contains(strings.ToLower(contact.Phone), q) ||
			(contact.Email != "" && strings.Contains(strings.ToLower(contact.Email), q)) {
			out = append(out, contact)
		}
	}
	return out
}

// SelectContact returns the contact with the exact name+phone key, or nil
// when the directory holds no such contact.
func SelectContact(directory []*models.Contact, name, phone string) *models.Contact {
	key := models.ContactKey(name, phone)
	for _, contact := range directory {
		if contact.Key() == key {
			return contact
		}
	}
	return nil
}

// RecentBookings returns up to limit bookings from the front of the
// contact's history. The history is kept in input encounter order, not
// sorted by createdAt, so the front holds the earliest-encountered rows.
func RecentBookings(contact *models.Contact, limit int) []models.BookingRecord {
	if contact == nil || limit <= 0 {
		return nil
	}
	if limit > len(contact.Bookings) {
		limit = len(contact.Bookings)
	}
	return contact.Bookings[:limit]
}

// Stats reduces a directory to its summary numbers. An empty directory
// yields all-zero stats, never an error.
func Stats(directory []*models.Contact) models.DirectoryStats {
	stats := models.DirectoryStats{TotalContacts: len(directory)}
	for _, contact := range directory {
		stats.TotalRevenue += contact.TotalAmount
	}
	if stats.TotalContacts > 0 {
		stats.AverageRevenue = stats.TotalRevenue / float64(stats.TotalContacts)
	}
	return stats
}
