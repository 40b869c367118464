package models

import "time"

// Role distinguishes the two contact directories derived from bookings.
type Role string

const (
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

// Valid reports whether the role names one of the two directories.
func (r Role) Valid() bool {
	return r == RoleSender || r == RoleReceiver
}

// Contact is a derived identity aggregated from every booking sharing the
// same name+phone key. Email, GST number and primary city keep the values
// of the first booking seen for the key; counts, sums and recency keep
// accumulating.
type Contact struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email,omitempty"`
	GstNumber     string          `json:"gstNumber,omitempty"`
	PrimaryCity   string          `json:"primaryCity,omitempty"`
	Role          Role            `json:"role"`
	BookingCount  int             `json:"bookingCount"`
	TotalAmount   float64         `json:"totalAmount"`
	LastBookingAt time.Time       `json:"lastBookingAt"`
	Bookings      []BookingRecord `json:"bookings"`
}

// ContactKey builds the grouping key for a name and phone pair. The match
// is exact: no trimming, casing or phone normalization.
func ContactKey(name, phone string) string {
	return name + "|" + phone
}

// Key returns the contact's grouping key.
func (c *Contact) Key() string {
	return ContactKey(c.Name, c.Phone)
}

// DirectoryStats summarizes one directory for overview cards.
type DirectoryStats struct {
	TotalContacts  int     `json:"totalContacts"`
	TotalRevenue   float64 `json:"totalRevenue"`
	AverageRevenue float64 `json:"averageRevenue"`
}

// DirectorySnapshot is the result of one aggregation run over a single
// consistent booking list. Snapshots are immutable once published.
type DirectorySnapshot struct {
	Senders        []*Contact     `json:"senders"`
	Receivers      []*Contact     `json:"receivers"`
	SenderStats    DirectoryStats `json:"senderStats"`
	ReceiverStats  DirectoryStats `json:"receiverStats"`
	BookingCount   int            `json:"bookingCount"`
	DroppedRecords int            `json:"droppedRecords"`
	FetchedAt      time.Time      `json:"fetchedAt"`
}

// Directory returns the contact list for a role, nil for an unknown role.
func (s *DirectorySnapshot) Directory(role Role) []*Contact {
	switch role {
	case RoleSender:
		return s.Senders
	case RoleReceiver:
		return s.Receivers
	default:
		return nil
	}
}

// Stats returns the precomputed stats for a role.
func (s *DirectorySnapshot) Stats(role Role) DirectoryStats {
	if role == RoleReceiver {
		return s.ReceiverStats
	}
	return s.SenderStats
}
