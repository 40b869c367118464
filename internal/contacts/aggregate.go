// Package contacts derives sender and receiver contact directories from a
// flat booking list and answers queries over the derived directories.
package contacts

import (
	"sort"

	"freightbook/internal/models"
)

// directoryBuilder accumulates contacts for one role, remembering the
// order in which each grouping key first appeared.
type directoryBuilder struct {
	role  models.Role
	byKey map[string]*models.Contact
	order []*models.Contact
}

func newDirectoryBuilder(role models.Role) *directoryBuilder {
	return &directoryBuilder{
		role:  role,
		byKey: make(map[string]*models.Contact),
	}
}

func (d *directoryBuilder) add(booking models.BookingRecord, name, phone, email, gstNumber, city string) {
	key := models.ContactKey(name, phone)
	contact, ok := d.byKey[key]
	if !ok {
		contact = &models.Contact{
			Name:          name,
			Phone:         phone,
			Email:         email,
			GstNumber:     gstNumber,
			PrimaryCity:   city,
			Role:          d.role,
			BookingCount:  1,
			TotalAmount:   float64(booking.TotalAmount),
			LastBookingAt: booking.CreatedAt,
			Bookings:      []models.BookingRecord{booking},
		}
		d.byKey[key] = contact
		d.order = append(d.order, contact)
		return
	}

	// Later bookings never overwrite email, gstNumber or primaryCity.
	contact.BookingCount++
	contact.TotalAmount += float64(booking.TotalAmount)
	contact.Bookings = append(contact.Bookings, booking)
	if booking.CreatedAt.After(contact.LastBookingAt) {
		contact.LastBookingAt = booking.CreatedAt
	}
}

// finish returns the directory sorted by booking count descending. Ties
// keep the order in which each key first appeared in the input, so the
// sort must be stable.
func (d *directoryBuilder) finish() []*models.Contact {
	out := make([]*models.Contact, len(d.order))
	copy(out, d.order)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookingCount > out[j].BookingCount
	})
	return out
}

// Aggregate performs a single pass over the booking list and builds both
// contact directories. A booking with a sender name feeds the sender
// directory, one with a receiver name feeds the receiver directory, and a
// booking carrying both feeds each side independently. Records missing a
// name on one side are skipped on that side only.
//
// Aggregate is a pure function of its input: it never mutates the passed
// slice and produces the same output for the same input on every run.
func Aggregate(bookings []models.BookingRecord) (senders, receivers []*models.Contact) {
	senderDir := newDirectoryBuilder(models.RoleSender)
	receiverDir := newDirectoryBuilder(models.RoleReceiver)

	for _, booking := range bookings {
		if booking.HasSender() {
			city := booking.PickupCity
			if city == "" {
				city = booking.PickupAddress
			}
			senderDir.add(booking,
				booking.SenderName, booking.SenderPhone,
				booking.SenderEmail, booking.SenderGstNumber, city)
		}
		if booking.HasReceiver() {
			city := booking.DeliveryCity
			if city == "" {
				city = booking.DeliveryAddress
			}
			receiverDir.add(booking,
				booking.ReceiverName, booking.ReceiverPhone,
				booking.ReceiverEmail, booking.ReceiverGstNumber, city)
		}
	}

	return senderDir.finish(), receiverDir.finish()
}
