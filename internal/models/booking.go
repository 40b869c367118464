package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCreatedAt marks a booking record without a creation timestamp.
// Recency tracking depends on createdAt, so such records are rejected at
// the ingestion boundary instead of flowing into the aggregation.
var ErrMissingCreatedAt = errors.New("booking record is missing createdAt")

// Amount is a monetary value with a tolerant JSON decoding: numbers,
// numeric strings, null and absent fields are all accepted. Anything
// unparseable decodes to zero rather than failing the record.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*a = 0
			return nil
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(val)
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// BookingRecord is one logistics shipment transaction as served by the
// booking API. Sender and receiver identity fields are optional; fields
// this service does not model are preserved in Extra so detail views can
// still render them.
type BookingRecord struct {
	SenderName        string    `json:"senderName,omitempty"`
	SenderPhone       string    `json:"senderPhone,omitempty"`
	SenderEmail       string    `json:"senderEmail,omitempty"`
	SenderGstNumber   string    `json:"senderGstNumber,omitempty"`
	ReceiverName      string    `json:"receiverName,omitempty"`
	ReceiverPhone     string    `json:"receiverPhone,omitempty"`
	ReceiverEmail     string    `json:"receiverEmail,omitempty"`
	ReceiverGstNumber string    `json:"receiverGstNumber,omitempty"`
	PickupCity        string    `json:"pickupCity,omitempty"`
	PickupAddress     string    `json:"pickupAddress,omitempty"`
	DeliveryCity      string    `json:"deliveryCity,omitempty"`
	DeliveryAddress   string    `json:"deliveryAddress,omitempty"`
	TotalAmount       Amount    `json:"totalAmount"`
	CreatedAt         time.Time `json:"createdAt"`

	// Extra holds fields outside the modeled set (trackingNumber, status, ...)
	// exactly as received.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownBookingFields = []string{
	"senderName", "senderPhone", "senderEmail", "senderGstNumber",
	"receiverName", "receiverPhone", "receiverEmail", "receiverGstNumber",
	"pickupCity", "pickupAddress", "deliveryCity", "deliveryAddress",
	"totalAmount", "createdAt",
}

func (b *BookingRecord) UnmarshalJSON(data []byte) error {
	type alias BookingRecord
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range knownBookingFields {
		delete(raw, field)
	}
	if len(raw) > 0 {
		known.Extra = raw
	}

	*b = BookingRecord(known)
	return nil
}

func (b BookingRecord) MarshalJSON() ([]byte, error) {
	type alias BookingRecord
	base, err := json.Marshal(alias(b))
	if err != nil {
		return nil, err
	}
	if len(b.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, val := range b.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = val
		}
	}
	return json.Marshal(merged)
}

// Validate checks the fields the aggregation cannot degrade gracefully on.
func (b *BookingRecord) Validate() error {
	if b.CreatedAt.IsZero() {
		return ErrMissingCreatedAt
	}
	return nil
}

// HasSender reports whether the record contributes to the sender directory.
func (b *BookingRecord) HasSender() bool {
	return b.SenderName != ""
}

// HasReceiver reports whether the record contributes to the receiver directory.
func (b *BookingRecord) HasReceiver() bool {
	return b.ReceiverName != ""
}
