// Package source fetches booking lists from the external booking API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"freightbook/internal/config"
	"freightbook/internal/logging"
	"freightbook/internal/models"

	"github.com/rs/zerolog"
)

const apiKeyHeader = "x-api-key"

// HTTPBookingSource reads the full booking list from a single endpoint.
// The endpoint may return either a bare JSON array or an object wrapping
// it under "bookings".
type HTTPBookingSource struct {
	url    string
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

func NewHTTPBookingSource(cfg config.SourceConfig, logger *zerolog.Logger) *HTTPBookingSource {
	return &HTTPBookingSource{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logging.Component(logger, "booking-source"),
	}
}

// FetchBookings retrieves and validates the booking list. Rows that fail
// to decode or carry no createdAt are dropped with a warning; the count of
// dropped rows is returned alongside the surviving records. A transport or
// body-level decode error fails the whole fetch.
func (s *HTTPBookingSource) FetchBookings(ctx context.Context) ([]models.BookingRecord, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set(apiKeyHeader, s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch bookings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("booking api returned status %d: %s", resp.StatusCode, string(body))
	}

	rows, err := decodeRows(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("decode booking list: %w", err)
	}

	records := make([]models.BookingRecord, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		var record models.BookingRecord
		if err := json.Unmarshal(row, &record); err != nil {
			s.logger.Warn().Err(err).Int("row", i).Msg("dropping undecodable booking row")
			dropped++
			continue
		}
		if err := record.Validate(); err != nil {
			s.logger.Warn().Err(err).Int("row", i).Msg("dropping invalid booking row")
			dropped++
			continue
		}
		records = append(records, record)
	}

	return records, dropped, nil
}

func decodeRows(body io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var wrapped struct {
		Bookings []json.RawMessage `json:"bookings"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Bookings, nil
}
