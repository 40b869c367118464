package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"freightbook/internal/config"
	"freightbook/internal/contacts"
	"freightbook/internal/domain"
	"freightbook/internal/export"
	"freightbook/internal/logging"
	"freightbook/internal/models"

	"github.com/rs/zerolog"
)

const defaultRecentLimit = 5

// HTTPServer serves the contact directories over a JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	provider domain.DirectoryProvider
	server   *http.Server
	auth     *HTTPAuth
	logger   zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, provider domain.DirectoryProvider, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		provider: provider,
		logger:   logging.Component(logger, "http"),
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/contacts/senders", srv.handleDirectory(models.RoleSender))
	mux.HandleFunc("/api/v1/contacts/receivers", srv.handleDirectory(models.RoleReceiver))
	mux.HandleFunc("/api/v1/contacts/senders/detail", srv.handleDetail(models.RoleSender))
	mux.HandleFunc("/api/v1/contacts/receivers/detail", srv.handleDetail(models.RoleReceiver))
	mux.HandleFunc("/api/v1/contacts/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := requestIDMiddleware(srv.loggingMiddleware(srv.auth.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// contactSummary is a listing view of a contact without the booking
// history, which only the detail endpoint carries.
type contactSummary struct {
	Name          string      `json:"name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email,omitempty"`
	GstNumber     string      `json:"gstNumber,omitempty"`
	PrimaryCity   string      `json:"primaryCity,omitempty"`
	Role          models.Role `json:"role"`
	BookingCount  int         `json:"bookingCount"`
	TotalAmount   float64     `json:"totalAmount"`
	LastBookingAt time.Time   `json:"lastBookingAt"`
}

func summarize(contact *models.Contact) contactSummary {
	return contactSummary{
		Name:          contact.Name,
		Phone:         contact.Phone,
		Email:         contact.Email,
		GstNumber:     contact.GstNumber,
		PrimaryCity:   contact.PrimaryCity,
		Role:          contact.Role,
		BookingCount:  contact.BookingCount,
		TotalAmount:   contact.TotalAmount,
		LastBookingAt: contact.LastBookingAt,
	}
}

func (s *HTTPServer) handleDirectory(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		snapshot := s.provider.Snapshot()
		if snapshot == nil {
			writeError(w, http.StatusServiceUnavailable, "directory not ready")
			return
		}

		directory := snapshot.Directory(role)
		filtered := contacts.FilterByText(directory, r.URL.Query().Get("q"))

		summaries := make([]contactSummary, 0, len(filtered))
		for _, contact := range filtered {
			summaries = append(summaries, summarize(contact))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"contacts":  summaries,
			"stats":     snapshot.Stats(role),
			"fetchedAt": snapshot.FetchedAt,
		})
	}
}

func (s *HTTPServer) handleDetail(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		phone := r.URL.Query().Get("phone")

		snapshot := s.provider.Snapshot()
		if snapshot == nil {
			writeError(w, http.StatusServiceUnavailable, "directory not ready")
			return
		}

		contact := contacts.SelectContact(snapshot.Directory(role), name, phone)
		if contact == nil {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}

		limit := defaultRecentLimit
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"contact":        summarize(contact),
			"recentBookings": contacts.RecentBookings(contact, limit),
			"bookings":       contact.Bookings,
		})
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	role := models.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = models.RoleSender
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be sender or receiver")
		return
	}

	snapshot := s.provider.Snapshot()
	if snapshot == nil {
		writeError(w, http.StatusServiceUnavailable, "directory not ready")
		return
	}

	file, err := export.Directory(role, snapshot.Directory(role))
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(role)).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer file.Close()

	fileName := fmt.Sprintf("contacts_%s_%s.xlsx", role, snapshot.FetchedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	if err := file.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write export response")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := s.provider.Snapshot()
	if snapshot == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "warming_up"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"fetchedAt":    snapshot.FetchedAt,
		"ageSeconds":   int(time.Since(snapshot.FetchedAt).Seconds()),
		"bookingCount": snapshot.BookingCount,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
