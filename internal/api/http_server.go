package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reserva/internal/config"
	"reserva/internal/database"
	"reserva/internal/domain"
	"reserva/internal/export"
	"reserva/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation, availability and inventory API for the
// portal frontend and the verification board.
type HTTPServer struct {
	cfg          config.APIConfig
	reservations domain.ReservationService
	availability domain.AvailabilityService
	verification domain.VerificationService
	inventory    domain.InventoryService
	repo         domain.Repository
	exports      *export.Service
	server       *http.Server
	auth         *HTTPAuth
	logger       *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, reservations domain.ReservationService, availability domain.AvailabilityService, verification domain.VerificationService, inventory domain.InventoryService, repo domain.Repository, exports *export.Service, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		availability: availability,
		verification: verification,
		inventory:    inventory,
		repo:         repo,
		exports:      exports,
		logger:       logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/availability/", srv.handleAvailability)
	mux.HandleFunc("/api/v1/products", srv.handleProducts)
	mux.HandleFunc("/api/v1/products/", srv.handleProductUnits)
	mux.HandleFunc("/api/v1/units/", srv.handleUnits)
	mux.HandleFunc("/api/v1/verification", srv.handleVerification)

	handler := loggingMiddleware(logger)(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the full middleware chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
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

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain sentinel errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingRequester),
		errors.Is(err, service.ErrInvalidStart),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrDurationExceeded),
		errors.Is(err, service.ErrUnknownCampus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrNoUnitAvailable),
		errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrUnitNotActive),
		errors.Is(err, database.ErrDuplicateUnitCode):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
