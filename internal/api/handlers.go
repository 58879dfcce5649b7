package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"reserva/internal/domain"
	"reserva/internal/metrics"
	"reserva/internal/models"
)

type createReservationBody struct {
	ProductID       int64  `json:"product_id"`
	Campus          string `json:"campus"`
	RequesterName   string `json:"requester_name"`
	RequesterCode   string `json:"requester_code"`
	Purpose         string `json:"purpose"`
	StartAt         string `json:"start_at"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createReservation(w, r)
	case http.MethodGet:
		s.listReservations(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_reservation")

	var body createReservationBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var startAt time.Time
	if body.StartAt != "" {
		parsed, err := time.Parse(time.RFC3339, body.StartAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_at; expected RFC3339")
			return
		}
		startAt = parsed
	}

	req := &domain.CreateReservationRequest{
		ProductID:       body.ProductID,
		Campus:          body.Campus,
		RequesterName:   strings.TrimSpace(body.RequesterName),
		RequesterCode:   strings.TrimSpace(body.RequesterCode),
		Purpose:         body.Purpose,
		StartAt:         startAt,
		DurationMinutes: body.DurationMinutes,
		IdempotencyKey:  strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	}

	reservation, err := s.reservations.CreateReservation(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_reservations")

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		status = models.StatusReserved
	}

	reservations, err := s.reservations.GetReservationsByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/reservations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	if rest == "export" {
		s.exportReservations(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getReservation(w, r, id)
	case len(parts) == 2 && parts[1] == "complete" && r.Method == http.MethodPost:
		s.transitionReservation(w, r, id, models.StatusCompleted)
	case len(parts) == 2 && parts[1] == "cancel" && r.Method == http.MethodPost:
		s.transitionReservation(w, r, id, models.StatusCancelled)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getReservation(w http.ResponseWriter, r *http.Request, id int64) {
	metrics.IncHTTP("get_reservation")

	reservation, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *HTTPServer) transitionReservation(w http.ResponseWriter, r *http.Request, id int64, target string) {
	metrics.IncHTTP("transition_reservation")

	var err error
	switch target {
	case models.StatusCompleted:
		err = s.reservations.CompleteReservation(r.Context(), id)
	case models.StatusCancelled:
		err = s.reservations.CancelReservation(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reservation, err := s.reservations.GetReservation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *HTTPServer) exportReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("export_reservations")

	now := time.Now().UTC()
	startAt := now.AddDate(0, 0, -30)
	endAt := now.AddDate(0, 0, 30)

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
		startAt = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		endAt = parsed.AddDate(0, 0, 1)
	}

	reservations, err := s.repo.GetReservationsByRange(r.Context(), startAt, endAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=reservations_%s.xlsx", now.Format("2006-01-02")))

	if err := s.exports.WriteReport(w, reservations, startAt, endAt); err != nil {
		s.logger.Error().Err(err).Msg("export write error")
	}
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("availability")

	const prefix = "/api/v1/availability/"
	rawID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	productID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	campus := strings.TrimSpace(r.URL.Query().Get("campus"))
	if campus == "" {
		writeError(w, http.StatusBadRequest, "campus is required")
		return
	}

	var window *domain.Window
	if rawStart := strings.TrimSpace(r.URL.Query().Get("start")); rawStart != "" {
		startAt, err := time.Parse(time.RFC3339, rawStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start; expected RFC3339")
			return
		}
		minutes, err := strconv.Atoi(r.URL.Query().Get("duration_minutes"))
		if err != nil || minutes <= 0 {
			writeError(w, http.StatusBadRequest, "duration_minutes is required with start")
			return
		}
		window = &domain.Window{
			StartAt: startAt,
			EndAt:   startAt.Add(time.Duration(minutes) * time.Minute),
		}
	}

	availability, err := s.availability.ProductAvailability(r.Context(), productID, campus, window)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availability)
}

func (s *HTTPServer) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("products")

	products, err := s.repo.GetActiveProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].SortOrder == products[j].SortOrder {
			return products[i].ID < products[j].ID
		}
		return products[i].SortOrder < products[j].SortOrder
	})

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *HTTPServer) handleProductUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("product_units")

	const prefix = "/api/v1/products/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "units" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var units []*models.Unit
	if campus := strings.TrimSpace(r.URL.Query().Get("campus")); campus != "" {
		units, err = s.inventory.ListActiveUnits(r.Context(), productID, campus)
	} else {
		units, err = s.inventory.ListUnits(r.Context(), productID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

type unitStatusBody struct {
	Status string `json:"status"`
}

type unitNoteBody struct {
	Note   string `json:"note"`
	Author string `json:"author"`
}

func (s *HTTPServer) handleUnits(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/units/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")

	unitID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || unitID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getUnit(w, r, unitID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.deleteUnit(w, r, unitID)
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPut:
		s.setUnitStatus(w, r, unitID)
	case len(parts) == 2 && parts[1] == "notes" && r.Method == http.MethodGet:
		s.listUnitNotes(w, r, unitID)
	case len(parts) == 2 && parts[1] == "notes" && r.Method == http.MethodPost:
		s.addUnitNote(w, r, unitID)
	case len(parts) == 3 && parts[1] == "notes" && r.Method == http.MethodDelete:
		s.deleteUnitNote(w, r, parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getUnit(w http.ResponseWriter, r *http.Request, unitID int64) {
	metrics.IncHTTP("get_unit")

	unit, err := s.inventory.GetUnit(r.Context(), unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

func (s *HTTPServer) deleteUnit(w http.ResponseWriter, r *http.Request, unitID int64) {
	metrics.IncHTTP("delete_unit")

	remaining, err := s.inventory.DeleteUnit(r.Context(), unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"remaining_units": remaining})
}

func (s *HTTPServer) setUnitStatus(w http.ResponseWriter, r *http.Request, unitID int64) {
	metrics.IncHTTP("set_unit_status")

	var body unitStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !models.IsValidUnitStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "invalid unit status")
		return
	}

	if err := s.inventory.SetUnitStatus(r.Context(), unitID, body.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	unit, err := s.inventory.GetUnit(r.Context(), unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

func (s *HTTPServer) listUnitNotes(w http.ResponseWriter, r *http.Request, unitID int64) {
	metrics.IncHTTP("list_unit_notes")

	notes, err := s.inventory.ListNotes(r.Context(), unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (s *HTTPServer) addUnitNote(w http.ResponseWriter, r *http.Request, unitID int64) {
	metrics.IncHTTP("add_unit_note")

	var body unitNoteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Note) == "" {
		writeError(w, http.StatusBadRequest, "note is required")
		return
	}

	note, err := s.inventory.AddNote(r.Context(), unitID, body.Note, body.Author)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *HTTPServer) deleteUnitNote(w http.ResponseWriter, r *http.Request, rawNoteID string) {
	metrics.IncHTTP("delete_unit_note")

	noteID, err := strconv.ParseInt(rawNoteID, 10, 64)
	if err != nil || noteID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := s.inventory.DeleteNote(r.Context(), noteID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

func (s *HTTPServer) handleVerification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("verification")

	// Serve the cached snapshot when fresh enough; fall back to a rebuild.
	if r.URL.Query().Get("cached") == "true" {
		if snapshot := s.verification.Cached(); snapshot != nil {
			writeJSON(w, http.StatusOK, snapshot)
			return
		}
	}

	buckets, err := s.verification.Buckets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
