package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reserva/internal/models"
)

const reservationColumns = `r.id, r.product_id, r.unit_id, u.unit_code, r.requester_name,
	       COALESCE(r.requester_code, ''), COALESCE(r.purpose, ''), r.start_at, r.end_at,
	       r.status, r.created_at, r.updated_at, r.version`

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	r := &models.Reservation{}
	var startStr, endStr string
	err := row.Scan(
		&r.ID, &r.ProductID, &r.UnitID, &r.UnitCode, &r.RequesterName,
		&r.RequesterCode, &r.Purpose, &startStr, &endStr,
		&r.Status, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	if r.StartAt, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse start_at %s: %w", startStr, err)
	}
	if r.EndAt, err = parseTime(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse end_at %s: %w", endStr, err)
	}
	return r, nil
}

// IsUnitFree reports whether no reserved reservation on the unit overlaps
// the half-open window [startAt, endAt). This is the authoritative check
// re-run inside the create transaction.
func (db *DB) IsUnitFree(ctx context.Context, unitID int64, startAt, endAt time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM reservations
              WHERE unit_id = ? AND status = ? AND start_at < ? AND ? < end_at`
	var overlapping int
	err := db.QueryRowContext(ctx, query, unitID, models.StatusReserved,
		formatTime(endAt), formatTime(startAt)).Scan(&overlapping)
	if err != nil {
		return false, fmt.Errorf("failed to check unit freeness: %w", err)
	}
	return overlapping == 0, nil
}

const freeUnitQuery = `
	SELECT u.id, u.unit_code FROM units u
	WHERE u.product_id = ? AND u.campus = ? AND u.status = ?
	  AND NOT EXISTS (
	      SELECT 1 FROM reservations r
	      WHERE r.unit_id = u.id AND r.status = ?
	        AND r.start_at < ? AND ? < r.end_at
	  )
	ORDER BY u.unit_code`

// PickFreeUnit returns the first active unit of the product at the campus
// with no overlapping reserved reservation, in unit-code order. Read-only
// preview; the create path re-resolves inside its own transaction.
func (db *DB) PickFreeUnit(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (*models.Unit, error) {
	var unitID int64
	var unitCode string
	err := db.QueryRowContext(ctx, freeUnitQuery+` LIMIT 1`,
		productID, campus, models.UnitStatusActive,
		models.StatusReserved, formatTime(endAt), formatTime(startAt),
	).Scan(&unitID, &unitCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoUnitAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick free unit: %w", err)
	}
	return db.GetUnit(ctx, unitID)
}

// CountFreeUnits is the overlap-aware availability count for a window.
func (db *DB) CountFreeUnits(ctx context.Context, productID int64, campus string, startAt, endAt time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM (` + freeUnitQuery + `)`
	var count int
	err := db.QueryRowContext(ctx, query,
		productID, campus, models.UnitStatusActive,
		models.StatusReserved, formatTime(endAt), formatTime(startAt),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count free units: %w", err)
	}
	return count, nil
}

// CreateReservationWithLock resolves a free unit and inserts the
// reservation as one serializable transaction. Two concurrent callers
// racing for the last free unit cannot both succeed: the loser re-observes
// the winner's row and gets ErrNoUnitAvailable. Splitting this into a
// client-side check-then-insert would reintroduce the double-booking race.
func (db *DB) CreateReservationWithLock(ctx context.Context, campus string, reservation *models.Reservation) error {
	if !reservation.EndAt.After(reservation.StartAt) {
		return fmt.Errorf("end_at must be after start_at")
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	startStr := formatTime(reservation.StartAt)
	endStr := formatTime(reservation.EndAt)

	// 1. Resolve the first free active unit inside the transaction.
	var unitID int64
	var unitCode string
	err = tx.QueryRowContext(ctx, freeUnitQuery+` LIMIT 1`,
		reservation.ProductID, campus, models.UnitStatusActive,
		models.StatusReserved, endStr, startStr,
	).Scan(&unitID, &unitCode)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoUnitAvailable
	}
	if err != nil {
		return fmt.Errorf("failed to resolve free unit in tx: %w", err)
	}

	// 2. Insert bound to the resolved unit.
	queryInsert := `INSERT INTO reservations (
				product_id, unit_id, requester_name, requester_code, purpose,
				start_at, end_at, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		reservation.ProductID,
		unitID,
		reservation.RequesterName,
		reservation.RequesterCode,
		reservation.Purpose,
		startStr,
		endStr,
		models.StatusReserved,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	reservation.ID = id
	reservation.UnitID = unitID
	reservation.UnitCode = unitCode
	reservation.Status = models.StatusReserved
	reservation.StartAt = reservation.StartAt.UTC().Truncate(time.Second)
	reservation.EndAt = reservation.EndAt.UTC().Truncate(time.Second)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	reservation.Version = 1
	return nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations r JOIN units u ON u.id = r.unit_id
              WHERE r.id = ?`
	reservation, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

// GetReservationsByStatus returns reservations in a status ordered by
// start time; the verification view reads status=reserved through this.
func (db *DB) GetReservationsByStatus(ctx context.Context, status string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations r JOIN units u ON u.id = r.unit_id
              WHERE r.status = ? ORDER BY r.start_at, r.id`
	return db.queryReservations(ctx, query, status)
}

// GetReservationsByRange returns reservations whose window intersects
// [startAt, endAt), any status. Used by exports and admin listings.
func (db *DB) GetReservationsByRange(ctx context.Context, startAt, endAt time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations r JOIN units u ON u.id = r.unit_id
              WHERE r.start_at < ? AND ? < r.end_at ORDER BY r.start_at, r.id`
	return db.queryReservations(ctx, query, formatTime(endAt), formatTime(startAt))
}

func (db *DB) GetUnitReservations(ctx context.Context, unitID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations r JOIN units u ON u.id = r.unit_id
              WHERE r.unit_id = ? ORDER BY r.start_at, r.id`
	return db.queryReservations(ctx, query, unitID)
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...any) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// UpdateReservationStatus moves a reservation out of the reserved state.
// The UPDATE is guarded on the current status, so a reservation already in
// a terminal state is left untouched and reported as ErrInvalidTransition.
func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	if status != models.StatusCompleted && status != models.StatusCancelled {
		return fmt.Errorf("invalid target status: %s", status)
	}

	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, models.StatusReserved)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := db.GetReservation(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}
