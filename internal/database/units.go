package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reserva/internal/models"
)

const unitColumns = `id, product_id, unit_code, COALESCE(asset_code, ''), status, campus, COALESCE(current_note, ''), created_at, updated_at`

func scanUnit(row interface{ Scan(...any) error }) (*models.Unit, error) {
	u := &models.Unit{}
	err := row.Scan(
		&u.ID, &u.ProductID, &u.UnitCode, &u.AssetCode,
		&u.Status, &u.Campus, &u.CurrentNote, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *DB) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.Status == "" {
		unit.Status = models.UnitStatusActive
	}
	query := `INSERT INTO units (product_id, unit_code, asset_code, status, campus, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		unit.ProductID,
		unit.UnitCode,
		unit.AssetCode,
		unit.Status,
		unit.Campus,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateUnitCode
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	unit.ID = id
	unit.CreatedAt = now
	unit.UpdatedAt = now
	return nil
}

func (db *DB) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = ?`
	unit, err := scanUnit(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return unit, nil
}

// GetUnitsByProduct returns every unit of a product, no filtering.
func (db *DB) GetUnitsByProduct(ctx context.Context, productID int64) ([]*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE product_id = ? ORDER BY unit_code`
	return db.queryUnits(ctx, query, productID)
}

// GetActiveUnits returns active units of a product at a campus, in stable
// unit-code order. This order also fixes which free unit a reservation binds.
func (db *DB) GetActiveUnits(ctx context.Context, productID int64, campus string) ([]*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units
              WHERE product_id = ? AND campus = ? AND status = ? ORDER BY unit_code`
	return db.queryUnits(ctx, query, productID, campus, models.UnitStatusActive)
}

func (db *DB) queryUnits(ctx context.Context, query string, args ...any) ([]*models.Unit, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// CountActiveUnits is the status-derived headline count used by the
// catalog. It deliberately ignores live reservations; the overlap-aware
// variant is CountFreeUnits.
func (db *DB) CountActiveUnits(ctx context.Context, productID int64, campus string) (int, error) {
	query := `SELECT COUNT(*) FROM units WHERE product_id = ? AND campus = ? AND status = ?`
	var count int
	err := db.QueryRowContext(ctx, query, productID, campus, models.UnitStatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active units: %w", err)
	}
	return count, nil
}

// SetUnitStatus transitions a unit's lifecycle status. Any status to any
// status is permitted; open reservations on the unit are not touched.
func (db *DB) SetUnitStatus(ctx context.Context, id int64, status string) error {
	if !models.IsValidUnitStatus(status) {
		return fmt.Errorf("unknown unit status: %s", status)
	}
	query := `UPDATE units SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set unit status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUnit hard-deletes a unit, cascading to its notes and reservations
// in one transaction. It returns how many units of the product remain so
// the caller can decide whether the product itself should go.
func (db *DB) DeleteUnit(ctx context.Context, id int64) (remaining int, err error) {
	unit, err := db.GetUnit(ctx, id)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unit_notes WHERE unit_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete unit notes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE unit_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete unit reservations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to delete unit: %w", err)
	}

	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM units WHERE product_id = ?`, unit.ProductID).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to count remaining units: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit unit delete: %w", err)
	}
	return remaining, nil
}
