package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reserva/internal/models"
)

// AddUnitNote appends a note and moves the unit's current-note pointer to
// it, in one transaction.
func (db *DB) AddUnitNote(ctx context.Context, note *models.UnitNote) error {
	if note.Note == "" {
		return fmt.Errorf("note text is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var unitExists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM units WHERE id = ?`, note.UnitID).Scan(&unitExists)
	if err != nil {
		return fmt.Errorf("failed to check unit: %w", err)
	}
	if unitExists == 0 {
		return ErrNotFound
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO unit_notes (unit_id, note, created_by, created_at) VALUES (?, ?, ?, ?)`,
		note.UnitID, note.Note, note.CreatedBy, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert unit note: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE units SET current_note = ?, updated_at = ? WHERE id = ?`,
		note.Note, now, note.UnitID,
	)
	if err != nil {
		return fmt.Errorf("failed to update current note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unit note: %w", err)
	}

	note.ID = id
	note.CreatedAt = now
	return nil
}

// GetUnitNotes returns a unit's notes, most recent first.
func (db *DB) GetUnitNotes(ctx context.Context, unitID int64) ([]*models.UnitNote, error) {
	query := `SELECT id, unit_id, note, COALESCE(created_by, ''), created_at
              FROM unit_notes WHERE unit_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.UnitNote
	for rows.Next() {
		n := &models.UnitNote{}
		if err := rows.Scan(&n.ID, &n.UnitID, &n.Note, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteUnitNote removes a note and recomputes the owning unit's
// current-note pointer from the most recent remaining note (or clears it).
func (db *DB) DeleteUnitNote(ctx context.Context, noteID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var unitID int64
	err = tx.QueryRowContext(ctx, `SELECT unit_id FROM unit_notes WHERE id = ?`, noteID).Scan(&unitID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load note: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM unit_notes WHERE id = ?`, noteID); err != nil {
		return fmt.Errorf("failed to delete unit note: %w", err)
	}

	var latest sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT note FROM unit_notes WHERE unit_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		unitID,
	).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to find latest note: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE units SET current_note = ?, updated_at = ? WHERE id = ?`,
		latest, time.Now(), unitID,
	)
	if err != nil {
		return fmt.Errorf("failed to recompute current note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit note delete: %w", err)
	}
	return nil
}
