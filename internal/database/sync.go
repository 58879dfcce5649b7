package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reserva/internal/models"
)

// SyncInventory reconciles the inventory seed with the database on startup.
// Products are matched by name and units by (product, unit_code); existing
// rows are updated, missing ones are inserted. Units absent from the seed
// are left alone since they may carry reservations and notes.
func (db *DB) SyncInventory(ctx context.Context, seed *models.InventorySeed) error {
	if seed == nil {
		return nil
	}

	for i := range seed.Products {
		sp := &seed.Products[i]

		productID, err := db.upsertProduct(ctx, sp)
		if err != nil {
			return fmt.Errorf("failed to sync product %q: %w", sp.Name, err)
		}

		for j := range sp.Units {
			unit := sp.Units[j]
			unit.ProductID = productID
			if err := db.CreateUnit(ctx, &unit); err != nil {
				if errors.Is(err, ErrDuplicateUnitCode) {
					continue
				}
				return fmt.Errorf("failed to sync unit %q of %q: %w", unit.UnitCode, sp.Name, err)
			}
		}
	}

	db.logger.Info().Int("products", len(seed.Products)).Msg("inventory synced")
	return nil
}

func (db *DB) upsertProduct(ctx context.Context, sp *models.InventoryProduct) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM products WHERE name = ?`, sp.Name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		product := &models.Product{
			Name:      sp.Name,
			Category:  sp.Category,
			SortOrder: sp.SortOrder,
			IsActive:  true,
		}
		if err := db.CreateProduct(ctx, product); err != nil {
			return 0, err
		}
		return product.ID, nil
	}
	if err != nil {
		return 0, err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products SET category = ?, sort_order = ?, is_active = 1, updated_at = ? WHERE id = ?`,
		sp.Category, sp.SortOrder, time.Now(), id,
	)
	return id, err
}
