package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reserva/internal/models"
)

func (db *DB) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `INSERT INTO products (name, category, sort_order, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		product.Name,
		product.Category,
		product.SortOrder,
		product.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	query := `SELECT id, name, category, sort_order, is_active, created_at, updated_at
              FROM products WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Category, &product.SortOrder,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (db *DB) GetActiveProducts(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT id, name, category, sort_order, is_active, created_at, updated_at
              FROM products WHERE is_active = 1 ORDER BY sort_order, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SortOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// DeleteProduct removes an empty product. Callers decide whether to remove
// a product after its last unit is deleted.
func (db *DB) DeleteProduct(ctx context.Context, id int64) error {
	var remaining int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units WHERE product_id = ?`, id).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("failed to count product units: %w", err)
	}
	if remaining > 0 {
		return fmt.Errorf("product %d still has %d units", id, remaining)
	}

	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
