package models

import "time"

// Product is a catalog entry. Products are managed by the catalog CRUD
// (outside this service); the core only reads them to resolve reservations.
type Product struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Category  string    `json:"category" yaml:"category"`
	SortOrder int64     `json:"sort_order" yaml:"sort_order"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// InventorySeed is the on-disk inventory shape loaded at startup and by the
// seed script: products with their physical units nested under them.
type InventorySeed struct {
	Products []InventoryProduct `yaml:"products"`
}

type InventoryProduct struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	SortOrder int64  `yaml:"sort_order"`
	Units     []Unit `yaml:"units"`
}
