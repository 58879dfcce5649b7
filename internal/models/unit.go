package models

import "time"

// Unit is one physical, individually tracked instance of a product.
// A unit belongs to exactly one product and one campus for its lifetime.
type Unit struct {
	ID          int64     `json:"id" yaml:"id"`
	ProductID   int64     `json:"product_id" yaml:"product_id"`
	UnitCode    string    `json:"unit_code" yaml:"unit_code"`
	AssetCode   string    `json:"asset_code,omitempty" yaml:"asset_code"`
	Status      string    `json:"status" yaml:"status"` // active, maintenance, retired
	Campus      string    `json:"campus" yaml:"campus"`
	CurrentNote string    `json:"current_note,omitempty" yaml:"-"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// UnitNote is an append-only annotation on a unit. The owning unit's
// CurrentNote always mirrors the most recently created note.
type UnitNote struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unit_id"`
	Note      string    `json:"note"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
