package database

import (
	"context"
	"testing"

	"reserva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncInventory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	seed := &models.InventorySeed{
		Products: []models.InventoryProduct{
			{
				Name:      "Camera",
				Category:  "photo",
				SortOrder: 1,
				Units: []models.Unit{
					{UnitCode: "CAM-MT-01", Campus: "Monterrico"},
					{UnitCode: "CAM-SM-01", Campus: "San Miguel"},
				},
			},
			{
				Name:      "Microphone",
				Category:  "audio",
				SortOrder: 2,
				Units: []models.Unit{
					{UnitCode: "MIC-MT-01", Campus: "Monterrico", Status: models.UnitStatusMaintenance},
				},
			},
		},
	}

	require.NoError(t, db.SyncInventory(ctx, seed))

	products, err := db.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Camera", products[0].Name)

	units, err := db.GetUnitsByProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Len(t, units, 2)

	micUnits, err := db.GetUnitsByProduct(ctx, products[1].ID)
	require.NoError(t, err)
	require.Len(t, micUnits, 1)
	assert.Equal(t, models.UnitStatusMaintenance, micUnits[0].Status)

	// Running the sync again is a no-op for existing rows.
	seed.Products[0].Category = "video"
	require.NoError(t, db.SyncInventory(ctx, seed))

	products, err = db.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "video", products[0].Category)

	units, err = db.GetUnitsByProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestSyncInventoryNilSeed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	assert.NoError(t, db.SyncInventory(context.Background(), nil))
}
