package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reserva/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReservations() []*models.Reservation {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	return []*models.Reservation{
		{
			ID:            1,
			UnitCode:      "CAM-MT-01",
			RequesterName: "Lucia Herrera",
			RequesterCode: "U201912345",
			Purpose:       "thesis shoot",
			StartAt:       start,
			EndAt:         start.Add(time.Hour),
			Status:        models.StatusReserved,
			CreatedAt:     start.Add(-24 * time.Hour),
		},
		{
			ID:            2,
			UnitCode:      "MIC-SM-01",
			RequesterName: "Diego Paz",
			RequesterCode: "U201898001",
			StartAt:       start.Add(2 * time.Hour),
			EndAt:         start.Add(3 * time.Hour),
			Status:        models.StatusCompleted,
			CreatedAt:     start,
		},
	}
}

func TestWriteReport(t *testing.T) {
	logger := zerolog.Nop()
	svc := NewService(t.TempDir(), &logger)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteReport(&buf, testReservations(), from, to))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reservations 2026-03-01 to 2026-03-31", title)

	header, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Unit", header)

	unit, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "CAM-MT-01", unit)

	status, err := f.GetCellValue(sheetName, "H4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)

	// The default sheet is dropped so the report opens on the data.
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
}

func TestSaveReport(t *testing.T) {
	logger := zerolog.Nop()
	dir := filepath.Join(t.TempDir(), "exports")
	svc := NewService(dir, &logger)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	path, err := svc.SaveReport(testReservations(), from, to)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reservations_2026-03-01_to_2026-03-31.xlsx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
