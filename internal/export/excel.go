package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"reserva/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservations"

// Service renders reservation reports as Excel workbooks for lab staff.
type Service struct {
	exportPath string
	logger     *zerolog.Logger
}

func NewService(exportPath string, logger *zerolog.Logger) *Service {
	return &Service{exportPath: exportPath, logger: logger}
}

func buildWorkbook(reservations []*models.Reservation, startAt, endAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Reservations %s to %s",
		startAt.Format("2006-01-02"), endAt.Format("2006-01-02")))
	_ = f.MergeCell(sheetName, "A1", "I1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{
		"ID", "Unit", "Requester", "Code", "Purpose",
		"Start", "End", "Status", "Created",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range reservations {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.UnitCode)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.RequesterName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.RequesterCode)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Purpose)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.StartAt.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.EndAt.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	_ = f.SetColWidth(sheetName, "B", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "G", 18)
	_ = f.SetColWidth(sheetName, "I", "I", 18)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

// WriteReport streams the workbook to w, typically an HTTP response.
func (s *Service) WriteReport(w io.Writer, reservations []*models.Reservation, startAt, endAt time.Time) error {
	f, err := buildWorkbook(reservations, startAt, endAt)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveReport writes the workbook under the configured exports directory and
// returns the file path.
func (s *Service) SaveReport(reservations []*models.Reservation, startAt, endAt time.Time) (string, error) {
	if err := os.MkdirAll(s.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f, err := buildWorkbook(reservations, startAt, endAt)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx",
		startAt.Format("2006-01-02"), endAt.Format("2006-01-02"))
	filePath := filepath.Join(s.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}
