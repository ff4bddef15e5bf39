package finance

import (
	"bytes"
	"context"
	"fmt"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Ledger"

var ledgerHeaders = []string{"Year", "Month", "Day", "Type", "Category", "Description", "Amount"}

// ExportXLSX renders the farm ledger as a workbook: one row per entry,
// newest first, followed by the totals.
func (s *Service) ExportXLSX(ctx context.Context, farmID uint) (*bytes.Buffer, error) {
	var farm models.Farm
	if err := s.db.WithContext(ctx).Select("id", "name").First(&farm, farmID).Error; err != nil {
		return nil, apperr.NotFound("Farm not found")
	}
	ledger, err := s.List(ctx, farmID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to build workbook")
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6E0B4"}, Pattern: 1},
	})

	f.SetCellValue(ledgerSheet, "A1", fmt.Sprintf("%s ledger", farm.Name))
	f.SetCellStyle(ledgerSheet, "A1", "A1", titleStyle)

	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(ledgerSheet, cell, h)
		f.SetCellStyle(ledgerSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(ledgerSheet, "E", "E", 22)
	f.SetColWidth(ledgerSheet, "F", "F", 48)

	row := 4
	for _, e := range ledger.Entries {
		amount, _ := e.Amount.Float64()
		values := []any{e.GameYear, e.GameMonth, e.GameDay, string(e.Type), e.Category, e.Description, amount}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(ledgerSheet, cell, v)
		}
		row++
	}

	row++
	totals := []struct {
		label string
		value float64
	}{
		{"Total income", ledger.TotalIncome.InexactFloat64()},
		{"Total expense", ledger.TotalExpense.InexactFloat64()},
		{"Balance", ledger.Balance.InexactFloat64()},
	}
	for _, t := range totals {
		f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", row), t.label)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("G%d", row), t.value)
		f.SetCellStyle(ledgerSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), headerStyle)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.Internal(err, "Failed to write workbook")
	}
	return buf, nil
}
