package importer

import (
	"fmt"
	"io"

	"report_gen/internal/models"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetContentType is the media type of xlsx workbooks.
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Items"

// WriteSpreadsheet writes items as a workbook ReadSpreadsheet can load back.
func WriteSpreadsheet(w io.Writer, items []models.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"ID", "Name", "Value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// IDs stay text so "007" survives the round trip
		if err := f.SetSheetRow(exportSheet, cell, &[]any{item.ID.String(), item.Name, item.Value}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "C", 20); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}
