package services

import (
	"fmt"
	"time"

	"app-fin-management/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// renderXLSX produces one sheet per report with a header row. Currency cells
// are written as numbers, not strings, so spreadsheet consumers can sum them.
func (s *ExportService) renderXLSX(doc *models.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(doc.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	banner := []interface{}{doc.Title, doc.CompanyName, doc.PeriodName}
	for i, value := range banner {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
	}

	headerRow := len(banner) + 2
	for i, column := range doc.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheet, cell, column.Header); err != nil {
			return nil, err
		}
		width := float64(column.Width)
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, width)
	}

	rowIndex := headerRow
	for _, row := range doc.Rows {
		rowIndex++
		for i, column := range doc.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIndex)
			value := row.Cells[column.Key]
			if value == nil {
				continue
			}
			switch v := value.(type) {
			case decimal.Decimal:
				if column.Type == models.ColumnTypeCurrency && v.IsZero() && !row.IsTotal {
					continue
				}
				amount, _ := v.Round(2).Float64()
				if err := f.SetCellValue(sheet, cell, amount); err != nil {
					return nil, err
				}
			case time.Time:
				if err := f.SetCellValue(sheet, cell, v.Format(s.cfg.LongDateLayout)); err != nil {
					return nil, err
				}
			default:
				if err := f.SetCellValue(sheet, cell, s.cellString(value, column)); err != nil {
					return nil, err
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims the title to Excel's 31-character sheet name limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
