package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"app-fin-management/config"
	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/shopspring/decimal"
)

// Export formats
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ExportService renders a ReportDocument to bytes in one of the supported
// formats. The formatting configuration is explicit; there is no locale
// state anywhere in the render path.
type ExportService struct {
	cfg config.ExportConfiguration
}

func NewExportService(cfg config.ExportConfiguration) *ExportService {
	return &ExportService{cfg: cfg}
}

// Render dispatches on format.
func (s *ExportService) Render(doc *models.ReportDocument, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return s.renderText(doc)
	case FormatCSV:
		return s.renderCSV(doc)
	case FormatPDF:
		return s.renderPDF(doc)
	case FormatXLSX:
		return s.renderXLSX(doc)
	}
	return nil, utils.NewError(utils.KindValidation, "unknown export format %q", format)
}

// cellString renders one cell for the CSV and spreadsheet paths: period
// decimal separator, dd/MM short dates, yyyy-MM-dd HH:mm:ss timestamps.
func (s *ExportService) cellString(value interface{}, column models.ReportColumn) string {
	switch v := value.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		if column.Type == models.ColumnTypeCurrency && v.IsZero() {
			return ""
		}
		return utils.FormatAmount(v)
	case time.Time:
		if column.Type == models.ColumnTypeDate {
			return v.Format(s.cfg.ShortDateLayout)
		}
		return v.Format(s.cfg.TimestampLayout)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderCSV writes the header row then one record per report row. Quoting is
// RFC4180: encoding/csv doubles embedded quotes and quotes fields containing
// separators or newlines.
func (s *ExportService) renderCSV(doc *models.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := make([]string, len(doc.Columns))
	for i, column := range doc.Columns {
		header[i] = column.Header
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range doc.Rows {
		if row.IsHeading {
			continue
		}
		record := make([]string, len(doc.Columns))
		for i, column := range doc.Columns {
			record[i] = s.cellString(row.Cells[column.Key], column)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderText lays the report out at a fixed width with '=' separator rows
// around the title block and '-' under section headers.
func (s *ExportService) renderText(doc *models.ReportDocument) ([]byte, error) {
	width := s.cfg.TextWidth
	if width <= 0 {
		width = 120
	}
	var b strings.Builder
	rule := strings.Repeat("=", width)

	b.WriteString(rule + "\n")
	b.WriteString(center(doc.Title, width) + "\n")
	b.WriteString(center(doc.CompanyName, width) + "\n")
	b.WriteString(center(fmt.Sprintf("%s (%s - %s)",
		doc.PeriodName,
		doc.PeriodStart.Format(s.cfg.LongDateLayout),
		doc.PeriodEnd.Format(s.cfg.LongDateLayout)), width) + "\n")
	b.WriteString(rule + "\n")

	var headerLine strings.Builder
	for _, column := range doc.Columns {
		headerLine.WriteString(pad(column.Header, column.Width, column.Align))
	}
	b.WriteString(strings.TrimRight(headerLine.String(), " ") + "\n")
	b.WriteString(strings.Repeat("-", width) + "\n")

	for _, row := range doc.Rows {
		if row.IsHeading {
			heading := row.Section
			if heading == "" {
				heading = s.headingText(row)
			}
			b.WriteString("\n" + heading + "\n")
			b.WriteString(strings.Repeat("-", min(len(heading), width)) + "\n")
			continue
		}
		var line strings.Builder
		for _, column := range doc.Columns {
			line.WriteString(pad(s.textCell(row.Cells[column.Key], column), column.Width, column.Align))
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
		if row.IsTotal {
			b.WriteString(strings.Repeat("-", width) + "\n")
		}
	}
	return []byte(b.String()), nil
}

func (s *ExportService) headingText(row models.ReportRow) string {
	for _, value := range row.Cells {
		if text, ok := value.(string); ok && text != "" {
			return text
		}
	}
	return ""
}

// textCell matches cellString except dates render in the long layout; the
// text report has room for the year.
func (s *ExportService) textCell(value interface{}, column models.ReportColumn) string {
	if v, ok := value.(time.Time); ok && column.Type == models.ColumnTypeDate {
		return v.Format(s.cfg.LongDateLayout)
	}
	return s.cellString(value, column)
}

func pad(text string, width int, align string) string {
	if len(text) > width-1 && width > 1 {
		text = text[:width-1]
	}
	if align == models.AlignRight {
		return fmt.Sprintf("%*s ", width-1, text)
	}
	return fmt.Sprintf("%-*s", width, text)
}

func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	left := (width - len(text)) / 2
	return strings.Repeat(" ", left) + text
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
