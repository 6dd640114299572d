package services

import (
	"bytes"
	"fmt"
	"time"

	"app-fin-management/models"

	"github.com/jung-kurt/gofpdf"
)

// PDF layout constants: A4 portrait with 50pt margins and a fixed-width font
// for ledger bodies so the amount columns line up.
const (
	pdfMargin     = 50.0
	pdfBodyFont   = "Courier"
	pdfBannerFont = "Helvetica"
	pdfBodySize   = 8.0
	pdfRowHeight  = 11.0
)

// renderPDF produces the A4 report with a repeated title banner and the
// standard system footer on every page.
func (s *ExportService) renderPDF(doc *models.ReportDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	pdf.SetTitle(fmt.Sprintf("%s - %s", doc.Title, doc.CompanyName), false)
	pdf.SetSubject(fmt.Sprintf("%s for %s", doc.Title, doc.PeriodName), false)
	pdf.SetAuthor(s.cfg.SystemName, false)

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pdfMargin

	totalWidth := 0
	for _, column := range doc.Columns {
		totalWidth += column.Width
	}
	colWidths := make([]float64, len(doc.Columns))
	for i, column := range doc.Columns {
		colWidths[i] = usable * float64(column.Width) / float64(totalWidth)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(pdfBannerFont, "B", 12)
		pdf.CellFormat(usable, 16, doc.Title, "", 1, "C", false, 0, "")
		pdf.SetFont(pdfBannerFont, "", 10)
		pdf.CellFormat(usable, 13, doc.CompanyName, "", 1, "C", false, 0, "")
		pdf.CellFormat(usable, 13, fmt.Sprintf("%s (%s - %s)",
			doc.PeriodName,
			doc.PeriodStart.Format(s.cfg.LongDateLayout),
			doc.PeriodEnd.Format(s.cfg.LongDateLayout)), "", 1, "C", false, 0, "")
		pdf.Ln(6)

		pdf.SetFont(pdfBodyFont, "B", pdfBodySize)
		for i, column := range doc.Columns {
			align := "L"
			if column.Align == models.AlignRight {
				align = "R"
			}
			pdf.CellFormat(colWidths[i], pdfRowHeight, column.Header, "B", 0, align, false, 0, "")
		}
		pdf.Ln(pdfRowHeight)
		pdf.SetFont(pdfBodyFont, "", pdfBodySize)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin + 15)
		pdf.SetFont(pdfBannerFont, "", 8)
		footer := fmt.Sprintf("Page %d | Generated: %s | %s",
			pdf.PageNo(), time.Now().Format(s.cfg.LongDateLayout), s.cfg.SystemName)
		pdf.CellFormat(usable, 10, footer, "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	for _, row := range doc.Rows {
		if row.IsHeading {
			pdf.Ln(4)
			pdf.SetFont(pdfBodyFont, "B", pdfBodySize)
			heading := row.Section
			if heading == "" {
				heading = s.headingText(row)
			}
			pdf.CellFormat(usable, pdfRowHeight, heading, "B", 1, "L", false, 0, "")
			pdf.SetFont(pdfBodyFont, "", pdfBodySize)
			continue
		}
		if row.IsTotal {
			pdf.SetFont(pdfBodyFont, "B", pdfBodySize)
		}
		for i, column := range doc.Columns {
			align := "L"
			if column.Align == models.AlignRight {
				align = "R"
			}
			border := ""
			if row.IsTotal {
				border = "T"
			}
			pdf.CellFormat(colWidths[i], pdfRowHeight, s.textCell(row.Cells[column.Key], column),
				border, 0, align, false, 0, "")
		}
		pdf.Ln(pdfRowHeight)
		if row.IsTotal {
			pdf.SetFont(pdfBodyFont, "", pdfBodySize)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
