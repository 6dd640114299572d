package models

import (
	"time"
)

// Report kinds
const (
	ReportKindTrialBalance    = "trial-balance"
	ReportKindGeneralLedger   = "general-ledger"
	ReportKindCashbook        = "cashbook"
	ReportKindIncomeStatement = "income-statement"
	ReportKindBalanceSheet    = "balance-sheet"
	ReportKindAuditTrail      = "audit-trail"
)

// Column data types
const (
	ColumnTypeText     = "text"
	ColumnTypeDate     = "date"
	ColumnTypeCurrency = "currency"
)

// Column alignments
const (
	AlignLeft  = "left"
	AlignRight = "right"
)

// ReportColumn describes one column of a report's schema. Width is the layout
// width in characters for the text renderer and in points/7 for PDF.
type ReportColumn struct {
	Header string `json:"header"`
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Type   string `json:"type"`
	Align  string `json:"align"`
}

// ReportRow maps column keys to cell values. Values are string,
// decimal.Decimal or time.Time depending on the column type. A row may also
// carry a section marker so renderers can emit section headers and subtotals.
type ReportRow struct {
	Cells     map[string]interface{} `json:"cells"`
	Section   string                 `json:"section,omitempty"`
	IsHeading bool                   `json:"is_heading,omitempty"`
	IsTotal   bool                   `json:"is_total,omitempty"`
}

// ReportDocument is the format-agnostic output of the reporting engine; the
// export formatters consume it without knowing which report produced it.
type ReportDocument struct {
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	CompanyName string         `json:"company_name"`
	PeriodName  string         `json:"period_name"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Columns     []ReportColumn `json:"columns"`
	Rows        []ReportRow    `json:"rows"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// AuditTrailFilter narrows the audit trail listing.
type AuditTrailFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Page     int
	PageSize int
}
