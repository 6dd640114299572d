package models

import (
	"time"

	"app-fin-management/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Journal entry statuses. The kernel only posts; DRAFT exists for entries
// under construction that have not passed validation yet.
const (
	EntryStatusDraft  = "DRAFT"
	EntryStatusPosted = "POSTED"
)

// JournalEntry is an atomic balanced posting of two or more lines. Entries are
// append-only inside an open fiscal period; an amendment is a new compensating
// entry, never an in-place change.
type JournalEntry struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CompanyID      uint           `json:"company_id" gorm:"not null;uniqueIndex:idx_journal_entries_company_reference"`
	FiscalPeriodID uint           `json:"fiscal_period_id" gorm:"not null;index"`
	EntryDate      time.Time      `json:"entry_date" gorm:"not null;index"`
	Reference      string         `json:"reference" gorm:"not null;size:50;uniqueIndex:idx_journal_entries_company_reference"`
	Description    string         `json:"description" gorm:"type:text"`
	Status         string         `json:"status" gorm:"not null;size:20;default:'POSTED'"`
	CreatedBy      string         `json:"created_by" gorm:"size:100"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Company      *Company           `json:"-" gorm:"foreignKey:CompanyID"`
	FiscalPeriod *FiscalPeriod      `json:"-" gorm:"foreignKey:FiscalPeriodID"`
	Lines        []JournalEntryLine `json:"lines" gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE"`
}

// JournalEntryLine is a single debit or credit against one account. Exactly
// one of DebitAmount/CreditAmount is strictly positive.
type JournalEntryLine struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	JournalEntryID uint            `json:"journal_entry_id" gorm:"not null;index"`
	LineNumber     int             `json:"line_number" gorm:"not null"`
	AccountID      uint            `json:"account_id" gorm:"not null;index"`
	Description    string          `json:"description" gorm:"type:text"`
	DebitAmount    decimal.Decimal `json:"debit_amount" gorm:"type:decimal(18,2);default:0"`
	CreditAmount   decimal.Decimal `json:"credit_amount" gorm:"type:decimal(18,2);default:0"`

	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// Validate checks the single-sided line invariant.
func (l *JournalEntryLine) Validate() error {
	debitSet := l.DebitAmount.IsPositive()
	creditSet := l.CreditAmount.IsPositive()
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return utils.NewError(utils.KindUnbalanced, "line %d: negative amounts are not allowed", l.LineNumber)
	}
	if debitSet == creditSet {
		return utils.NewError(utils.KindUnbalanced, "line %d: exactly one of debit/credit must be positive", l.LineNumber)
	}
	return nil
}

// TotalDebits sums the debit side of all lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.DebitAmount)
	}
	return utils.Round2(total)
}

// TotalCredits sums the credit side of all lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.CreditAmount)
	}
	return utils.Round2(total)
}

// IsBalanced reports whether debits equal credits and both are positive.
func (e *JournalEntry) IsBalanced() bool {
	debits := e.TotalDebits()
	return debits.Equal(e.TotalCredits()) && debits.IsPositive()
}

// Validate enforces the entry invariants: at least two lines, every line
// single-sided, and total debits equal to total credits with both positive.
func (e *JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return utils.NewError(utils.KindUnbalanced, "entry %q: at least two lines required", e.Reference)
	}
	for i := range e.Lines {
		if err := e.Lines[i].Validate(); err != nil {
			return err
		}
	}
	if !e.IsBalanced() {
		return utils.NewError(utils.KindUnbalanced,
			"entry %q: debits %s do not balance credits %s",
			e.Reference, e.TotalDebits().StringFixed(2), e.TotalCredits().StringFixed(2))
	}
	return nil
}
