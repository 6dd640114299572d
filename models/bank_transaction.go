package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bank transaction types
const (
	TransactionTypeDebit      = "DEBIT"       // money out
	TransactionTypeCredit     = "CREDIT"      // money in
	TransactionTypeServiceFee = "SERVICE_FEE" // bank charge, marked with ## on the statement
)

// Classification status on an imported bank transaction
const (
	ClassificationMatched      = "MATCHED"
	ClassificationUnclassified = "UNCLASSIFIED"
)

// BankTransaction is one imported statement line. Immutable after import
// except for the classification back-references.
type BankTransaction struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	CompanyID      uint            `json:"company_id" gorm:"not null;index"`
	FiscalPeriodID uint            `json:"fiscal_period_id" gorm:"not null;index"`
	Date           time.Time       `json:"date" gorm:"not null;index"`
	Details        string          `json:"details" gorm:"not null;type:text"`
	DebitAmount    decimal.Decimal `json:"debit_amount" gorm:"type:decimal(18,2);default:0"`
	CreditAmount   decimal.Decimal `json:"credit_amount" gorm:"type:decimal(18,2);default:0"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(18,2);default:0"`
	Reference      string          `json:"reference" gorm:"size:50"`
	IsServiceFee   bool            `json:"is_service_fee" gorm:"default:false"`
	SourceFileID   string          `json:"source_file_id" gorm:"size:36;index"`

	// Classification back-references, the only mutable part after import.
	Classification  string `json:"classification" gorm:"size:20;default:'UNCLASSIFIED'"`
	MatchedRuleID   *uint  `json:"matched_rule_id"`
	TargetAccountID *uint  `json:"target_account_id"`
	JournalEntryID  *uint  `json:"journal_entry_id"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Company      *Company      `json:"-" gorm:"foreignKey:CompanyID"`
	FiscalPeriod *FiscalPeriod `json:"-" gorm:"foreignKey:FiscalPeriodID"`
}

// Type derives the transaction type from the populated side and the
// service-fee marker.
func (t *BankTransaction) Type() string {
	if t.IsServiceFee {
		return TransactionTypeServiceFee
	}
	if t.CreditAmount.IsPositive() {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// Amount returns whichever side is populated.
func (t *BankTransaction) Amount() decimal.Decimal {
	if t.CreditAmount.IsPositive() {
		return t.CreditAmount
	}
	return t.DebitAmount
}

// ParsedTransaction is the immutable value emitted by the statement parser,
// before persistence or classification.
type ParsedTransaction struct {
	Type         string
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
	Reference    string
	Balance      decimal.Decimal
	IsServiceFee bool
}
