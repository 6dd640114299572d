package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account Types
const (
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeRevenue   = "REVENUE"
	AccountTypeExpense   = "EXPENSE"
)

// NormalBalanceType is the side on which an account's balance is expected to
// be positive.
type NormalBalanceType string

const (
	NormalBalanceDebit  NormalBalanceType = "DEBIT"  // Assets, Expenses
	NormalBalanceCredit NormalBalanceType = "CREDIT" // Liabilities, Equity, Revenue
)

// IsValidAccountType checks if account type is valid
func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalanceFor resolves the normal balance for an account type.
func NormalBalanceFor(accountType string) NormalBalanceType {
	switch accountType {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return NormalBalanceCredit
	default:
		return NormalBalanceDebit
	}
}

// AccountCategory groups accounts within a type, e.g. "Current Assets".
type AccountCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Type      string    `json:"type" gorm:"not null;size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company *Company `json:"-" gorm:"foreignKey:CompanyID"`
}

// NormalBalance returns the normal balance implied by the category's type.
func (c *AccountCategory) NormalBalance() NormalBalanceType {
	return NormalBalanceFor(c.Type)
}

// accountCodePattern: four digits plus an optional dashed sub-code.
var accountCodePattern = regexp.MustCompile(`^[0-9]{4}(-[0-9]{1,3})?$`)

// IsValidAccountCode validates the chart-of-accounts code format.
func IsValidAccountCode(code string) bool {
	return accountCodePattern.MatchString(code)
}

// Account is a node in the chart of accounts. The code is unique per company;
// the category determines the account's normal balance.
type Account struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CompanyID  uint           `json:"company_id" gorm:"not null;uniqueIndex:idx_accounts_company_code"`
	Code       string         `json:"code" gorm:"not null;size:10;uniqueIndex:idx_accounts_company_code"`
	Name       string         `json:"name" gorm:"not null;size:100"`
	CategoryID uint           `json:"category_id" gorm:"not null;index"`
	ParentID   *uint          `json:"parent_id" gorm:"index"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Company  *Company         `json:"-" gorm:"foreignKey:CompanyID"`
	Category *AccountCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Parent   *Account         `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

// Type returns the account type via its category, or "" when not preloaded.
func (a *Account) Type() string {
	if a.Category == nil {
		return ""
	}
	return a.Category.Type
}

// NormalBalance returns the normal balance for the account.
func (a *Account) NormalBalance() NormalBalanceType {
	return NormalBalanceFor(a.Type())
}

type AccountCreateRequest struct {
	CompanyID  uint   `json:"company_id" validate:"required"`
	Code       string `json:"code" validate:"required,max=10"`
	Name       string `json:"name" validate:"required,max=100"`
	CategoryID uint   `json:"category_id" validate:"required"`
	ParentID   *uint  `json:"parent_id"`
}

// AccountBalance is derived, never stored: closing = opening +/- period
// activity depending on the account's normal balance.
type AccountBalance struct {
	AccountID     uint            `json:"account_id"`
	AccountCode   string          `json:"account_code"`
	AccountName   string          `json:"account_name"`
	Opening       decimal.Decimal `json:"opening"`
	PeriodDebits  decimal.Decimal `json:"period_debits"`
	PeriodCredits decimal.Decimal `json:"period_credits"`
	Closing       decimal.Decimal `json:"closing"`
}
