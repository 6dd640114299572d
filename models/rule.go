package models

import (
	"time"

	"gorm.io/gorm"
)

// Match Types for transaction mapping rules
const (
	MatchTypeContains   = "CONTAINS"
	MatchTypeStartsWith = "STARTS_WITH"
	MatchTypeEndsWith   = "ENDS_WITH"
	MatchTypeEquals     = "EQUALS"
	MatchTypeRegex      = "REGEX"
)

// IsValidMatchType checks if the match type is one of the supported predicates.
func IsValidMatchType(matchType string) bool {
	switch matchType {
	case MatchTypeContains, MatchTypeStartsWith, MatchTypeEndsWith, MatchTypeEquals, MatchTypeRegex:
		return true
	}
	return false
}

// TransactionMappingRule maps a statement description to a target account.
// The rule set of a company is a priority-ordered sequence: lower priority
// value runs first, ties broken by lower id. Priority and IsActive carry no
// column default: GORM omits zero-valued fields with a default tag from the
// INSERT, which would store priority 0 as the default and an inactive rule
// as active.
type TransactionMappingRule struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CompanyID  uint           `json:"company_id" gorm:"not null;index"`
	Name       string         `json:"name" gorm:"not null;size:100"`
	MatchType  string         `json:"match_type" gorm:"not null;size:20"`
	MatchValue string         `json:"match_value" gorm:"not null;size:255"`
	AccountID  uint           `json:"account_id" gorm:"not null;index"`
	Priority   int            `json:"priority" gorm:"not null;index"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Company *Company `json:"-" gorm:"foreignKey:CompanyID"`
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// RuleImportRow is one line of the bulk rules CSV:
// ruleName,matchType,matchValue,accountCode,priority,active
type RuleImportRow struct {
	RuleName    string `validate:"required,max=100"`
	MatchType   string `validate:"required,oneof=CONTAINS STARTS_WITH ENDS_WITH EQUALS REGEX"`
	MatchValue  string `validate:"required,max=255"`
	AccountCode string `validate:"required,max=10"`
	Priority    int    `validate:"gte=0"`
	Active      bool
}
