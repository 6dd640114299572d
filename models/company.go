package models

import (
	"time"

	"gorm.io/gorm"
)

// Company owns every other record by containment; deleting a company cascades
// to its periods, accounts, rules, transactions and journal entries.
type Company struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"not null;size:150"`
	RegistrationNumber string         `json:"registration_number" gorm:"size:50"`
	TaxNumber          string         `json:"tax_number" gorm:"size:50"`
	Currency           string         `json:"currency" gorm:"size:10;default:'ZAR'"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	FiscalPeriods []FiscalPeriod `json:"fiscal_periods,omitempty" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Accounts      []Account      `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// FiscalPeriod is a posting window. Periods of one company never overlap and a
// closed period rejects all new postings.
type FiscalPeriod struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null;size:50"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	IsClosed  bool      `json:"is_closed" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company *Company `json:"-" gorm:"foreignKey:CompanyID"`
}

// Contains reports whether date falls inside the period (inclusive bounds).
func (p *FiscalPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}

// Overlaps reports whether two date windows intersect.
func (p *FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !p.EndDate.Before(start) && !p.StartDate.After(end)
}

type FiscalPeriodCreateRequest struct {
	CompanyID uint      `json:"company_id" validate:"required"`
	Name      string    `json:"name" validate:"required,max=50"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}
