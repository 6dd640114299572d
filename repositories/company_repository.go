package repositories

import (
	"context"
	"errors"
	"time"

	"app-fin-management/models"
	"app-fin-management/utils"

	"gorm.io/gorm"
)

// CompanyRepository manages companies and their fiscal periods.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	FindCompany(ctx context.Context, id uint) (*models.Company, error)
	CreateFiscalPeriod(ctx context.Context, period *models.FiscalPeriod) error
	FindFiscalPeriod(ctx context.Context, id uint) (*models.FiscalPeriod, error)
	FindFiscalPeriodByDate(ctx context.Context, companyID uint, date time.Time) (*models.FiscalPeriod, error)
	ListFiscalPeriods(ctx context.Context, companyID uint) ([]models.FiscalPeriod, error)
	SetPeriodClosed(ctx context.Context, periodID uint, closed bool) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return utils.WrapError(utils.KindInternal, err, "failed to create company")
	}
	return nil
}

func (r *companyRepository) FindCompany(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindNotFound, "company %d not found", id)
		}
		return nil, utils.WrapError(utils.KindInternal, err, "failed to load company %d", id)
	}
	return &company, nil
}

// CreateFiscalPeriod enforces start <= end and rejects any overlap with an
// existing period of the same company.
func (r *companyRepository) CreateFiscalPeriod(ctx context.Context, period *models.FiscalPeriod) error {
	if period.EndDate.Before(period.StartDate) {
		return utils.NewError(utils.KindValidation, "period %q: start date is after end date", period.Name)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&models.FiscalPeriod{}).
			Where("company_id = ? AND start_date <= ? AND end_date >= ?",
				period.CompanyID, period.EndDate, period.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to check period overlap")
		}
		if overlapping > 0 {
			return utils.NewError(utils.KindPeriodOverlap,
				"period %q overlaps an existing fiscal period", period.Name)
		}
		if err := tx.Create(period).Error; err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to create fiscal period")
		}
		return nil
	})
}

func (r *companyRepository) FindFiscalPeriod(ctx context.Context, id uint) (*models.FiscalPeriod, error) {
	var period models.FiscalPeriod
	if err := r.db.WithContext(ctx).First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindNotFound, "fiscal period %d not found", id)
		}
		return nil, utils.WrapError(utils.KindInternal, err, "failed to load fiscal period %d", id)
	}
	return &period, nil
}

func (r *companyRepository) FindFiscalPeriodByDate(ctx context.Context, companyID uint, date time.Time) (*models.FiscalPeriod, error) {
	var period models.FiscalPeriod
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND start_date <= ? AND end_date >= ?", companyID, date, date).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindNotFound,
				"no fiscal period of company %d contains %s", companyID, date.Format("2006-01-02"))
		}
		return nil, utils.WrapError(utils.KindInternal, err, "failed to resolve fiscal period by date")
	}
	return &period, nil
}

func (r *companyRepository) ListFiscalPeriods(ctx context.Context, companyID uint) ([]models.FiscalPeriod, error) {
	var periods []models.FiscalPeriod
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("start_date asc").
		Find(&periods).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list fiscal periods")
	}
	return periods, nil
}

func (r *companyRepository) SetPeriodClosed(ctx context.Context, periodID uint, closed bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.FiscalPeriod{}).
		Where("id = ?", periodID).
		Update("is_closed", closed)
	if result.Error != nil {
		return utils.WrapError(utils.KindInternal, result.Error, "failed to update fiscal period %d", periodID)
	}
	if result.RowsAffected == 0 {
		return utils.NewError(utils.KindNotFound, "fiscal period %d not found", periodID)
	}
	return nil
}
