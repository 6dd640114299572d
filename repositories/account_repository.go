package repositories

import (
	"context"
	"errors"

	"app-fin-management/models"
	"app-fin-management/utils"

	"gorm.io/gorm"
)

// AccountRepository is the chart-of-accounts data access layer.
type AccountRepository interface {
	CreateCategory(ctx context.Context, category *models.AccountCategory) error
	CreateAccount(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	FindByCode(ctx context.Context, companyID uint, code string) (*models.Account, error)
	ListByCompany(ctx context.Context, companyID uint) ([]models.Account, error)
	ListByCodePrefix(ctx context.Context, companyID uint, prefix string) ([]models.Account, error)
	SetActive(ctx context.Context, accountID uint, active bool) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateCategory(ctx context.Context, category *models.AccountCategory) error {
	if !models.IsValidAccountType(category.Type) {
		return utils.NewError(utils.KindValidation, "invalid account type %q", category.Type)
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return utils.WrapError(utils.KindInternal, err, "failed to create category %q", category.Name)
	}
	return nil
}

// CreateAccount validates the code format and surfaces duplicate codes per
// company as a CodeConflict configuration error.
func (r *accountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if !models.IsValidAccountCode(account.Code) {
		return utils.NewError(utils.KindValidation, "invalid account code %q", account.Code)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.Account{}).
			Where("company_id = ? AND code = ?", account.CompanyID, account.Code).
			Count(&existing).Error
		if err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to check code uniqueness")
		}
		if existing > 0 {
			return utils.NewError(utils.KindCodeConflict,
				"account code %q already exists for company %d", account.Code, account.CompanyID)
		}
		if err := tx.Create(account).Error; err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to create account %q", account.Code)
		}
		return nil
	})
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Preload("Category").First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindUnknownAccount, "account %d not found", id)
		}
		return nil, utils.WrapError(utils.KindInternal, err, "failed to load account %d", id)
	}
	return &account, nil
}

func (r *accountRepository) FindByCode(ctx context.Context, companyID uint, code string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Preload("Category").
		Where("company_id = ? AND code = ?", companyID, code).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.KindUnknownAccount,
				"account code %q not found for company %d", code, companyID)
		}
		return nil, utils.WrapError(utils.KindInternal, err, "failed to load account %q", code)
	}
	return &account, nil
}

func (r *accountRepository) ListByCompany(ctx context.Context, companyID uint) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).Preload("Category").
		Where("company_id = ?", companyID).
		Order("code asc").
		Find(&accounts).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list accounts")
	}
	return accounts, nil
}

// ListByCodePrefix serves the reports: prefix "1" selects the cash/bank and
// asset family, "4" revenue, "5" expenses, and so on.
func (r *accountRepository) ListByCodePrefix(ctx context.Context, companyID uint, prefix string) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).Preload("Category").
		Where("company_id = ? AND code LIKE ?", companyID, prefix+"%").
		Order("code asc").
		Find(&accounts).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list accounts by prefix %q", prefix)
	}
	return accounts, nil
}

func (r *accountRepository) SetActive(ctx context.Context, accountID uint, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("is_active", active)
	if result.Error != nil {
		return utils.WrapError(utils.KindInternal, result.Error, "failed to update account %d", accountID)
	}
	if result.RowsAffected == 0 {
		return utils.NewError(utils.KindUnknownAccount, "account %d not found", accountID)
	}
	return nil
}
