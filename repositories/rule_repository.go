package repositories

import (
	"context"

	"app-fin-management/models"
	"app-fin-management/utils"

	"gorm.io/gorm"
)

// RuleRepository manages the transaction mapping rule set of a company.
type RuleRepository interface {
	ListActive(ctx context.Context, companyID uint) ([]models.TransactionMappingRule, error)
	Create(ctx context.Context, rule *models.TransactionMappingRule) error
	Deactivate(ctx context.Context, ruleID uint) error
	ReplaceAll(ctx context.Context, companyID uint, rules []models.TransactionMappingRule) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// ListActive returns the active rule set in evaluation order: priority
// ascending, ties broken by lower id. The order is part of the contract.
func (r *ruleRepository) ListActive(ctx context.Context, companyID uint) ([]models.TransactionMappingRule, error) {
	var rules []models.TransactionMappingRule
	err := r.db.WithContext(ctx).Preload("Account").
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("priority asc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list rules for company %d", companyID)
	}
	return rules, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.TransactionMappingRule) error {
	if !models.IsValidMatchType(rule.MatchType) {
		return utils.NewError(utils.KindValidation, "invalid match type %q", rule.MatchType)
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return utils.WrapError(utils.KindInternal, err, "failed to create rule %q", rule.Name)
	}
	return nil
}

// Deactivate marks a rule inactive, used when its regex fails to compile.
func (r *ruleRepository) Deactivate(ctx context.Context, ruleID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionMappingRule{}).
		Where("id = ?", ruleID).
		Update("is_active", false)
	if result.Error != nil {
		return utils.WrapError(utils.KindInternal, result.Error, "failed to deactivate rule %d", ruleID)
	}
	if result.RowsAffected == 0 {
		return utils.NewError(utils.KindNotFound, "rule %d not found", ruleID)
	}
	return nil
}

// ReplaceAll atomically swaps the entire rule set of a company, used by the
// bulk CSV import.
func (r *ruleRepository) ReplaceAll(ctx context.Context, companyID uint, rules []models.TransactionMappingRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).Delete(&models.TransactionMappingRule{}).Error; err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to clear rules for company %d", companyID)
		}
		for i := range rules {
			rules[i].CompanyID = companyID
			if !models.IsValidMatchType(rules[i].MatchType) {
				return utils.NewError(utils.KindValidation, "rule %q: invalid match type %q",
					rules[i].Name, rules[i].MatchType)
			}
		}
		if len(rules) == 0 {
			return nil
		}
		if err := tx.Create(&rules).Error; err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to insert %d rules", len(rules))
		}
		return nil
	})
}
