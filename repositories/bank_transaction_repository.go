package repositories

import (
	"context"

	"app-fin-management/models"
	"app-fin-management/utils"

	"gorm.io/gorm"
)

// BankTransactionRepository stores imported statement lines. Transactions are
// append-only; only the classification back-references are updated afterwards.
type BankTransactionRepository interface {
	Create(ctx context.Context, txn *models.BankTransaction) error
	UpdateClassification(ctx context.Context, txn *models.BankTransaction) error
	ListByPeriod(ctx context.Context, companyID, periodID uint) ([]models.BankTransaction, error)
	ListUnclassified(ctx context.Context, companyID, periodID uint) ([]models.BankTransaction, error)
}

type bankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) BankTransactionRepository {
	return &bankTransactionRepository{db: db}
}

func (r *bankTransactionRepository) Create(ctx context.Context, txn *models.BankTransaction) error {
	debitSet := txn.DebitAmount.IsPositive()
	creditSet := txn.CreditAmount.IsPositive()
	if debitSet == creditSet {
		return utils.NewError(utils.KindValidation,
			"bank transaction %q: exactly one of debit/credit must be set", txn.Details)
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return utils.WrapError(utils.KindInternal, err, "failed to store bank transaction")
	}
	return nil
}

func (r *bankTransactionRepository) UpdateClassification(ctx context.Context, txn *models.BankTransaction) error {
	err := r.db.WithContext(ctx).
		Model(&models.BankTransaction{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"classification":    txn.Classification,
			"matched_rule_id":   txn.MatchedRuleID,
			"target_account_id": txn.TargetAccountID,
			"journal_entry_id":  txn.JournalEntryID,
		}).Error
	if err != nil {
		return utils.WrapError(utils.KindInternal, err, "failed to update classification of transaction %d", txn.ID)
	}
	return nil
}

func (r *bankTransactionRepository) ListByPeriod(ctx context.Context, companyID, periodID uint) ([]models.BankTransaction, error) {
	var txns []models.BankTransaction
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND fiscal_period_id = ?", companyID, periodID).
		Order("date asc, id asc").
		Find(&txns).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list bank transactions")
	}
	return txns, nil
}

func (r *bankTransactionRepository) ListUnclassified(ctx context.Context, companyID, periodID uint) ([]models.BankTransaction, error) {
	var txns []models.BankTransaction
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND fiscal_period_id = ? AND classification = ?",
			companyID, periodID, models.ClassificationUnclassified).
		Order("date asc, id asc").
		Find(&txns).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list unclassified transactions")
	}
	return txns, nil
}
