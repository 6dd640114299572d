package repositories

import (
	"context"
	"errors"

	"app-fin-management/models"
	"app-fin-management/utils"

	"gorm.io/gorm"
)

// JournalRepository is the append-only journal store. An entry is persisted
// iff it is balanced, its period is open and every line targets a known
// active account; the whole entry+lines write is one database transaction, so
// a partially written unbalanced entry is never observable.
type JournalRepository interface {
	Post(ctx context.Context, entry *models.JournalEntry) error
	LinesForAccount(ctx context.Context, companyID, periodID, accountID uint) ([]models.JournalEntryLine, error)
	EntriesInPeriod(ctx context.Context, companyID, periodID uint) ([]models.JournalEntry, error)
	EntriesPaged(ctx context.Context, companyID, periodID uint, filter models.AuditTrailFilter) ([]models.JournalEntry, int64, error)
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

// Post validates and persists the entry atomically. Order of checks mirrors
// the error policy: balance first, then period state, then accounts.
func (r *journalRepository) Post(ctx context.Context, entry *models.JournalEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var period models.FiscalPeriod
		if err := tx.First(&period, entry.FiscalPeriodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewError(utils.KindNotFound, "fiscal period %d not found", entry.FiscalPeriodID)
			}
			return utils.WrapError(utils.KindInternal, err, "failed to load fiscal period")
		}
		if period.IsClosed {
			return utils.NewError(utils.KindPeriodClosed,
				"fiscal period %q is closed", period.Name)
		}

		for i := range entry.Lines {
			var account models.Account
			if err := tx.First(&account, entry.Lines[i].AccountID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NewError(utils.KindUnknownAccount,
						"line %d: account %d not found", entry.Lines[i].LineNumber, entry.Lines[i].AccountID)
				}
				return utils.WrapError(utils.KindInternal, err, "failed to load account")
			}
			if account.CompanyID != entry.CompanyID {
				return utils.NewError(utils.KindUnknownAccount,
					"line %d: account %q belongs to another company", entry.Lines[i].LineNumber, account.Code)
			}
			if !account.IsActive {
				return utils.NewError(utils.KindInactiveAccount,
					"line %d: account %q is inactive", entry.Lines[i].LineNumber, account.Code)
			}
		}

		entry.Status = models.EntryStatusPosted
		if err := tx.Create(entry).Error; err != nil {
			return utils.WrapError(utils.KindInternal, err, "failed to persist journal entry %q", entry.Reference)
		}
		return nil
	})
}

// LinesForAccount returns the account's lines ordered by (entry date, entry
// id, line number); the running-balance computation depends on this order.
func (r *journalRepository) LinesForAccount(ctx context.Context, companyID, periodID, accountID uint) ([]models.JournalEntryLine, error) {
	var lines []models.JournalEntryLine
	err := r.db.WithContext(ctx).
		Joins("JOIN journal_entries ON journal_entries.id = journal_entry_lines.journal_entry_id").
		Where("journal_entries.company_id = ? AND journal_entries.fiscal_period_id = ? AND journal_entry_lines.account_id = ?",
			companyID, periodID, accountID).
		Where("journal_entries.deleted_at IS NULL").
		Order("journal_entries.entry_date asc, journal_entries.id asc, journal_entry_lines.line_number asc").
		Find(&lines).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list lines for account %d", accountID)
	}
	return lines, nil
}

func (r *journalRepository) EntriesInPeriod(ctx context.Context, companyID, periodID uint) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("journal_entry_lines.line_number asc")
		}).
		Preload("Lines.Account").
		Preload("Lines.Account.Category").
		Where("company_id = ? AND fiscal_period_id = ?", companyID, periodID).
		Order("entry_date asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to list entries in period %d", periodID)
	}
	return entries, nil
}

// EntriesPaged applies the audit-trail filters with a deterministic order and
// returns the page plus the unpaged count.
func (r *journalRepository) EntriesPaged(ctx context.Context, companyID, periodID uint, filter models.AuditTrailFilter) ([]models.JournalEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("company_id = ? AND fiscal_period_id = ?", companyID, periodID)

	if filter.DateFrom != nil {
		query = query.Where("entry_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("entry_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("description LIKE ? OR reference LIKE ?", like, like)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(utils.KindInternal, err, "failed to count journal entries")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 50
	}

	var entries []models.JournalEntry
	err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("journal_entry_lines.line_number asc")
		}).
		Preload("Lines.Account").
		Order("entry_date asc, id asc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&entries).Error
	if err != nil {
		return nil, 0, utils.WrapError(utils.KindInternal, err, "failed to page journal entries")
	}
	return entries, count, nil
}
