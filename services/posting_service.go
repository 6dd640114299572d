package services

import (
	"context"
	"fmt"
	"sync"

	"app-fin-management/config"
	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/utils"
)

// PostingService converts classified bank transactions into balanced two-line
// journal entries and posts them to the journal store. Posts are linearizable
// per (company, fiscal period): a writer lock serialises concurrent posts to
// the same period while distinct periods interleave freely.
type PostingService struct {
	journalRepo repositories.JournalRepository
	accountRepo repositories.AccountRepository

	mu    sync.Mutex
	locks map[periodKey]*sync.Mutex
}

type periodKey struct {
	companyID uint
	periodID  uint
}

func NewPostingService(journalRepo repositories.JournalRepository, accountRepo repositories.AccountRepository) *PostingService {
	return &PostingService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		locks:       make(map[periodKey]*sync.Mutex),
	}
}

func (s *PostingService) periodLock(companyID, periodID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := periodKey{companyID, periodID}
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// EntryReference derives the deterministic journal reference for a bank
// transaction.
func EntryReference(bankTransactionID uint) string {
	return fmt.Sprintf("BNK-%08d", bankTransactionID)
}

// BuildEntry constructs the balanced entry for one classified transaction:
//   - credit transaction (money in): debit bank, credit the classified account
//   - debit transaction (money out): debit the classified account, credit bank
//   - service fee: debit bank charges, credit bank
//
// Entry date is the transaction date, the reference derives from the bank
// transaction id, and the description is the classified account's name.
func (s *PostingService) BuildEntry(txn *models.BankTransaction, coa *COASnapshot, classifiedAccountID uint) (*models.JournalEntry, error) {
	defaults := config.GetAccountingConfig().DefaultAccounts

	bank, ok := coa.ByCode(defaults.Bank)
	if !ok {
		return nil, utils.NewError(utils.KindUnknownAccount, "bank account %q is not configured", defaults.Bank)
	}

	var counterparty *models.Account
	if txn.IsServiceFee {
		charges, ok := coa.ByCode(defaults.BankCharges)
		if !ok {
			return nil, utils.NewError(utils.KindUnknownAccount,
				"bank charges account %q is not configured", defaults.BankCharges)
		}
		counterparty = charges
	} else {
		account, ok := coa.ByID(classifiedAccountID)
		if !ok {
			return nil, utils.NewError(utils.KindUnknownAccount,
				"classified account %d not in chart of accounts", classifiedAccountID)
		}
		counterparty = account
	}
	if !counterparty.IsActive {
		return nil, utils.NewError(utils.KindInactiveAccount, "account %q is inactive", counterparty.Code)
	}

	amount := utils.Round2(txn.Amount())
	if !amount.IsPositive() {
		return nil, utils.NewError(utils.KindUnbalanced, "transaction %d has no positive amount", txn.ID)
	}

	entry := &models.JournalEntry{
		CompanyID:      txn.CompanyID,
		FiscalPeriodID: txn.FiscalPeriodID,
		EntryDate:      txn.Date,
		Reference:      EntryReference(txn.ID),
		Description:    counterparty.Name,
		CreatedBy:      "statement-import",
	}

	moneyIn := txn.Type() == models.TransactionTypeCredit
	if moneyIn {
		entry.Lines = []models.JournalEntryLine{
			{LineNumber: 1, AccountID: bank.ID, Description: txn.Details, DebitAmount: amount},
			{LineNumber: 2, AccountID: counterparty.ID, Description: txn.Details, CreditAmount: amount},
		}
	} else {
		entry.Lines = []models.JournalEntryLine{
			{LineNumber: 1, AccountID: counterparty.ID, Description: txn.Details, DebitAmount: amount},
			{LineNumber: 2, AccountID: bank.ID, Description: txn.Details, CreditAmount: amount},
		}
	}
	return entry, nil
}

// Post validates and persists an entry under the period writer lock. A
// cancelled post either has not happened or has happened completely; the
// context is checked before the store write, never between entry and lines.
func (s *PostingService) Post(ctx context.Context, entry *models.JournalEntry) error {
	lock := s.periodLock(entry.CompanyID, entry.FiscalPeriodID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.journalRepo.Post(ctx, entry)
}

// PostTransaction builds and posts the entry for one classified bank
// transaction, returning the posted entry.
func (s *PostingService) PostTransaction(ctx context.Context, txn *models.BankTransaction, coa *COASnapshot, classifiedAccountID uint) (*models.JournalEntry, error) {
	entry, err := s.BuildEntry(txn, coa, classifiedAccountID)
	if err != nil {
		return nil, err
	}
	if err := s.Post(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
