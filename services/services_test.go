package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"app-fin-management/database"
	"app-fin-management/models"
	"app-fin-management/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testEnv carries a seeded company with the standard chart of accounts and a
// single open March 2026 fiscal period.
type testEnv struct {
	db          *gorm.DB
	company     *models.Company
	period      *models.FiscalPeriod
	companyRepo repositories.CompanyRepository
	accountRepo repositories.AccountRepository
	ruleRepo    repositories.RuleRepository
	bankTxnRepo repositories.BankTransactionRepository
	journalRepo repositories.JournalRepository
	coa         *COAService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Acme Trading"}
	require.NoError(t, db.Create(company).Error)

	period := &models.FiscalPeriod{
		CompanyID: company.ID,
		Name:      "FY2026-03",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(period).Error)

	env := &testEnv{
		db:          db,
		company:     company,
		period:      period,
		companyRepo: repositories.NewCompanyRepository(db),
		accountRepo: repositories.NewAccountRepository(db),
		ruleRepo:    repositories.NewRuleRepository(db),
		bankTxnRepo: repositories.NewBankTransactionRepository(db),
		journalRepo: repositories.NewJournalRepository(db),
	}
	env.coa = NewCOAService(env.accountRepo)
	require.NoError(t, env.coa.SeedStandardAccounts(ctx, company.ID))
	return env
}

func (e *testEnv) account(t *testing.T, code string) *models.Account {
	t.Helper()
	account, err := e.accountRepo.FindByCode(context.Background(), e.company.ID, code)
	require.NoError(t, err)
	return account
}

func (e *testEnv) snapshot(t *testing.T) *COASnapshot {
	t.Helper()
	snap, err := e.coa.Snapshot(context.Background(), e.company.ID)
	require.NoError(t, err)
	return snap
}

func (e *testEnv) addRule(t *testing.T, name, matchType, value, accountCode string, priority int) *models.TransactionMappingRule {
	t.Helper()
	rule := &models.TransactionMappingRule{
		CompanyID:  e.company.ID,
		Name:       name,
		MatchType:  matchType,
		MatchValue: value,
		AccountID:  e.account(t, accountCode).ID,
		Priority:   priority,
		IsActive:   true,
	}
	require.NoError(t, e.ruleRepo.Create(context.Background(), rule))
	return rule
}

func (e *testEnv) bankTxn(t *testing.T, details string, debit, credit string, serviceFee bool) *models.BankTransaction {
	t.Helper()
	txn := &models.BankTransaction{
		CompanyID:      e.company.ID,
		FiscalPeriodID: e.period.ID,
		Date:           time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Details:        details,
		IsServiceFee:   serviceFee,
		Classification: models.ClassificationUnclassified,
	}
	if debit != "" {
		txn.DebitAmount = amount(debit)
	}
	if credit != "" {
		txn.CreditAmount = amount(credit)
	}
	require.NoError(t, e.bankTxnRepo.Create(context.Background(), txn))
	return txn
}
