package services

import (
	"context"

	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// COAService exposes the chart of accounts: code lookup, prefix listing and
// normal-balance classification. Request paths load an immutable snapshot so
// configuration edits only take effect on the next request.
type COAService struct {
	accountRepo repositories.AccountRepository
	validate    *validator.Validate
}

func NewCOAService(accountRepo repositories.AccountRepository) *COAService {
	return &COAService{
		accountRepo: accountRepo,
		validate:    validator.New(),
	}
}

// COASnapshot is a point-in-time, read-only view of a company's chart of
// accounts with O(1) lookup by code. Safe for concurrent use.
type COASnapshot struct {
	accounts []models.Account
	byCode   map[string]*models.Account
	byID     map[uint]*models.Account
}

// Snapshot loads the company's full chart of accounts.
func (s *COAService) Snapshot(ctx context.Context, companyID uint) (*COASnapshot, error) {
	accounts, err := s.accountRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snap := &COASnapshot{
		accounts: accounts,
		byCode:   make(map[string]*models.Account, len(accounts)),
		byID:     make(map[uint]*models.Account, len(accounts)),
	}
	for i := range accounts {
		snap.byCode[accounts[i].Code] = &accounts[i]
		snap.byID[accounts[i].ID] = &accounts[i]
	}
	return snap, nil
}

// ByCode looks up an account by its chart code.
func (s *COASnapshot) ByCode(code string) (*models.Account, bool) {
	account, ok := s.byCode[code]
	return account, ok
}

// ByID looks up an account by primary key.
func (s *COASnapshot) ByID(id uint) (*models.Account, bool) {
	account, ok := s.byID[id]
	return account, ok
}

// All returns every account in code order.
func (s *COASnapshot) All() []models.Account {
	return s.accounts
}

// ByPrefix returns accounts whose code starts with prefix, in code order.
func (s *COASnapshot) ByPrefix(prefix string) []models.Account {
	var out []models.Account
	for _, account := range s.accounts {
		if len(account.Code) >= len(prefix) && account.Code[:len(prefix)] == prefix {
			out = append(out, account)
		}
	}
	return out
}

// NormalBalance classifies the sign convention of an account.
func (s *COASnapshot) NormalBalance(account *models.Account) models.NormalBalanceType {
	return account.NormalBalance()
}

// CreateAccount validates and stores a new account; a duplicate code within
// the company surfaces as CodeConflict.
func (s *COAService) CreateAccount(ctx context.Context, req *models.AccountCreateRequest) (*models.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, utils.WrapError(utils.KindValidation, err, "invalid account request")
	}
	account := &models.Account{
		CompanyID:  req.CompanyID,
		Code:       req.Code,
		Name:       req.Name,
		CategoryID: req.CategoryID,
		ParentID:   req.ParentID,
		IsActive:   true,
	}
	if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// MarkInactive deactivates an account. Inactive accounts stay readable for
// historical reporting but are rejected for new postings.
func (s *COAService) MarkInactive(ctx context.Context, accountID uint) error {
	return s.accountRepo.SetActive(ctx, accountID, false)
}

type seedAccount struct {
	code     string
	name     string
	category string
}

// standardAccounts is the default chart seeded for a new company. The code
// families follow the reporting conventions: 1 assets, 2 liabilities,
// 3 equity, 4 revenue, 5 expenses. Suspense sits inside the expense family
// so its activity flows into the income statement and the balance sheet's
// profit figure.
var standardAccounts = []seedAccount{
	{"1100", "Bank", "Current Assets"},
	{"1200", "Accounts Receivable", "Current Assets"},
	{"1500", "Equipment", "Fixed Assets"},
	{"2100", "Accounts Payable", "Current Liabilities"},
	{"2200", "VAT Payable", "Current Liabilities"},
	{"3000", "Share Capital", "Equity"},
	{"3100", "Retained Earnings", "Equity"},
	{"4000", "Sales", "Operating Revenue"},
	{"4100", "Service Revenue", "Operating Revenue"},
	{"4900", "Other Income", "Other Revenue"},
	{"5100", "Salaries", "Operating Expenses"},
	{"5200", "Bank Charges", "Operating Expenses"},
	{"5300", "Taxes Paid", "Operating Expenses"},
	{"5400", "Rent", "Operating Expenses"},
	{"5900", "Sundry Expenses", "Operating Expenses"},
	{"5999", "Suspense", "Other Expenses"},
}

var standardCategories = map[string]string{
	"Current Assets":      models.AccountTypeAsset,
	"Fixed Assets":        models.AccountTypeAsset,
	"Current Liabilities": models.AccountTypeLiability,
	"Equity":              models.AccountTypeEquity,
	"Operating Revenue":   models.AccountTypeRevenue,
	"Other Revenue":       models.AccountTypeRevenue,
	"Operating Expenses":  models.AccountTypeExpense,
	"Other Expenses":      models.AccountTypeExpense,
}

// SeedStandardAccounts creates the default categories and accounts for a
// company. Existing codes are left untouched.
func (s *COAService) SeedStandardAccounts(ctx context.Context, companyID uint) error {
	categoryIDs := make(map[string]uint, len(standardCategories))
	for name, accountType := range standardCategories {
		category := &models.AccountCategory{CompanyID: companyID, Name: name, Type: accountType}
		if err := s.accountRepo.CreateCategory(ctx, category); err != nil {
			return err
		}
		categoryIDs[name] = category.ID
	}

	for _, seed := range standardAccounts {
		account := &models.Account{
			CompanyID:  companyID,
			Code:       seed.code,
			Name:       seed.name,
			CategoryID: categoryIDs[seed.category],
			IsActive:   true,
		}
		if err := s.accountRepo.CreateAccount(ctx, account); err != nil {
			if utils.IsKind(err, utils.KindCodeConflict) {
				logrus.WithField("code", seed.code).Debug("account already seeded, skipping")
				continue
			}
			return err
		}
	}
	return nil
}
