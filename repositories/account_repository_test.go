package repositories

import (
	"context"
	"testing"

	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountDuplicateCode(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	category := &models.AccountCategory{CompanyID: company.ID, Name: "Current Assets", Type: models.AccountTypeAsset}
	require.NoError(t, repo.CreateCategory(ctx, category))

	first := &models.Account{CompanyID: company.ID, Code: "1100", Name: "Bank", CategoryID: category.ID, IsActive: true}
	require.NoError(t, repo.CreateAccount(ctx, first))

	dup := &models.Account{CompanyID: company.ID, Code: "1100", Name: "Second Bank", CategoryID: category.ID, IsActive: true}
	err := repo.CreateAccount(ctx, dup)
	assert.True(t, utils.IsKind(err, utils.KindCodeConflict), "got %v", err)
}

func TestCreateAccountSameCodeOtherCompany(t *testing.T) {
	db := newTestDB(t)
	companyA := seedCompany(t, db)
	companyB := seedCompany(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seedAccount(t, db, companyA.ID, "1100", "Bank", models.AccountTypeAsset)

	category := &models.AccountCategory{CompanyID: companyB.ID, Name: "Current Assets", Type: models.AccountTypeAsset}
	require.NoError(t, repo.CreateCategory(ctx, category))
	account := &models.Account{CompanyID: companyB.ID, Code: "1100", Name: "Bank", CategoryID: category.ID, IsActive: true}
	assert.NoError(t, repo.CreateAccount(ctx, account))
}

func TestCreateAccountInvalidCode(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	repo := NewAccountRepository(db)

	account := &models.Account{CompanyID: company.ID, Code: "11", Name: "Bank", CategoryID: 1}
	err := repo.CreateAccount(context.Background(), account)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
}

func TestCreateCategoryInvalidType(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	repo := NewAccountRepository(db)

	category := &models.AccountCategory{CompanyID: company.ID, Name: "Misc", Type: "WEIRD"}
	err := repo.CreateCategory(context.Background(), category)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
}

func TestFindByCode(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	seedAccount(t, db, company.ID, "5200", "Bank Charges", models.AccountTypeExpense)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account, err := repo.FindByCode(ctx, company.ID, "5200")
	require.NoError(t, err)
	assert.Equal(t, "Bank Charges", account.Name)
	require.NotNil(t, account.Category)
	assert.Equal(t, models.AccountTypeExpense, account.Type())

	_, err = repo.FindByCode(ctx, company.ID, "9999")
	assert.True(t, utils.IsKind(err, utils.KindUnknownAccount), "got %v", err)
}

func TestListByCodePrefix(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	seedAccount(t, db, company.ID, "1100", "Bank", models.AccountTypeAsset)
	seedAccount(t, db, company.ID, "1200", "Accounts Receivable", models.AccountTypeAsset)
	seedAccount(t, db, company.ID, "4000", "Sales", models.AccountTypeRevenue)
	repo := NewAccountRepository(db)

	accounts, err := repo.ListByCodePrefix(context.Background(), company.ID, "1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "1100", accounts[0].Code)
	assert.Equal(t, "1200", accounts[1].Code)
}

func TestSetActive(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "4000", "Sales", models.AccountTypeRevenue)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetActive(ctx, account.ID, false))
	reloaded, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	err = repo.SetActive(ctx, 9999, false)
	assert.True(t, utils.IsKind(err, utils.KindUnknownAccount), "got %v", err)
}
