package services

import (
	"context"
	"testing"

	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStandardAccounts(t *testing.T) {
	env := newTestEnv(t)
	snap := env.snapshot(t)

	bank, ok := snap.ByCode("1100")
	require.True(t, ok)
	assert.Equal(t, "Bank", bank.Name)
	assert.Equal(t, models.NormalBalanceDebit, snap.NormalBalance(bank))

	sales, ok := snap.ByCode("4000")
	require.True(t, ok)
	assert.Equal(t, models.NormalBalanceCredit, snap.NormalBalance(sales))

	suspense, ok := snap.ByCode("5999")
	require.True(t, ok)
	assert.Equal(t, "Suspense", suspense.Name)

	// Seeding is idempotent: existing codes are skipped.
	require.NoError(t, env.coa.SeedStandardAccounts(context.Background(), env.company.ID))
	again := env.snapshot(t)
	assert.Equal(t, len(snap.All()), len(again.All()))
}

func TestSnapshotByPrefix(t *testing.T) {
	env := newTestEnv(t)
	snap := env.snapshot(t)

	expenses := snap.ByPrefix("5")
	require.NotEmpty(t, expenses)
	for _, account := range expenses {
		assert.Equal(t, byte('5'), account.Code[0])
	}

	assets := snap.ByPrefix("1")
	var codes []string
	for _, account := range assets {
		codes = append(codes, account.Code)
	}
	assert.Equal(t, []string{"1100", "1200", "1500"}, codes, "prefix listing keeps code order")
}

func TestCreateAccountValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.coa.CreateAccount(ctx, &models.AccountCreateRequest{
		CompanyID: env.company.ID, Name: "Nameless", CategoryID: 1,
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "missing code: got %v", err)

	existing := env.account(t, "1100")
	_, err = env.coa.CreateAccount(ctx, &models.AccountCreateRequest{
		CompanyID: env.company.ID, Code: "1100", Name: "Duplicate Bank", CategoryID: existing.CategoryID,
	})
	assert.True(t, utils.IsKind(err, utils.KindCodeConflict), "duplicate code: got %v", err)

	account, err := env.coa.CreateAccount(ctx, &models.AccountCreateRequest{
		CompanyID: env.company.ID, Code: "1100-1", Name: "Petty Cash", CategoryID: existing.CategoryID,
	})
	require.NoError(t, err)
	assert.True(t, account.IsActive)
}

func TestMarkInactiveKeepsAccountReadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.account(t, "5900")
	require.NoError(t, env.coa.MarkInactive(ctx, account.ID))

	reloaded := env.account(t, "5900")
	assert.False(t, reloaded.IsActive)

	snap := env.snapshot(t)
	_, ok := snap.ByCode("5900")
	assert.True(t, ok, "inactive accounts stay visible for historical reporting")
}
