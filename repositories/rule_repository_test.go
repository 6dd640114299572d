package repositories

import (
	"context"
	"testing"

	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveEvaluationOrder(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "5100", "Salaries", models.AccountTypeExpense)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	// Created out of priority order; ties broken by insertion (id) order.
	mk := func(name string, priority int, active bool) {
		require.NoError(t, repo.Create(ctx, &models.TransactionMappingRule{
			CompanyID: company.ID, Name: name, MatchType: models.MatchTypeContains,
			MatchValue: name, AccountID: account.ID, Priority: priority, IsActive: active,
		}))
	}
	mk("second", 20, true)
	mk("first", 10, true)
	mk("tie-a", 20, true)
	mk("inactive", 5, false)

	rules, err := repo.ListActive(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "first", rules[0].Name)
	assert.Equal(t, "second", rules[1].Name, "priority tie resolves to the lower id")
	assert.Equal(t, "tie-a", rules[2].Name)
	require.NotNil(t, rules[0].Account)
	assert.Equal(t, "5100", rules[0].Account.Code)
}

func TestCreateRulePersistsZeroValues(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "5100", "Salaries", models.AccountTypeExpense)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	rule := &models.TransactionMappingRule{
		CompanyID: company.ID, Name: "parked", MatchType: models.MatchTypeContains,
		MatchValue: "PARKED", AccountID: account.ID, Priority: 0, IsActive: false,
	}
	require.NoError(t, repo.Create(ctx, rule))

	var reloaded models.TransactionMappingRule
	require.NoError(t, db.First(&reloaded, rule.ID).Error)
	assert.False(t, reloaded.IsActive, "inactive flag survives the insert")
	assert.Equal(t, 0, reloaded.Priority, "priority zero survives the insert")

	rules, err := repo.ListActive(ctx, company.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestCreateRuleInvalidMatchType(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	repo := NewRuleRepository(db)

	err := repo.Create(context.Background(), &models.TransactionMappingRule{
		CompanyID: company.ID, Name: "bad", MatchType: "FUZZY", MatchValue: "X", AccountID: 1,
	})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
}

func TestReplaceAllSwapsRuleSet(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "5100", "Salaries", models.AccountTypeExpense)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.TransactionMappingRule{
		CompanyID: company.ID, Name: "old", MatchType: models.MatchTypeContains,
		MatchValue: "OLD", AccountID: account.ID, Priority: 10, IsActive: true,
	}))

	replacement := []models.TransactionMappingRule{
		{Name: "new-a", MatchType: models.MatchTypeEquals, MatchValue: "A", AccountID: account.ID, Priority: 1, IsActive: true},
		{Name: "new-b", MatchType: models.MatchTypeContains, MatchValue: "B", AccountID: account.ID, Priority: 2, IsActive: true},
	}
	require.NoError(t, repo.ReplaceAll(ctx, company.ID, replacement))

	rules, err := repo.ListActive(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "new-a", rules[0].Name)
	assert.Equal(t, "new-b", rules[1].Name)
}

func TestReplaceAllInvalidRowLeavesExistingRules(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "5100", "Salaries", models.AccountTypeExpense)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.TransactionMappingRule{
		CompanyID: company.ID, Name: "keep", MatchType: models.MatchTypeContains,
		MatchValue: "KEEP", AccountID: account.ID, Priority: 10, IsActive: true,
	}))

	bad := []models.TransactionMappingRule{
		{Name: "broken", MatchType: "FUZZY", MatchValue: "X", AccountID: account.ID, IsActive: true},
	}
	err := repo.ReplaceAll(ctx, company.ID, bad)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)

	rules, err := repo.ListActive(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1, "failed replace must roll back the delete")
	assert.Equal(t, "keep", rules[0].Name)
}

func TestDeactivateRule(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db)
	account := seedAccount(t, db, company.ID, "5100", "Salaries", models.AccountTypeExpense)
	repo := NewRuleRepository(db)
	ctx := context.Background()

	rule := &models.TransactionMappingRule{
		CompanyID: company.ID, Name: "r", MatchType: models.MatchTypeContains,
		MatchValue: "R", AccountID: account.ID, Priority: 1, IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, rule))
	require.NoError(t, repo.Deactivate(ctx, rule.ID))

	rules, err := repo.ListActive(ctx, company.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
