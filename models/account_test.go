package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalBalanceFor(t *testing.T) {
	assert.Equal(t, NormalBalanceDebit, NormalBalanceFor(AccountTypeAsset))
	assert.Equal(t, NormalBalanceDebit, NormalBalanceFor(AccountTypeExpense))
	assert.Equal(t, NormalBalanceCredit, NormalBalanceFor(AccountTypeLiability))
	assert.Equal(t, NormalBalanceCredit, NormalBalanceFor(AccountTypeEquity))
	assert.Equal(t, NormalBalanceCredit, NormalBalanceFor(AccountTypeRevenue))
}

func TestIsValidAccountCode(t *testing.T) {
	valid := []string{"1100", "8999", "1100-1", "5200-99", "4000-100"}
	for _, code := range valid {
		assert.True(t, IsValidAccountCode(code), code)
	}

	invalid := []string{"", "110", "11000", "abcd", "1100-", "1100-1234", "1100-x", "-1100"}
	for _, code := range invalid {
		assert.False(t, IsValidAccountCode(code), code)
	}
}

func TestAccountNormalBalanceViaCategory(t *testing.T) {
	account := &Account{
		Code:     "4000",
		Name:     "Sales",
		Category: &AccountCategory{Name: "Operating Revenue", Type: AccountTypeRevenue},
	}
	assert.Equal(t, AccountTypeRevenue, account.Type())
	assert.Equal(t, NormalBalanceCredit, account.NormalBalance())
}

func TestAccountWithoutCategoryDefaultsToDebit(t *testing.T) {
	account := &Account{Code: "1100"}
	assert.Equal(t, "", account.Type())
	assert.Equal(t, NormalBalanceDebit, account.NormalBalance())
}

func TestIsValidMatchType(t *testing.T) {
	for _, mt := range []string{MatchTypeContains, MatchTypeStartsWith, MatchTypeEndsWith, MatchTypeEquals, MatchTypeRegex} {
		assert.True(t, IsValidMatchType(mt), mt)
	}
	assert.False(t, IsValidMatchType("FUZZY"))
	assert.False(t, IsValidMatchType("contains"))
}
