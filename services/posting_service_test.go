package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostingService(env *testEnv) *PostingService {
	return NewPostingService(env.journalRepo, env.accountRepo)
}

func TestEntryReferenceFormat(t *testing.T) {
	assert.Equal(t, "BNK-00000042", EntryReference(42))
	assert.Equal(t, "BNK-00001000", EntryReference(1000))
}

func TestBuildEntryMoneyOut(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	txn := env.bankTxn(t, "SALARY PAYMENT MARCH", "800.00", "", false)

	entry, err := posting.BuildEntry(txn, env.snapshot(t), env.account(t, "5100").ID)
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)

	assert.Equal(t, env.account(t, "5100").ID, entry.Lines[0].AccountID)
	assert.True(t, entry.Lines[0].DebitAmount.Equal(amount("800.00")))
	assert.Equal(t, env.account(t, "1100").ID, entry.Lines[1].AccountID)
	assert.True(t, entry.Lines[1].CreditAmount.Equal(amount("800.00")))
	assert.Equal(t, EntryReference(txn.ID), entry.Reference)
	assert.Equal(t, "Salaries", entry.Description)
	assert.NoError(t, entry.Validate())
}

func TestBuildEntryMoneyIn(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	txn := env.bankTxn(t, "CUSTOMER DEPOSIT", "", "1500.00", false)

	entry, err := posting.BuildEntry(txn, env.snapshot(t), env.account(t, "4000").ID)
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)

	assert.Equal(t, env.account(t, "1100").ID, entry.Lines[0].AccountID, "money in debits the bank")
	assert.True(t, entry.Lines[0].DebitAmount.Equal(amount("1500.00")))
	assert.Equal(t, env.account(t, "4000").ID, entry.Lines[1].AccountID)
	assert.True(t, entry.Lines[1].CreditAmount.Equal(amount("1500.00")))
}

func TestBuildEntryServiceFee(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	txn := env.bankTxn(t, "SERVICE FEE", "35.00", "", true)

	entry, err := posting.BuildEntry(txn, env.snapshot(t), 0)
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)

	assert.Equal(t, env.account(t, "5200").ID, entry.Lines[0].AccountID, "service fee debits bank charges")
	assert.Equal(t, env.account(t, "1100").ID, entry.Lines[1].AccountID)
	assert.Equal(t, "Bank Charges", entry.Description)
}

func TestBuildEntryInactiveAccountRejected(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	txn := env.bankTxn(t, "SALARY PAYMENT", "800.00", "", false)

	salaries := env.account(t, "5100")
	require.NoError(t, env.coa.MarkInactive(context.Background(), salaries.ID))

	_, err := posting.BuildEntry(txn, env.snapshot(t), salaries.ID)
	assert.True(t, utils.IsKind(err, utils.KindInactiveAccount), "got %v", err)
}

func TestBuildEntryUnknownAccountRejected(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	txn := env.bankTxn(t, "SALARY PAYMENT", "800.00", "", false)

	_, err := posting.BuildEntry(txn, env.snapshot(t), 99999)
	assert.True(t, utils.IsKind(err, utils.KindUnknownAccount), "got %v", err)
}

func TestPostTransactionPersistsEntry(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	ctx := context.Background()
	txn := env.bankTxn(t, "SALARY PAYMENT MARCH", "800.00", "", false)

	entry, err := posting.PostTransaction(ctx, txn, env.snapshot(t), env.account(t, "5100").ID)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, models.EntryStatusPosted, entry.Status)

	entries, err := env.journalRepo.EntriesInPeriod(ctx, env.company.ID, env.period.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, EntryReference(txn.ID), entries[0].Reference)
}

func TestPostClosedPeriodRejected(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	ctx := context.Background()
	txn := env.bankTxn(t, "SALARY PAYMENT", "800.00", "", false)

	require.NoError(t, env.companyRepo.SetPeriodClosed(ctx, env.period.ID, true))

	_, err := posting.PostTransaction(ctx, txn, env.snapshot(t), env.account(t, "5100").ID)
	assert.True(t, utils.IsKind(err, utils.KindPeriodClosed), "got %v", err)
}

func TestConcurrentPostsToSamePeriod(t *testing.T) {
	env := newTestEnv(t)
	posting := newPostingService(env)
	ctx := context.Background()
	snap := env.snapshot(t)
	salaries := env.account(t, "5100").ID

	const workers = 8
	txns := make([]*models.BankTransaction, workers)
	for i := range txns {
		txns[i] = env.bankTxn(t, fmt.Sprintf("SALARY PAYMENT %d", i), "100.00", "", false)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = posting.PostTransaction(ctx, txns[i], snap, salaries)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	entries, err := env.journalRepo.EntriesInPeriod(ctx, env.company.ID, env.period.ID)
	require.NoError(t, err)
	require.Len(t, entries, workers)

	seen := make(map[string]bool)
	for _, entry := range entries {
		assert.False(t, seen[entry.Reference], "duplicate reference %s", entry.Reference)
		seen[entry.Reference] = true
		assert.True(t, entry.IsBalanced())
	}
}
