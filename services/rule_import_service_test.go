package services

import (
	"context"
	"strings"
	"testing"

	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuleImporter(env *testEnv) *RuleImportService {
	return NewRuleImportService(env.ruleRepo, env.accountRepo)
}

func TestImportRulesCSV(t *testing.T) {
	env := newTestEnv(t)
	importer := newRuleImporter(env)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"ruleName,matchType,matchValue,accountCode,priority,active",
		"salary,CONTAINS,SALARY,5100,10,true",
		"rent,STARTS_WITH,RENT,5400,20,true",
		"legacy,EQUALS,OLD VENDOR,5900,30,false",
	}, "\n")

	count, err := importer.ImportCSV(ctx, env.company.ID, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	active, err := env.ruleRepo.ListActive(ctx, env.company.ID)
	require.NoError(t, err)
	require.Len(t, active, 2, "inactive rows import but do not evaluate")
	assert.Equal(t, "salary", active[0].Name)
	assert.Equal(t, env.account(t, "5100").ID, active[0].AccountID)
	assert.Equal(t, "rent", active[1].Name)
}

func TestImportRulesCSVWithoutHeader(t *testing.T) {
	env := newTestEnv(t)
	importer := newRuleImporter(env)

	count, err := importer.ImportCSV(context.Background(), env.company.ID,
		strings.NewReader("salary,CONTAINS,SALARY,5100,10,true\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportRulesCSVReplacesExistingSet(t *testing.T) {
	env := newTestEnv(t)
	env.addRule(t, "old", models.MatchTypeContains, "OLD", "5900", 5)
	importer := newRuleImporter(env)
	ctx := context.Background()

	_, err := importer.ImportCSV(ctx, env.company.ID,
		strings.NewReader("salary,CONTAINS,SALARY,5100,10,true\n"))
	require.NoError(t, err)

	active, err := env.ruleRepo.ListActive(ctx, env.company.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "salary", active[0].Name)
}

func TestImportRulesCSVMalformedRowAborts(t *testing.T) {
	env := newTestEnv(t)
	env.addRule(t, "keep", models.MatchTypeContains, "KEEP", "5900", 5)
	importer := newRuleImporter(env)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"salary,CONTAINS,SALARY,5100,10,true",
		"broken,CONTAINS,X,5100,not-a-number,true",
	}, "\n")

	_, err := importer.ImportCSV(ctx, env.company.ID, strings.NewReader(csvData))
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)

	active, listErr := env.ruleRepo.ListActive(ctx, env.company.ID)
	require.NoError(t, listErr)
	require.Len(t, active, 1, "a failed import must not touch the existing rule set")
	assert.Equal(t, "keep", active[0].Name)
}

func TestImportRulesCSVInvalidMatchType(t *testing.T) {
	env := newTestEnv(t)
	importer := newRuleImporter(env)

	_, err := importer.ImportCSV(context.Background(), env.company.ID,
		strings.NewReader("salary,FUZZY,SALARY,5100,10,true\n"))
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
}

func TestImportRulesCSVUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	importer := newRuleImporter(env)

	_, err := importer.ImportCSV(context.Background(), env.company.ID,
		strings.NewReader("salary,CONTAINS,SALARY,7777,10,true\n"))
	assert.True(t, utils.IsKind(err, utils.KindUnknownAccount), "got %v", err)
}

func TestImportRulesCSVWrongFieldCount(t *testing.T) {
	env := newTestEnv(t)
	importer := newRuleImporter(env)

	_, err := importer.ImportCSV(context.Background(), env.company.ID,
		strings.NewReader("salary,CONTAINS,SALARY,5100\n"))
	assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
}
