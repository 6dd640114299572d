package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// RuleImportService bulk-loads a company's classification rules from CSV with
// columns ruleName,matchType,matchValue,accountCode,priority,active. The
// import replaces the whole rule set atomically.
type RuleImportService struct {
	ruleRepo    repositories.RuleRepository
	accountRepo repositories.AccountRepository
	validate    *validator.Validate
}

func NewRuleImportService(ruleRepo repositories.RuleRepository, accountRepo repositories.AccountRepository) *RuleImportService {
	return &RuleImportService{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
		validate:    validator.New(),
	}
}

// ImportCSV parses, validates and stores the rule set. A malformed row is a
// configuration error and aborts the import; nothing is replaced on failure.
func (s *RuleImportService) ImportCSV(ctx context.Context, companyID uint, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	var rules []models.TransactionMappingRule
	rowNumber := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, utils.WrapError(utils.KindValidation, err, "rules CSV row %d is malformed", rowNumber+1)
		}
		rowNumber++

		// An optional header row is recognised by its first column.
		if rowNumber == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "ruleName") {
			continue
		}

		row, err := parseRuleRow(record)
		if err != nil {
			return 0, utils.WrapError(utils.KindValidation, err, "rules CSV row %d", rowNumber)
		}
		if err := s.validate.Struct(row); err != nil {
			return 0, utils.WrapError(utils.KindValidation, err, "rules CSV row %d", rowNumber)
		}

		account, err := s.accountRepo.FindByCode(ctx, companyID, row.AccountCode)
		if err != nil {
			return 0, utils.WrapError(utils.KindUnknownAccount, err,
				"rules CSV row %d targets unknown account %q", rowNumber, row.AccountCode)
		}

		rules = append(rules, models.TransactionMappingRule{
			CompanyID:  companyID,
			Name:       row.RuleName,
			MatchType:  row.MatchType,
			MatchValue: row.MatchValue,
			AccountID:  account.ID,
			Priority:   row.Priority,
			IsActive:   row.Active,
		})
	}

	if err := s.ruleRepo.ReplaceAll(ctx, companyID, rules); err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"company": companyID,
		"rules":   len(rules),
	}).Info("rule set replaced")
	return len(rules), nil
}

func parseRuleRow(record []string) (*models.RuleImportRow, error) {
	priority, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, utils.NewError(utils.KindValidation, "priority %q is not an integer", record[4])
	}
	active, err := strconv.ParseBool(strings.TrimSpace(record[5]))
	if err != nil {
		return nil, utils.NewError(utils.KindValidation, "active flag %q is not a boolean", record[5])
	}
	return &models.RuleImportRow{
		RuleName:    strings.TrimSpace(record[0]),
		MatchType:   strings.ToUpper(strings.TrimSpace(record[1])),
		MatchValue:  record[2],
		AccountCode: strings.TrimSpace(record[3]),
		Priority:    priority,
		Active:      active,
	}, nil
}
