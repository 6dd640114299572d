package services

import (
	"context"
	"sort"
	"time"

	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService computes the six standard reports from journal lines, never
// from raw bank transactions. Each generation runs inside one database
// transaction, so a report reflects a consistent snapshot: entries committed
// while the report runs may or may not appear, but no partial entry ever does.
type ReportService struct {
	db          *gorm.DB
	companyRepo repositories.CompanyRepository
}

func NewReportService(db *gorm.DB, companyRepo repositories.CompanyRepository) *ReportService {
	return &ReportService{db: db, companyRepo: companyRepo}
}

// accountActivity is one account's period debit/credit aggregate.
type accountActivity struct {
	account *models.Account
	debits  decimal.Decimal
	credits decimal.Decimal
}

// Generate produces the named report for a company and fiscal period.
func (s *ReportService) Generate(ctx context.Context, kind string, companyID, periodID uint, filter models.AuditTrailFilter) (*models.ReportDocument, error) {
	company, err := s.companyRepo.FindCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	period, err := s.companyRepo.FindFiscalPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	var doc *models.ReportDocument
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		journalRepo := repositories.NewJournalRepository(tx)
		var innerErr error
		switch kind {
		case models.ReportKindTrialBalance:
			doc, innerErr = s.trialBalance(ctx, journalRepo, company, period)
		case models.ReportKindGeneralLedger:
			doc, innerErr = s.ledger(ctx, journalRepo, company, period, "", "General Ledger")
		case models.ReportKindCashbook:
			doc, innerErr = s.cashbook(ctx, journalRepo, company, period)
		case models.ReportKindIncomeStatement:
			doc, innerErr = s.incomeStatement(ctx, journalRepo, company, period)
		case models.ReportKindBalanceSheet:
			doc, innerErr = s.balanceSheet(ctx, journalRepo, company, period)
		case models.ReportKindAuditTrail:
			doc, innerErr = s.auditTrail(ctx, journalRepo, company, period, filter)
		default:
			innerErr = utils.NewError(utils.KindValidation, "unknown report kind %q", kind)
		}
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func newDocument(kind, title string, company *models.Company, period *models.FiscalPeriod, columns []models.ReportColumn) *models.ReportDocument {
	return &models.ReportDocument{
		Kind:        kind,
		Title:       title,
		CompanyName: company.Name,
		PeriodName:  period.Name,
		PeriodStart: period.StartDate,
		PeriodEnd:   period.EndDate,
		Columns:     columns,
		GeneratedAt: time.Now(),
	}
}

// periodActivity aggregates period debits and credits per account by walking
// every entry in the period once.
func (s *ReportService) periodActivity(ctx context.Context, journalRepo repositories.JournalRepository, companyID, periodID uint) (map[uint]*accountActivity, []uint, error) {
	entries, err := journalRepo.EntriesInPeriod(ctx, companyID, periodID)
	if err != nil {
		return nil, nil, err
	}

	activity := make(map[uint]*accountActivity)
	var order []uint
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for j := range entries[i].Lines {
			line := &entries[i].Lines[j]
			a, ok := activity[line.AccountID]
			if !ok {
				a = &accountActivity{
					account: line.Account,
					debits:  decimal.Zero,
					credits: decimal.Zero,
				}
				activity[line.AccountID] = a
				order = append(order, line.AccountID)
			}
			a.debits = a.debits.Add(line.DebitAmount)
			a.credits = a.credits.Add(line.CreditAmount)
		}
	}

	// Present accounts in chart-code order regardless of posting order.
	sortAccountIDs(order, activity)
	return activity, order, nil
}

func sortAccountIDs(ids []uint, activity map[uint]*accountActivity) {
	sort.Slice(ids, func(i, j int) bool {
		return code(activity[ids[i]]) < code(activity[ids[j]])
	})
}

func code(a *accountActivity) string {
	if a.account == nil {
		return ""
	}
	return a.account.Code
}

// trialBalance places each active account's net period activity in the column
// matching its normal balance. Equal grand totals are the trial balance law;
// a discrepancy means the store is corrupt and the report must not render.
func (s *ReportService) trialBalance(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod) (*models.ReportDocument, error) {
	columns := []models.ReportColumn{
		{Header: "Code", Key: "code", Width: 10, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Account", Key: "account", Width: 60, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Debit", Key: "debit", Width: 24, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
		{Header: "Credit", Key: "credit", Width: 24, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
	}
	doc := newDocument(models.ReportKindTrialBalance, "Trial Balance", company, period, columns)

	activity, order, err := s.periodActivity(ctx, journalRepo, company.ID, period.ID)
	if err != nil {
		return nil, err
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := activity[id]
		debitCol := decimal.Zero
		creditCol := decimal.Zero
		switch a.account.NormalBalance() {
		case models.NormalBalanceDebit:
			net := a.debits.Sub(a.credits)
			if net.Sign() >= 0 {
				debitCol = net
			} else {
				creditCol = net.Abs()
			}
		case models.NormalBalanceCredit:
			net := a.credits.Sub(a.debits)
			if net.Sign() >= 0 {
				creditCol = net
			} else {
				debitCol = net.Abs()
			}
		}
		totalDebit = totalDebit.Add(debitCol)
		totalCredit = totalCredit.Add(creditCol)
		doc.Rows = append(doc.Rows, models.ReportRow{Cells: map[string]interface{}{
			"code":    a.account.Code,
			"account": a.account.Name,
			"debit":   utils.Round2(debitCol),
			"credit":  utils.Round2(creditCol),
		}})
	}

	totalDebit = utils.Round2(totalDebit)
	totalCredit = utils.Round2(totalCredit)
	if !totalDebit.Equal(totalCredit) {
		return nil, utils.NewError(utils.KindTrialBalanceUnbalanced,
			"trial balance out of balance: debits %s, credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true, Cells: map[string]interface{}{
		"code":    "",
		"account": "TOTAL",
		"debit":   totalDebit,
		"credit":  totalCredit,
	}})
	return doc, nil
}

// ledger emits each account's lines chronologically with a running balance of
// debit minus credit. An empty codePrefix covers the full general ledger; the
// cashbook passes "1".
func (s *ReportService) ledger(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod, codePrefix, title string) (*models.ReportDocument, error) {
	columns := []models.ReportColumn{
		{Header: "Date", Key: "date", Width: 12, Type: models.ColumnTypeDate, Align: models.AlignLeft},
		{Header: "Reference", Key: "reference", Width: 14, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Description", Key: "description", Width: 40, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Debit", Key: "debit", Width: 18, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
		{Header: "Credit", Key: "credit", Width: 18, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
		{Header: "Balance", Key: "balance", Width: 18, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
	}
	if codePrefix == "1" {
		columns[3].Header = "Receipts"
		columns[4].Header = "Payments"
	}
	doc := newDocument(models.ReportKindGeneralLedger, title, company, period, columns)
	if codePrefix == "1" {
		doc.Kind = models.ReportKindCashbook
	}

	entries, err := journalRepo.EntriesInPeriod(ctx, company.ID, period.ID)
	if err != nil {
		return nil, err
	}

	// Re-group lines per account preserving the (entry date, entry id, line
	// number) order the store guarantees.
	type ledgerLine struct {
		entry *models.JournalEntry
		line  *models.JournalEntryLine
	}
	perAccount := make(map[uint][]ledgerLine)
	accounts := make(map[uint]*models.Account)
	var order []uint
	for i := range entries {
		for j := range entries[i].Lines {
			line := &entries[i].Lines[j]
			account := line.Account
			if account == nil {
				continue
			}
			if codePrefix != "" && !hasPrefix(account.Code, codePrefix) {
				continue
			}
			if _, ok := perAccount[line.AccountID]; !ok {
				order = append(order, line.AccountID)
				accounts[line.AccountID] = account
			}
			perAccount[line.AccountID] = append(perAccount[line.AccountID], ledgerLine{entry: &entries[i], line: line})
		}
	}
	sortByCode(order, accounts)

	for _, accountID := range order {
		account := accounts[accountID]
		doc.Rows = append(doc.Rows, models.ReportRow{
			IsHeading: true,
			Section:   account.Code + " " + account.Name,
			Cells:     map[string]interface{}{"description": account.Code + " - " + account.Name},
		})
		running := decimal.Zero
		for _, ll := range perAccount[accountID] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			running = running.Add(ll.line.DebitAmount).Sub(ll.line.CreditAmount)
			doc.Rows = append(doc.Rows, models.ReportRow{
				Section: account.Code + " " + account.Name,
				Cells: map[string]interface{}{
					"date":        ll.entry.EntryDate,
					"reference":   ll.entry.Reference,
					"description": ll.line.Description,
					"debit":       utils.Round2(ll.line.DebitAmount),
					"credit":      utils.Round2(ll.line.CreditAmount),
					"balance":     utils.Round2(running),
				},
			})
		}
	}
	return doc, nil
}

func (s *ReportService) cashbook(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod) (*models.ReportDocument, error) {
	return s.ledger(ctx, journalRepo, company, period, "1", "Cashbook")
}

// incomeStatement presents revenue (code family 4) at its credit-side
// positive magnitude and expenses (family 5) at their debit-side magnitude.
func (s *ReportService) incomeStatement(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod) (*models.ReportDocument, error) {
	columns := []models.ReportColumn{
		{Header: "Code", Key: "code", Width: 10, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Account", Key: "account", Width: 80, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Amount", Key: "amount", Width: 24, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
	}
	doc := newDocument(models.ReportKindIncomeStatement, "Income Statement", company, period, columns)

	activity, order, err := s.periodActivity(ctx, journalRepo, company.ID, period.ID)
	if err != nil {
		return nil, err
	}

	totalRevenue := decimal.Zero
	doc.Rows = append(doc.Rows, models.ReportRow{IsHeading: true, Section: "Revenue",
		Cells: map[string]interface{}{"account": "REVENUE"}})
	for _, id := range order {
		a := activity[id]
		if !hasPrefix(a.account.Code, "4") {
			continue
		}
		amount := utils.Round2(a.credits.Sub(a.debits))
		totalRevenue = totalRevenue.Add(amount)
		doc.Rows = append(doc.Rows, models.ReportRow{Section: "Revenue", Cells: map[string]interface{}{
			"code": a.account.Code, "account": a.account.Name, "amount": amount,
		}})
	}
	doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true, Section: "Revenue",
		Cells: map[string]interface{}{"account": "Total Revenue", "amount": utils.Round2(totalRevenue)}})

	totalExpenses := decimal.Zero
	doc.Rows = append(doc.Rows, models.ReportRow{IsHeading: true, Section: "Expenses",
		Cells: map[string]interface{}{"account": "EXPENSES"}})
	for _, id := range order {
		a := activity[id]
		if !hasPrefix(a.account.Code, "5") {
			continue
		}
		amount := utils.Round2(a.debits.Sub(a.credits))
		totalExpenses = totalExpenses.Add(amount)
		doc.Rows = append(doc.Rows, models.ReportRow{Section: "Expenses", Cells: map[string]interface{}{
			"code": a.account.Code, "account": a.account.Name, "amount": amount,
		}})
	}
	doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true, Section: "Expenses",
		Cells: map[string]interface{}{"account": "Total Expenses", "amount": utils.Round2(totalExpenses)}})

	netProfit := utils.Round2(totalRevenue.Sub(totalExpenses))
	doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true,
		Cells: map[string]interface{}{"account": "NET PROFIT", "amount": netProfit}})
	return doc, nil
}

// balanceSheet lists assets (1), liabilities (2) and equity (3) at their
// signed net balances and folds the period's net profit into equity, honouring
// assets = liabilities + equity + net profit up to a cent of rounding.
func (s *ReportService) balanceSheet(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod) (*models.ReportDocument, error) {
	columns := []models.ReportColumn{
		{Header: "Code", Key: "code", Width: 10, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Account", Key: "account", Width: 80, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Amount", Key: "amount", Width: 24, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
	}
	doc := newDocument(models.ReportKindBalanceSheet, "Balance Sheet", company, period, columns)

	activity, order, err := s.periodActivity(ctx, journalRepo, company.ID, period.ID)
	if err != nil {
		return nil, err
	}

	section := func(title, prefix string, creditNormal bool) decimal.Decimal {
		doc.Rows = append(doc.Rows, models.ReportRow{IsHeading: true, Section: title,
			Cells: map[string]interface{}{"account": title}})
		total := decimal.Zero
		for _, id := range order {
			a := activity[id]
			if !hasPrefix(a.account.Code, prefix) {
				continue
			}
			net := a.debits.Sub(a.credits)
			if creditNormal {
				net = a.credits.Sub(a.debits)
			}
			net = utils.Round2(net)
			total = total.Add(net)
			doc.Rows = append(doc.Rows, models.ReportRow{Section: title, Cells: map[string]interface{}{
				"code": a.account.Code, "account": a.account.Name, "amount": net,
			}})
		}
		doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true, Section: title,
			Cells: map[string]interface{}{"account": "Total " + title, "amount": utils.Round2(total)}})
		return total
	}

	totalAssets := section("ASSETS", "1", false)
	totalLiabilities := section("LIABILITIES", "2", true)
	totalEquity := section("EQUITY", "3", true)

	netProfit := decimal.Zero
	for _, id := range order {
		a := activity[id]
		if hasPrefix(a.account.Code, "4") {
			netProfit = netProfit.Add(a.credits.Sub(a.debits))
		} else if hasPrefix(a.account.Code, "5") {
			netProfit = netProfit.Sub(a.debits.Sub(a.credits))
		}
	}
	netProfit = utils.Round2(netProfit)
	doc.Rows = append(doc.Rows, models.ReportRow{Section: "EQUITY", Cells: map[string]interface{}{
		"code": "", "account": "Current Period Profit", "amount": netProfit,
	}})

	difference := totalAssets.Sub(totalLiabilities.Add(totalEquity).Add(netProfit)).Abs()
	if difference.GreaterThan(decimal.NewFromFloat(0.01)) {
		return nil, utils.NewError(utils.KindTrialBalanceUnbalanced,
			"balance sheet out of balance by %s", difference.StringFixed(2))
	}

	doc.Rows = append(doc.Rows, models.ReportRow{IsTotal: true, Cells: map[string]interface{}{
		"account": "TOTAL LIABILITIES AND EQUITY",
		"amount":  utils.Round2(totalLiabilities.Add(totalEquity).Add(netProfit)),
	}})
	return doc, nil
}

// auditTrail lists every entry in the filtered window with all of its lines.
func (s *ReportService) auditTrail(ctx context.Context, journalRepo repositories.JournalRepository, company *models.Company, period *models.FiscalPeriod, filter models.AuditTrailFilter) (*models.ReportDocument, error) {
	columns := []models.ReportColumn{
		{Header: "Date", Key: "date", Width: 12, Type: models.ColumnTypeDate, Align: models.AlignLeft},
		{Header: "Reference", Key: "reference", Width: 14, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Code", Key: "code", Width: 8, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Account", Key: "account", Width: 26, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Description", Key: "description", Width: 24, Type: models.ColumnTypeText, Align: models.AlignLeft},
		{Header: "Debit", Key: "debit", Width: 18, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
		{Header: "Credit", Key: "credit", Width: 18, Type: models.ColumnTypeCurrency, Align: models.AlignRight},
	}
	doc := newDocument(models.ReportKindAuditTrail, "Audit Trail", company, period, columns)

	entries, _, err := journalRepo.EntriesPaged(ctx, company.ID, period.ID, filter)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := &entries[i]
		for j := range entry.Lines {
			line := &entry.Lines[j]
			accountCode, accountName := "", ""
			if line.Account != nil {
				accountCode, accountName = line.Account.Code, line.Account.Name
			}
			doc.Rows = append(doc.Rows, models.ReportRow{
				Section: entry.Reference,
				Cells: map[string]interface{}{
					"date":        entry.EntryDate,
					"reference":   entry.Reference,
					"code":        accountCode,
					"account":     accountName,
					"description": line.Description,
					"debit":       utils.Round2(line.DebitAmount),
					"credit":      utils.Round2(line.CreditAmount),
				},
			})
		}
	}
	return doc, nil
}

func hasPrefix(code, prefix string) bool {
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}

func sortByCode(ids []uint, accounts map[uint]*models.Account) {
	sort.Slice(ids, func(i, j int) bool {
		return accounts[ids[i]].Code < accounts[ids[j]].Code
	})
}
