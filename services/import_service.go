package services

import (
	"context"
	"io"
	"time"

	"app-fin-management/config"
	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImportSummary reports the outcome of one statement import job.
type ImportSummary struct {
	SourceFileID  string
	Parsed        int
	Posted        int
	Unclassified  int
	SkippedLines  int
	FailedEntries int
	ErrorKinds    []utils.ErrorKind
	Warnings      []ParseWarning
}

// HasErrorKind reports whether any failed entry carried the given kind.
func (s *ImportSummary) HasErrorKind(kind utils.ErrorKind) bool {
	for _, k := range s.ErrorKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ImportService runs the statement import pipeline: parse, persist the bank
// transaction, classify, post. Per-row problems are logged and skipped; a
// closed period aborts the whole job.
type ImportService struct {
	companyRepo    repositories.CompanyRepository
	bankTxnRepo    repositories.BankTransactionRepository
	coaService     *COAService
	classification *ClassificationService
	posting        *PostingService
}

func NewImportService(
	companyRepo repositories.CompanyRepository,
	bankTxnRepo repositories.BankTransactionRepository,
	coaService *COAService,
	classification *ClassificationService,
	posting *PostingService,
) *ImportService {
	return &ImportService{
		companyRepo:    companyRepo,
		bankTxnRepo:    bankTxnRepo,
		coaService:     coaService,
		classification: classification,
		posting:        posting,
	}
}

// ImportStatement parses the statement stream and posts one journal entry per
// transaction. Unclassified transactions post against the suspense account so
// the import never silently drops money; the reason stays on the bank
// transaction for later reclassification.
func (s *ImportService) ImportStatement(ctx context.Context, companyID, periodID uint, r io.Reader, statementDate time.Time) (*ImportSummary, error) {
	period, err := s.companyRepo.FindFiscalPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsClosed {
		return nil, utils.NewError(utils.KindPeriodClosed, "fiscal period %q is closed", period.Name)
	}

	coa, err := s.coaService.Snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	rules, err := s.classification.LoadRuleSet(ctx, companyID)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{SourceFileID: uuid.NewString()}
	log := logrus.WithFields(logrus.Fields{
		"company":     companyID,
		"period":      periodID,
		"source_file": summary.SourceFileID,
	})
	log.Info("statement import started")

	parser := NewStatementParser(r, statementDate)
	for {
		parsed, err := parser.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, err
		}
		summary.Parsed++

		if err := s.importOne(ctx, companyID, period, coa, rules, parsed, summary, log); err != nil {
			// Period closed mid-job aborts; everything else was already
			// recorded on the summary by importOne.
			if utils.IsKind(err, utils.KindPeriodClosed) {
				return summary, err
			}
		}
	}

	summary.Warnings = parser.Warnings()
	summary.SkippedLines = len(summary.Warnings)
	log.WithFields(logrus.Fields{
		"parsed":       summary.Parsed,
		"posted":       summary.Posted,
		"unclassified": summary.Unclassified,
		"skipped":      summary.SkippedLines,
		"failed":       summary.FailedEntries,
	}).Info("statement import finished")
	return summary, nil
}

func (s *ImportService) importOne(
	ctx context.Context,
	companyID uint,
	period *models.FiscalPeriod,
	coa *COASnapshot,
	rules *RuleSet,
	parsed *models.ParsedTransaction,
	summary *ImportSummary,
	log *logrus.Entry,
) error {
	txn := &models.BankTransaction{
		CompanyID:      companyID,
		FiscalPeriodID: period.ID,
		Date:           parsed.Date,
		Details:        parsed.Description,
		Balance:        parsed.Balance,
		Reference:      parsed.Reference,
		IsServiceFee:   parsed.IsServiceFee,
		SourceFileID:   summary.SourceFileID,
		Classification: models.ClassificationUnclassified,
	}
	if parsed.Type == models.TransactionTypeCredit {
		txn.CreditAmount = parsed.Amount
	} else {
		txn.DebitAmount = parsed.Amount
	}
	if err := s.bankTxnRepo.Create(ctx, txn); err != nil {
		summary.FailedEntries++
		summary.ErrorKinds = append(summary.ErrorKinds, utils.KindOf(err))
		log.WithError(err).Warn("bank transaction rejected")
		return err
	}

	targetAccountID, matchedRuleID := s.resolveTarget(txn, coa, rules, summary, log)

	entry, err := s.posting.PostTransaction(ctx, txn, coa, targetAccountID)
	if err != nil {
		summary.FailedEntries++
		summary.ErrorKinds = append(summary.ErrorKinds, utils.KindOf(err))
		log.WithError(err).WithField("transaction", txn.ID).Warn("journal entry rejected")
		return err
	}

	if matchedRuleID != 0 {
		txn.Classification = models.ClassificationMatched
		txn.MatchedRuleID = &matchedRuleID
	}
	if txn.IsServiceFee {
		// The posting service resolved the bank-charges account; take the
		// back-reference from the entry's debit line.
		targetAccountID = entry.Lines[0].AccountID
	}
	txn.TargetAccountID = &targetAccountID
	txn.JournalEntryID = &entry.ID
	if err := s.bankTxnRepo.UpdateClassification(ctx, txn); err != nil {
		log.WithError(err).Warn("failed to record classification back-reference")
	}

	summary.Posted++
	return nil
}

// resolveTarget classifies the transaction. A classification that produced an
// account unknown to the chart is treated as unclassified; unclassified and
// service-fee-free misses land on the suspense account.
func (s *ImportService) resolveTarget(
	txn *models.BankTransaction,
	coa *COASnapshot,
	rules *RuleSet,
	summary *ImportSummary,
	log *logrus.Entry,
) (accountID uint, ruleID uint) {
	if txn.IsServiceFee {
		// The posting service resolves the bank-charges account itself.
		return 0, 0
	}

	result := rules.Classify(txn.Details)
	if result.Matched {
		if account, ok := coa.ByID(result.AccountID); ok && account.IsActive {
			return result.AccountID, result.RuleID
		}
		log.WithFields(logrus.Fields{
			"rule":    result.RuleID,
			"account": result.AccountID,
		}).Warn("rule targets unknown or inactive account, treating as unclassified")
	}

	summary.Unclassified++
	suspense, ok := coa.ByCode(suspenseCode())
	if !ok {
		return 0, 0
	}
	return suspense.ID, 0
}

func suspenseCode() string {
	return config.GetAccountingConfig().DefaultAccounts.Suspense
}
