package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"app-fin-management/config"
	"app-fin-management/database"
	"app-fin-management/models"
	"app-fin-management/repositories"
	"app-fin-management/services"
	"app-fin-management/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Exit codes of the import command, part of the CLI contract.
const (
	exitOK             = 0
	exitError          = 1
	exitUnbalanced     = 2
	exitUnknownAccount = 3
	exitPeriodClosed   = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return exitError
	}

	cfg := config.Load()
	if err := config.LoadAccountingConfig(""); err != nil {
		logrus.WithError(err).Error("failed to load accounting configuration")
		return exitError
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to open database")
		return exitError
	}

	ctx := context.Background()
	switch args[0] {
	case "import":
		return runImport(ctx, db, args[1:])
	case "report":
		return runReport(ctx, db, args[1:])
	case "rules":
		if len(args) >= 2 && args[1] == "import" {
			return runRulesImport(ctx, db, args[2:])
		}
		usage()
		return exitError
	default:
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  fin import --company <id> --period <id> --file <path> [--date YYYY-MM-DD]
  fin report <kind> --company <id> --period <id> [--format text|csv|pdf|xlsx] [--out <path>]
  fin rules import --company <id> --file <path>`)
}

func exitCodeFor(summary *services.ImportSummary, err error) int {
	if err != nil {
		switch utils.KindOf(err) {
		case utils.KindPeriodClosed:
			return exitPeriodClosed
		case utils.KindUnbalanced:
			return exitUnbalanced
		case utils.KindUnknownAccount, utils.KindInactiveAccount:
			return exitUnknownAccount
		default:
			return exitError
		}
	}
	if summary != nil {
		if summary.HasErrorKind(utils.KindUnbalanced) {
			return exitUnbalanced
		}
		if summary.HasErrorKind(utils.KindUnknownAccount) || summary.HasErrorKind(utils.KindInactiveAccount) {
			return exitUnknownAccount
		}
	}
	return exitOK
}

func runImport(ctx context.Context, db *gorm.DB, args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	companyID := fs.Uint("company", 0, "company id")
	periodID := fs.Uint("period", 0, "fiscal period id")
	file := fs.String("file", "", "statement file path")
	dateArg := fs.String("date", "", "nominal statement date, YYYY-MM-DD (default: period end)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if *companyID == 0 || *periodID == 0 || *file == "" {
		usage()
		return exitError
	}

	companyRepo := repositories.NewCompanyRepository(db)
	statementDate := time.Now()
	if *dateArg != "" {
		parsed, err := time.Parse("2006-01-02", *dateArg)
		if err != nil {
			logrus.WithError(err).Error("invalid --date")
			return exitError
		}
		statementDate = parsed
	} else if period, err := companyRepo.FindFiscalPeriod(ctx, uint(*periodID)); err == nil {
		statementDate = period.EndDate
	}

	f, err := os.Open(*file)
	if err != nil {
		logrus.WithError(err).Error("failed to open statement file")
		return exitError
	}
	defer f.Close()

	accountRepo := repositories.NewAccountRepository(db)
	journalRepo := repositories.NewJournalRepository(db)
	importService := services.NewImportService(
		companyRepo,
		repositories.NewBankTransactionRepository(db),
		services.NewCOAService(accountRepo),
		services.NewClassificationService(repositories.NewRuleRepository(db)),
		services.NewPostingService(journalRepo, accountRepo),
	)

	summary, err := importService.ImportStatement(ctx, uint(*companyID), uint(*periodID), f, statementDate)
	if err != nil {
		logrus.WithError(err).Error("statement import failed")
	}
	if summary != nil {
		fmt.Printf("parsed=%d posted=%d unclassified=%d skipped=%d failed=%d\n",
			summary.Parsed, summary.Posted, summary.Unclassified, summary.SkippedLines, summary.FailedEntries)
	}
	return exitCodeFor(summary, err)
}

func runReport(ctx context.Context, db *gorm.DB, args []string) int {
	if len(args) < 1 {
		usage()
		return exitError
	}
	kind := args[0]

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	companyID := fs.Uint("company", 0, "company id")
	periodID := fs.Uint("period", 0, "fiscal period id")
	format := fs.String("format", services.FormatText, "text, csv, pdf or xlsx")
	out := fs.String("out", "", "output path (default: stdout)")
	if err := fs.Parse(args[1:]); err != nil {
		return exitError
	}
	if *companyID == 0 || *periodID == 0 {
		usage()
		return exitError
	}

	reportService := services.NewReportService(db, repositories.NewCompanyRepository(db))
	doc, err := reportService.Generate(ctx, kind, uint(*companyID), uint(*periodID), models.AuditTrailFilter{})
	if err != nil {
		logrus.WithError(err).Error("report generation failed")
		return exitError
	}

	exportService := services.NewExportService(config.GetAccountingConfig().Export)
	rendered, err := exportService.Render(doc, *format)
	if err != nil {
		logrus.WithError(err).Error("report rendering failed")
		return exitError
	}

	if *out == "" {
		_, _ = os.Stdout.Write(rendered)
		return exitOK
	}
	if err := os.WriteFile(*out, rendered, 0o644); err != nil {
		logrus.WithError(err).Error("failed to write report")
		return exitError
	}
	return exitOK
}

func runRulesImport(ctx context.Context, db *gorm.DB, args []string) int {
	fs := flag.NewFlagSet("rules import", flag.ContinueOnError)
	companyID := fs.Uint("company", 0, "company id")
	file := fs.String("file", "", "rules CSV path")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if *companyID == 0 || *file == "" {
		usage()
		return exitError
	}

	f, err := os.Open(*file)
	if err != nil {
		logrus.WithError(err).Error("failed to open rules file")
		return exitError
	}
	defer f.Close()

	ruleImport := services.NewRuleImportService(
		repositories.NewRuleRepository(db),
		repositories.NewAccountRepository(db),
	)
	count, err := ruleImport.ImportCSV(ctx, uint(*companyID), f)
	if err != nil {
		logrus.WithError(err).Error("rules import failed")
		return exitError
	}
	fmt.Printf("imported %d rules\n", count)
	return exitOK
}
