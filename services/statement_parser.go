package services

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"app-fin-management/config"
	"app-fin-management/models"
	"app-fin-management/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// The statement parser recognises the tabular text produced by the primary
// bank's PDF-to-text layer. It is a two-state machine: Idle until a line with
// a populated date column appears (a transaction head), then HoldingHead
// while description continuation lines are joined onto the pending head.

type parseState int

const (
	stateIdle parseState = iota
	stateHoldingHead
)

// Default column geometry, character offsets from line start. A per-file
// calibration step may shift the numeric columns by a small delta when the
// header row is found off its nominal position.
const (
	colDetailsEnd    = 78
	colServiceFeeOff = 50
	colDebitStart    = 78
	colDebitEnd      = 100
	colCreditStart   = 99
	colCreditEnd     = 110
	colDateStart     = 110
	colDateEnd       = 120
	colBalanceStart  = 120
)

var (
	dateColumnRe = regexp.MustCompile(`^(\d{2})\s+(\d{2})$`)
	amountRe     = regexp.MustCompile(`(\d[\d,\s]*\.\d{2})(-?)`)
	headerTokens = map[string]bool{
		"details": true, "service": true, "fee": true, "debits": true,
		"credits": true, "date": true, "balance": true, "page": true,
		"statement": true, "no": true, "vat": true, "reg": true,
		"month-end": true, "mm": true, "dd": true, "brought": true,
		"forward": true,
	}
)

// ParseWarning records a statement line that was dropped without aborting the
// parse.
type ParseWarning struct {
	LineNumber int
	Kind       utils.ErrorKind
	Message    string
}

type pendingHead struct {
	descriptionParts []string
	debit            decimal.Decimal
	credit           decimal.Decimal
	balance          decimal.Decimal
	date             time.Time
	isServiceFee     bool
}

// StatementParser walks one statement stream. It is strictly sequential: line
// order is semantically significant because of continuation lines, and there
// is no restart guarantee.
type StatementParser struct {
	scanner       *bufio.Scanner
	statementDate time.Time
	delta         int
	maxDelta      int
	state         parseState
	pending       *pendingHead
	warnings      []ParseWarning
	lineNumber    int
	exhausted     bool
}

// NewStatementParser wraps a statement stream. statementDate is the nominal
// date of the statement, used to resolve the month/day-only dates on lines.
func NewStatementParser(r io.Reader, statementDate time.Time) *StatementParser {
	return &StatementParser{
		scanner:       bufio.NewScanner(r),
		statementDate: statementDate,
		maxDelta:      config.GetAccountingConfig().Statement.MaxCalibrationDelta,
	}
}

// Warnings returns the lines dropped so far with their reason.
func (p *StatementParser) Warnings() []ParseWarning {
	return p.warnings
}

// Next returns the next completed transaction, or io.EOF once the stream is
// exhausted. It is cancellable between lines.
func (p *StatementParser) Next(ctx context.Context) (*models.ParsedTransaction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.exhausted {
			return nil, io.EOF
		}
		if !p.scanner.Scan() {
			p.exhausted = true
			if err := p.scanner.Err(); err != nil {
				return nil, err
			}
			if p.pending != nil {
				txn := p.emit()
				return txn, nil
			}
			return nil, io.EOF
		}

		p.lineNumber++
		line := strings.TrimRight(p.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Column identity wins over vocabulary: a line with a populated date
		// column is always a transaction head, even when its description
		// reads like header noise ("SERVICE FEE").
		dateCol := strings.TrimSpace(slice(line, colDateStart+p.delta, colDateEnd+p.delta))
		if m := dateColumnRe.FindStringSubmatch(dateCol); m != nil {
			completed := p.pending
			if err := p.startHead(line, m); err != nil {
				// Malformed head dropped; any completed predecessor still
				// emits and keeps collecting continuation lines.
				if completed != nil && p.pending == nil {
					p.pending = completed
					p.state = stateHoldingHead
					completed = nil
				}
				continue
			}
			if completed != nil {
				return p.emitHead(completed), nil
			}
			continue
		}

		p.calibrate(line)
		if p.isHeaderOrFooter(line) {
			continue
		}
		if p.state == stateHoldingHead && p.pending != nil {
			fragment := detailsText(slice(line, 0, colDetailsEnd+p.delta))
			if fragment != "" {
				p.pending.descriptionParts = append(p.pending.descriptionParts, fragment)
			}
			continue
		}
		// Stray text before the first head carries no transaction.
	}
}

// ParseAll drains the stream. Used by the import job and by tests; callers
// that need laziness iterate Next themselves.
func (p *StatementParser) ParseAll(ctx context.Context) ([]models.ParsedTransaction, error) {
	var out []models.ParsedTransaction
	for {
		txn, err := p.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, *txn)
	}
}

// startHead parses the head line's columns. On failure the line is dropped
// with a warning and the parser state is unchanged.
func (p *StatementParser) startHead(line string, dateMatch []string) error {
	date, err := p.resolveDate(dateMatch[1], dateMatch[2])
	if err != nil {
		p.warn(utils.KindParseMalformedDate, "unparseable date %q %q", dateMatch[1], dateMatch[2])
		return err
	}

	debit, debitOK := extractAmount(slice(line, colDebitStart+p.delta, colDebitEnd+p.delta))
	credit, creditOK := extractAmount(slice(line, colCreditStart+p.delta, colCreditEnd+p.delta))
	if debitOK && creditOK {
		// The debit and credit windows share a column; prefer the side whose
		// window holds the full match when both appear to fire.
		creditOK = false
	}
	if !debitOK && !creditOK {
		p.warn(utils.KindParseNoAmount, "transaction head without debit or credit amount")
		p.pending = nil
		p.state = stateIdle
		return utils.NewError(utils.KindParseNoAmount, "no amount on line %d", p.lineNumber)
	}

	head := &pendingHead{date: date}
	head.isServiceFee = strings.Contains(slice(line, colServiceFeeOff+p.delta, colDetailsEnd+p.delta), "##")
	if details := detailsText(slice(line, 0, colDetailsEnd+p.delta)); details != "" {
		head.descriptionParts = append(head.descriptionParts, details)
	}
	if debitOK {
		head.debit = debit
	}
	if creditOK {
		head.credit = credit
	}
	if balanceCol := slice(line, colBalanceStart+p.delta, len(line)); balanceCol != "" {
		if balance, ok := extractAmount(balanceCol); ok {
			if strings.Contains(strings.TrimSpace(balanceCol), "-") {
				balance = balance.Neg()
			}
			head.balance = balance
		}
	}

	p.pending = head
	p.state = stateHoldingHead
	return nil
}

func (p *StatementParser) emit() *models.ParsedTransaction {
	head := p.pending
	p.pending = nil
	p.state = stateIdle
	return p.emitHead(head)
}

func (p *StatementParser) emitHead(head *pendingHead) *models.ParsedTransaction {
	txn := &models.ParsedTransaction{
		Description:  strings.Join(head.descriptionParts, " "),
		Date:         head.date,
		Balance:      head.balance,
		IsServiceFee: head.isServiceFee,
	}
	switch {
	case head.isServiceFee:
		txn.Type = models.TransactionTypeServiceFee
		txn.Amount = head.debit
		if txn.Amount.IsZero() {
			txn.Amount = head.credit
		}
	case head.credit.IsPositive():
		txn.Type = models.TransactionTypeCredit
		txn.Amount = head.credit
	default:
		txn.Type = models.TransactionTypeDebit
		txn.Amount = head.debit
	}
	return txn
}

// resolveDate turns the MM DD columns into a full date. Statements carry no
// year; a candidate more than six months after the statement date belongs to
// the previous year, more than six months before to the next.
func (p *StatementParser) resolveDate(mm, dd string) (time.Time, error) {
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, utils.NewError(utils.KindParseMalformedDate, "invalid month %q", mm)
	}
	day, err := strconv.Atoi(dd)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, utils.NewError(utils.KindParseMalformedDate, "invalid day %q", dd)
	}

	candidate := time.Date(p.statementDate.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if candidate.Day() != day {
		return time.Time{}, utils.NewError(utils.KindParseMalformedDate, "invalid day %d for month %d", day, month)
	}
	if candidate.After(p.statementDate.AddDate(0, 6, 0)) {
		candidate = candidate.AddDate(-1, 0, 0)
	} else if candidate.Before(p.statementDate.AddDate(0, -6, 0)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate, nil
}

// calibrate shifts the column geometry when the header row sits off its
// nominal position. The shift is clamped to a small delta.
func (p *StatementParser) calibrate(line string) {
	upper := strings.ToUpper(line)
	if !strings.Contains(upper, "DEBITS") || !strings.Contains(upper, "BALANCE") {
		return
	}
	idx := strings.LastIndex(upper, "BALANCE")
	delta := idx - colBalanceStart
	if delta > p.maxDelta {
		delta = p.maxDelta
	} else if delta < -p.maxDelta {
		delta = -p.maxDelta
	}
	if delta != p.delta {
		logrus.WithField("delta", delta).Debug("statement column calibration adjusted")
		p.delta = delta
	}
}

// isHeaderOrFooter drops statement furniture: lines whose every token is
// either header vocabulary or numeric (page numbers, totals).
func (p *StatementParser) isHeaderOrFooter(line string) bool {
	tokens := strings.Fields(strings.ToLower(line))
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		token = strings.Trim(token, ".,:#|-")
		if token == "" || headerTokens[token] {
			continue
		}
		if _, ok := extractAmount(token); ok {
			continue
		}
		if _, err := strconv.Atoi(token); err == nil {
			continue
		}
		return false
	}
	return true
}

func (p *StatementParser) warn(kind utils.ErrorKind, format string, args ...interface{}) {
	warning := ParseWarning{
		LineNumber: p.lineNumber,
		Kind:       kind,
		Message:    utils.NewError(kind, format, args...).Message,
	}
	p.warnings = append(p.warnings, warning)
	logrus.WithFields(logrus.Fields{
		"line": warning.LineNumber,
		"kind": warning.Kind,
	}).Warn(warning.Message)
}

// extractAmount matches an amount inside a column slice. A trailing "-" on a
// debit column is a marker, not a sign flip: column identity determines sign,
// so the sign suffix is ignored here.
func extractAmount(column string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(column)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := utils.ParseAmount(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// detailsText cleans a description slice: the service-fee marker is stripped
// and runs of column padding collapse to single spaces.
func detailsText(raw string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, "##", " ")), " ")
}

// slice cuts [start, end) out of line, clamped to the line's length.
func slice(line string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	if end <= start {
		return ""
	}
	return line[start:end]
}
