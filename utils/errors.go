package utils

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a class of accounting error so callers can decide
// between skipping a row, aborting a job, or surfacing a configuration problem.
type ErrorKind string

const (
	KindUnbalanced             ErrorKind = "UNBALANCED"
	KindUnknownAccount         ErrorKind = "UNKNOWN_ACCOUNT"
	KindInactiveAccount        ErrorKind = "INACTIVE_ACCOUNT"
	KindPeriodClosed           ErrorKind = "PERIOD_CLOSED"
	KindCodeConflict           ErrorKind = "CODE_CONFLICT"
	KindPeriodOverlap          ErrorKind = "PERIOD_OVERLAP"
	KindParseNoAmount          ErrorKind = "PARSE_NO_AMOUNT"
	KindParseMalformedDate     ErrorKind = "PARSE_MALFORMED_DATE"
	KindRegexInvalid           ErrorKind = "REGEX_INVALID"
	KindTrialBalanceUnbalanced ErrorKind = "TRIAL_BALANCE_UNBALANCED"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindValidation             ErrorKind = "VALIDATION"
	KindInternal               ErrorKind = "INTERNAL"
)

// AccountingError carries an ErrorKind alongside the message, so the import
// job and the CLI can map failures to their recovery policy.
type AccountingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AccountingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AccountingError) Unwrap() error {
	return e.Err
}

// NewError creates an AccountingError with the given kind.
func NewError(kind ErrorKind, format string, args ...interface{}) *AccountingError {
	return &AccountingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind and message to an underlying error.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *AccountingError {
	return &AccountingError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind from err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var ae *AccountingError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
