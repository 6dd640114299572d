package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := NewError(KindPeriodClosed, "period %q is closed", "FY2026-03")
	assert.Equal(t, KindPeriodClosed, KindOf(err))
	assert.Contains(t, err.Error(), "FY2026-03")
}

func TestKindOfWrappedError(t *testing.T) {
	inner := NewError(KindUnknownAccount, "account 42 not found")
	wrapped := fmt.Errorf("posting failed: %w", inner)
	assert.Equal(t, KindUnknownAccount, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindUnknownAccount))
	assert.False(t, IsKind(wrapped, KindUnbalanced))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(KindInternal, cause, "failed to persist entry %q", "BNK-00000001")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "BNK-00000001")
	assert.Contains(t, err.Error(), "disk full")
}
