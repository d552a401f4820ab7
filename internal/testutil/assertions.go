package testutil

import (
	"testing"

	"github.com/shopspring/decimal"

	apperrors "rafiqe/internal/errors"
)

// AssertAppError fails unless err carries the given error code, such as
// BUCKET_NOT_FOUND or VALIDATION_ERROR.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, the operation succeeded", code)
	}
	got := apperrors.CodeOf(err)
	if got == "" {
		t.Fatalf("expected %s, got an uncoded %T: %v", code, err, err)
	}
	if got != code {
		t.Errorf("expected %s, got %s (%v)", code, got, err)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		if code := apperrors.CodeOf(err); code != "" {
			t.Fatalf("unexpected %s: %v", code, err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal compares an amount numerically, so 1.50 equals 1.5.
func AssertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}
