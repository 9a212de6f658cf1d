package errors

import (
	"errors"
	"testing"
)

func TestQueryParseErrorIsFatal(t *testing.T) {
	err := QueryParseError("too many wildcards")
	if !IsFatal(err) {
		t.Fatalf("expected QueryParseError to be fatal")
	}
	if GetCode(err) != CodeQueryParse {
		t.Fatalf("got code %q, want %q", GetCode(err), CodeQueryParse)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(CodeInternal, nil) != nil {
		t.Fatalf("Wrap(nil) should return nil")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeOverflow, "sentinel", nil)
	wrapped := Wrap(CodeOverflow, errors.New("boom"))
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected errors.Is to match by code")
	}
	other := New(CodeBudgetExceeded, "other", nil)
	if errors.Is(wrapped, other) {
		t.Fatalf("did not expect different codes to match")
	}
}

func TestRecoveredOverflowIsNotFatal(t *testing.T) {
	err := New(CodeOverflow, "overflow while scaling", nil)
	if IsFatal(err) {
		t.Fatalf("overflow should be locally recovered, not fatal")
	}
}
