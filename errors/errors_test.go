package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidState, "bad state")
	if err.Code != ErrCodeInvalidState {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidState, err.Code)
	}
	if err.Message != "bad state" {
		t.Errorf("expected message 'bad state', got %q", err.Message)
	}
}

func TestAppError_InvalidArgument(t *testing.T) {
	err := InvalidArgument("limit", "count must not be negative")
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", err.Code)
	}
	if err.Details["operation"] != "limit" {
		t.Errorf("expected operation=limit, got %v", err.Details["operation"])
	}
	if !strings.Contains(err.Error(), "limit: count must not be negative") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_AlreadyConsumed_EmptyPipeline(t *testing.T) {
	err := AlreadyConsumed("")
	if _, ok := err.Details["pipeline"]; ok {
		t.Error("expected no 'pipeline' key in details when id is empty")
	}
	err = AlreadyConsumed("abc")
	if err.Details["pipeline"] != "abc" {
		t.Errorf("expected pipeline=abc, got %v", err.Details["pipeline"])
	}
}

func TestAppError_DuplicateKey(t *testing.T) {
	err := DuplicateKey(7)
	if err.Code != ErrCodeDuplicateKey {
		t.Errorf("expected DUPLICATE_KEY, got %s", err.Code)
	}
	if err.Details["key"] != 7 {
		t.Errorf("expected key=7, got %v", err.Details["key"])
	}
}

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("decode failed")
	err := InvalidConfig("bad config").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "cause: decode failed") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := UnboundedSort().WithDetails(map[string]any{"a": 1}).WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestAppError_IsMatchesCode(t *testing.T) {
	wrapped := fmt.Errorf("count: %w", AlreadyConsumed("p1"))
	if !stderrors.Is(wrapped, AlreadyConsumed("")) {
		t.Error("expected errors.Is to match by code")
	}
	if stderrors.Is(wrapped, InvalidState("x")) {
		t.Error("expected different codes not to match")
	}
}

func TestHasCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct", DuplicateKey("k"), ErrCodeDuplicateKey, true},
		{"wrapped", fmt.Errorf("wrap: %w", UnboundedSort()), ErrCodeUnboundedSort, true},
		{"other code", InvalidState("x"), ErrCodeDuplicateKey, false},
		{"plain error", stderrors.New("plain"), ErrCodeInvalidState, false},
		{"nil", nil, ErrCodeInvalidState, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasCode(tc.err, tc.code); got != tc.want {
				t.Errorf("HasCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	appErr, ok := AsAppError(fmt.Errorf("x: %w", InvalidArgument("skip", "negative")))
	if !ok || appErr.Code != ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %v", appErr)
	}
	if !IsAppError(appErr) {
		t.Error("IsAppError should be true")
	}
}

func TestErrorCode_String(t *testing.T) {
	if got := ErrCodeDuplicateKey.String(); got != "duplicate key" {
		t.Errorf("got %q", got)
	}
	if got := ErrorCode("CUSTOM").String(); got != "CUSTOM" {
		t.Errorf("got %q", got)
	}
}
