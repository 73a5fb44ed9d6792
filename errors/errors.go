package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", string(e.Code), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", string(e.Code), e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, errors.AlreadyConsumed("")) style checks work.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// --- Common Error Constructors ---

// InvalidArgument creates a new AppError for a rejected operation argument.
func InvalidArgument(op, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: %s", op, reason),
		Details: map[string]any{"operation": op},
	}
}

// AlreadyConsumed creates a new AppError for a terminal operation on a spent pipeline.
func AlreadyConsumed(pipeline string) *AppError {
	details := map[string]any{}
	if pipeline != "" {
		details["pipeline"] = pipeline
	}
	return &AppError{
		Code: ErrCodeAlreadyConsumed, Message: "pipeline has already been operated upon or consumed",
		Details: details,
	}
}

// InvalidState creates a new AppError for a pipeline whose input is no longer usable.
func InvalidState(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Message: reason,
	}
}

// UnboundedSort creates a new AppError for sorting an infinite source.
func UnboundedSort() *AppError {
	return &AppError{
		Code:    ErrCodeUnboundedSort,
		Message: "cannot sort an unbounded pipeline; apply Limit before Sorted",
	}
}

// DuplicateKey creates a new AppError for a key collision while collecting to a map.
func DuplicateKey(key any) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateKey, Message: fmt.Sprintf("duplicate key %v", key),
		Details: map[string]any{"key": key},
	}
}

// InvalidConfig creates a new AppError for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err, or any error it wraps, is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
