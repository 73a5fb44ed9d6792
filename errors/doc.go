// Package errors provides the structured error type shared by streamkit packages.
// Every failure a pipeline can raise on its own carries an ErrorCode; failures
// returned by user-supplied functions are passed through untouched so callers
// can match them with the standard errors.Is and errors.As.
package errors
