// Package errors provides structured error types for the script-runtime
// library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type includes rich context: module id,
// parent id, raw request, attempted candidate list, and cause chain.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.SourceNotFound(parent, request, candidates)
//	err := errors.ExecutionFailed(id, parent, request, candidates, cause)
//	err := errors.ThreadViolation(owner, caller)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
