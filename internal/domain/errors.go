package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes. Ingestion-time codes indicate the uploaded input is at fault;
// dependency codes indicate a downstream service (OpenAI, Postgres) failed.
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeParseFailure      = "PARSE_FAILURE"
	ErrCodeEmptyContent      = "EMPTY_CONTENT"
	ErrCodeEmbeddingFailure  = "EMBEDDING_FAILURE"
	ErrCodeStoreFailure      = "STORE_FAILURE"
	ErrCodeCompletionFailure = "COMPLETION_FAILURE"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidOperation  = "INVALID_OPERATION"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Ingestion errors
var (
	ErrEmptyContent     = NewDomainError(ErrCodeEmptyContent, "file content is empty or unreadable")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// NewUnsupportedFormat builds the error for a rejected file extension.
func NewUnsupportedFormat(ext string) *DomainError {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported file format %q, use PDF, TXT, or MD", ext))
}

// NewParseFailure wraps a parser error.
func NewParseFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeParseFailure, "failed to parse file", err)
}

// NewEmbeddingFailure wraps an embedding backend error.
func NewEmbeddingFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingFailure, "failed to generate embeddings", err)
}

// NewStoreFailure wraps a chunk store error.
func NewStoreFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStoreFailure, "chunk store operation failed", err)
}

// NewCompletionFailure wraps a completion backend error.
func NewCompletionFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeCompletionFailure, "completion request failed", err)
}

// ErrorCode extracts the DomainError code from err, unwrapping as needed.
// Returns ErrCodeInternalError for non-domain errors.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternalError
}
