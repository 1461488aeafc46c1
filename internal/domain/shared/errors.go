package shared

import "errors"

// Error codes used across the ledger domain.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeConstraint       = "CONSTRAINT_VIOLATION"
	CodeNotFound         = "NOT_FOUND"
	CodeTransactionState = "TRANSACTION_STATE"
	CodeIntegrity        = "INTEGRITY_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or out-of-range input. Recoverable;
// the message is surfaced to the caller verbatim.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewConstraintViolation reports an invariant breach, e.g. an allocation that
// exceeds the invoice's remaining balance. The message names the invariant
// that failed and must not leak storage identifiers.
func NewConstraintViolation(message string) *DomainError {
	return NewDomainError(CodeConstraint, message)
}

// NewNotFound reports an unknown entity id.
func NewNotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewTransactionStateError reports a nested or unbalanced begin/commit. Fatal
// to the in-flight operation; the boundary rolls back.
func NewTransactionStateError(message string) *DomainError {
	return NewDomainError(CodeTransactionState, message)
}

// NewIntegrityError reports a violation detected by a diagnostic scan. Never
// raised during normal operation and never auto-corrected.
func NewIntegrityError(message string) *DomainError {
	return NewDomainError(CodeIntegrity, message)
}

// Common domain errors
var (
	ErrNotFound      = NewNotFound("resource not found")
	ErrAlreadyExists = NewConstraintViolation("resource already exists")
	ErrInvalidInput  = NewValidationError("invalid input provided")
)

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsConstraintViolation reports whether err is a constraint violation.
func IsConstraintViolation(err error) bool { return hasCode(err, CodeConstraint) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsTransactionState reports whether err is a transaction state error.
func IsTransactionState(err error) bool { return hasCode(err, CodeTransactionState) }

// IsIntegrity reports whether err is an integrity error.
func IsIntegrity(err error) bool { return hasCode(err, CodeIntegrity) }
