package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// Storage-level unique constraint violations (invoice number per tenant, reconciliation
// triple, SIRET) are surfaced as this error.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is a member but lacks the required role.
var ErrForbidden = errors.New("forbidden")

// ErrImmutableRole is returned for any update or delete attempt on a persisted role.
var ErrImmutableRole = errors.New("roles are fixed and immutable")

// ErrDuplicateMembership is returned when a (user, tenant) membership already exists.
var ErrDuplicateMembership = errors.New("membership already exists for this user and tenant")

// ErrNotAMember is returned when the user has no active membership in the tenant.
var ErrNotAMember = errors.New("user is not an active member of this tenant")

// ErrLockedInvoice is returned when a mutation targets an invoice sealed by issuance.
var ErrLockedInvoice = errors.New("invoice is locked")

// ErrChainMismatch is returned by chain verification when a stored hash does not match.
var ErrChainMismatch = errors.New("invoice chain verification mismatch")

// ErrInvalidTransition is returned for invoice status changes outside the state machine.
var ErrInvalidTransition = errors.New("invalid invoice status transition")

// ErrProtectedReference is returned when a delete is blocked by referencing rows.
var ErrProtectedReference = errors.New("resource is still referenced")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a message.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewConflictError wraps ErrDuplicate with a message.
func NewConflictError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrDuplicate}
}

// NewValidationFailedError wraps ErrValidation with a message.
func NewValidationFailedError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewProtectedReferenceError wraps ErrProtectedReference with a message.
func NewProtectedReferenceError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrProtectedReference}
}

// ChainMismatchError identifies the first chain entry whose recomputed hash differs
// from the stored one.
type ChainMismatchError struct {
	TenantID  string
	InvoiceID string
	Seq       int64
	Expected  string
	Stored    string
	Reason    string
}

func (e *ChainMismatchError) Error() string {
	return fmt.Sprintf("%s: tenant %s invoice %s (seq %d): %s", ErrChainMismatch.Error(), e.TenantID, e.InvoiceID, e.Seq, e.Reason)
}

func (e *ChainMismatchError) Unwrap() error {
	return ErrChainMismatch
}
