// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Authentication errors. All of them unwrap to ErrAuth so call sites can
// treat the family uniformly.
var (
	ErrAuth                 = errors.New("authentication failed")
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrRateLimited          = fmt.Errorf("%w: too many attempts", ErrAuth)
	ErrConfirmationRequired = fmt.Errorf("%w: registration pending confirmation", ErrAuth)
	ErrProfileCreation      = fmt.Errorf("%w: profile creation failed", ErrAuth)
)

// Validation errors, resolved locally before any storage call is made.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateCategory = fmt.Errorf("%w: category name already exists", ErrValidation)
	ErrCategoryInUse     = fmt.Errorf("%w: category is referenced by transactions", ErrValidation)
	ErrInvalidInput      = fmt.Errorf("%w: invalid input", ErrValidation)
)

// Storage errors. Access-policy denials deliberately surface as ErrNotFound,
// not as a distinguishable "forbidden" case.
var (
	ErrStorage  = errors.New("storage operation failed")
	ErrNotFound = errors.New("not found")
)

// AI collaborator errors. Callers must degrade gracefully instead of
// propagating these to the user as hard failures.
var (
	ErrAIUnavailable = errors.New("analysis unavailable")
	ErrNoReceiptData = errors.New("no data extracted from receipt")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message to surface for err: the wrapped
// user-facing text when present, otherwise a friendly rewrite for the
// known error families. Provider-specific texts are translated here, at a
// single choke point, instead of substring-matching in UI code.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	switch {
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts. Wait a moment and try again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrConfirmationRequired):
		return "Check your email to confirm your registration, then log in."
	case errors.Is(err, ErrAuth):
		return "Could not sign you in. Try again."
	case errors.Is(err, ErrDuplicateCategory):
		return "A category with that name already exists."
	case errors.Is(err, ErrCategoryInUse):
		return "This category still has transactions. Move or delete them first."
	case errors.Is(err, ErrValidation):
		return "Some fields are invalid. Review them and try again."
	case errors.Is(err, ErrNoReceiptData):
		return "Could not read the receipt. Try again with a clearer image."
	case errors.Is(err, ErrAIUnavailable):
		return "Could not generate the analysis right now."
	case errors.Is(err, ErrNotFound):
		return "Record not found."
	default:
		return "Something went wrong. Try again."
	}
}
