// Package common defines shared constants and sentinel errors used across
// the files manager layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorFolderContent is returned when content is requested for a folder.
	ErrorFolderContent = errors.New("A folder doesn't have content")
)

// Validation reasons reported to API clients verbatim.
const (
	ReasonMissingEmail       = "Missing email"
	ReasonMissingPassword    = "Missing password"
	ReasonAlreadyExist       = "Already exist"
	ReasonMissingName        = "Missing name"
	ReasonMissingType        = "Missing type"
	ReasonMissingData        = "Missing data"
	ReasonInvalidData        = "Invalid data"
	ReasonParentNotFound     = "Parent not found"
	ReasonParentIsNotAFolder = "Parent is not a folder"
)

// ValidationError carries a machine-readable reason for a rejected input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError returns a *ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// ValidationReason reports the reason of a *ValidationError found in err's chain.
func ValidationReason(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}
