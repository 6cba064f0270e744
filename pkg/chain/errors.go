package chain

import "errors"

// Sequencing errors
var (
	ErrLastStep        = errors.New("cannot remove the last remaining step")
	ErrStepNotFound    = errors.New("step not found in chain")
	ErrNotBranchPoint  = errors.New("step is not flagged as a branch point")
	ErrInvalidPosition = errors.New("target position out of range")
)

// ValidationError is a user-correctable pre-save failure. The message is
// exactly what the editor surfaces inline.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
