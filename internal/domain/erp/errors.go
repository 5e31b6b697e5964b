package erp

import "errors"

// MalformedInputError signals that a storefront payload is missing a field
// the ERP record cannot be built without. Transformers raise it before any
// network call.
type MalformedInputError struct {
	Field string
}

// NewMalformedInputError creates a MalformedInputError for the named field.
func NewMalformedInputError(field string) *MalformedInputError {
	return &MalformedInputError{Field: field}
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return "erp: malformed input: missing " + e.Field
}

// IsMalformedInput reports whether err is (or wraps) a MalformedInputError.
func IsMalformedInput(err error) bool {
	var m *MalformedInputError
	return errors.As(err, &m)
}
