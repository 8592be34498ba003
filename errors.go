package datagen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors returned by generated code.
var (
	// ErrNilField is returned when a non-null field receives a nil value.
	ErrNilField = errors.New("datagen: required field is nil")

	// ErrInvalidValue is returned when a field holds a value outside its
	// declared domain, e.g. an enum value without a matching constant.
	ErrInvalidValue = errors.New("datagen: invalid field value")

	// ErrBuilderReused is returned by Build when a builder is used twice.
	ErrBuilderReused = errors.New("datagen: builder already built")

	// ErrMalformed is returned when decoding input that was not produced by
	// the matching generated encoder.
	ErrMalformed = errors.New("datagen: malformed encoding")
)

// FieldError represents a constraint violation on a single field of a
// generated type.
type FieldError struct {
	Type  string // Type name
	Field string // Field name
	Value any    // Offending value (nil for nil-field errors)
	err   error  // Sentinel
}

// Error returns the error string.
func (e *FieldError) Error() string {
	switch {
	case e.err == ErrNilField:
		return fmt.Sprintf("datagen: %s.%s must not be nil", e.Type, e.Field)
	case e.Value != nil:
		return fmt.Sprintf("datagen: %s.%s has invalid value %v", e.Type, e.Field, e.Value)
	default:
		return fmt.Sprintf("datagen: %s.%s is invalid", e.Type, e.Field)
	}
}

// Is reports whether the target matches the sentinel of this FieldError.
// This allows errors.Is(err, ErrNilField) to return true.
func (e *FieldError) Is(target error) bool {
	return target == e.err
}

// NewNilFieldError returns a FieldError for a nil value in a non-null field.
func NewNilFieldError(typ, field string) *FieldError {
	return &FieldError{Type: typ, Field: field, err: ErrNilField}
}

// NewInvalidValueError returns a FieldError for a value outside the field's domain.
func NewInvalidValueError(typ, field string, value any) *FieldError {
	return &FieldError{Type: typ, Field: field, Value: value, err: ErrInvalidValue}
}

// IsNilField returns true if the error is a nil-field violation.
func IsNilField(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNilField)
}

// IsInvalidValue returns true if the error is an invalid-value violation.
func IsInvalidValue(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidValue)
}

// MalformedError describes why an encoded value could not be decoded.
type MalformedError struct {
	Type   string
	Reason string
}

// Error returns the error string.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("datagen: malformed %s encoding: %s", e.Type, e.Reason)
}

// Is reports whether the target error matches ErrMalformed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// NewMalformedError returns a new MalformedError.
func NewMalformedError(typ, format string, args ...any) *MalformedError {
	return &MalformedError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}
