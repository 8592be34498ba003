package gen

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/syssam/datagen/compiler/load"
)

// Sentinel errors for the three failure classes of a run. Every error
// returned by this package matches exactly one of them, except I/O errors
// which are surfaced as-is.
var (
	// ErrInvalidConfig indicates a usage error: unknown or conflicting
	// tokens, a missing target file, an unsupported target.
	ErrInvalidConfig = errors.New("datagen: invalid configuration")
	// ErrAmbiguousModel indicates source the generator cannot interpret
	// without guessing: a field without nullability marker, a member
	// conflicting with a generated one, a corrupt generated region.
	ErrAmbiguousModel = errors.New("datagen: ambiguous model")
	// ErrGenerationFailed indicates a generator could not produce code for
	// the model, e.g. a field of an unsupported type.
	ErrGenerationFailed = errors.New("datagen: code generation failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("datagen: config error for %s (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("datagen: config error for %s: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// ModelError represents an ambiguity in the analyzed file.
type ModelError struct {
	File    string
	Type    string
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	var b strings.Builder
	b.WriteString("datagen: ")
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Type != "" {
		b.WriteString(e.Type)
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ModelError.
func (e *ModelError) Is(target error) bool {
	return target == ErrAmbiguousModel
}

// NewModelError creates a new ModelError.
func NewModelError(file, typeName, field, message string) *ModelError {
	return &ModelError{
		File:    file,
		Type:    typeName,
		Field:   field,
		Message: message,
	}
}

// GenerationError represents a failure of a single feature generator.
type GenerationError struct {
	Feature string
	File    string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("datagen: generation error")
	if e.Feature != "" {
		b.WriteString(" in feature ")
		b.WriteString(e.Feature)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(feature, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Feature: feature,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsModelError reports whether the error is a ModelError.
func IsModelError(err error) bool {
	var modelErr *ModelError
	return errors.As(err, &modelErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// fromLoad converts an extractor error into this package's taxonomy.
func fromLoad(err error) error {
	var lerr *load.Error
	if !errors.As(err, &lerr) {
		return err
	}
	if lerr.Usage {
		option := lerr.File
		if lerr.Type != "" {
			option = lerr.Type
			if lerr.Field != "" {
				option += "." + lerr.Field
			}
		}
		return NewConfigError(option, nil, lerr.Message)
	}
	return NewModelError(lerr.File, lerr.Type, lerr.Field, lerr.Message)
}
