package errors

import (
	"fmt"
	"strings"
)

// MissingKeyError reports that the join key column is absent from one or
// more inputs after label normalization. It always halts the pipeline.
type MissingKeyError struct {
	Key     string
	Sources []string
}

// NewMissingKeyError creates a MissingKeyError for the named inputs
func NewMissingKeyError(key string, sources ...string) *MissingKeyError {
	return &MissingKeyError{Key: key, Sources: sources}
}

// Error implements the error interface
func (e *MissingKeyError) Error() string {
	if len(e.Sources) == 0 {
		return fmt.Sprintf("required column %q is missing", e.Key)
	}
	return fmt.Sprintf("required column %q is missing from %s", e.Key, strings.Join(e.Sources, " and "))
}

// AppError converts the error to the generic application error
func (e *MissingKeyError) AppError() *AppError {
	return NewAppError(ErrTypeMissingKey, e.Error(), nil).
		WithContext("key", e.Key).
		WithContext("sources", e.Sources)
}

// InputMissingError reports that one or both input files were not supplied.
type InputMissingError struct {
	Inputs []string
}

// NewInputMissingError creates an InputMissingError for the named inputs
func NewInputMissingError(inputs ...string) *InputMissingError {
	return &InputMissingError{Inputs: inputs}
}

// Error implements the error interface
func (e *InputMissingError) Error() string {
	if len(e.Inputs) == 0 {
		return "required input not supplied"
	}
	return fmt.Sprintf("required input not supplied: %s", strings.Join(e.Inputs, ", "))
}

// AppError converts the error to the generic application error
func (e *InputMissingError) AppError() *AppError {
	return NewAppError(ErrTypeInputMissing, e.Error(), nil).
		WithContext("inputs", e.Inputs)
}
