// Package foundation holds small generic helpers shared by the configuration layer.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docrender/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects field errors. The zero value is valid.
type ValidationResult struct {
	Errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid returns a result without errors.
func Valid() ValidationResult { return ValidationResult{} }

// Invalid returns a result carrying errs.
func Invalid(errs ...FieldError) ValidationResult { return ValidationResult{Errors: errs} }

// Fail is shorthand for a single-field failure.
func Fail(field, code, format string, args ...any) ValidationResult {
	return Invalid(FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

// IsValid reports whether no errors were collected.
func (vr ValidationResult) IsValid() bool { return len(vr.Errors) == 0 }

// Combine merges two results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if other.IsValid() {
		return vr
	}
	if vr.IsValid() {
		return other
	}
	merged := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	merged = append(merged, vr.Errors...)
	return Invalid(append(merged, other.Errors...)...)
}

// ToError converts an invalid result into a validation error listing every field.
func (vr ValidationResult) ToError() error {
	if vr.IsValid() {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
		fields = append(fields, fe.Field)
	}
	return errors.ValidationError(strings.Join(messages, "; ")).
		WithContext("fields", fields).
		Build()
}

// ValidatorChain runs validators in order and collects every failure.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain from validators.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator.
func (vc *ValidatorChain[T]) Add(v Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, v)
	return vc
}

func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, v := range vc.validators {
		result = result.Combine(v(value))
	}
	return result
}

// Required fails for blank strings.
func Required(field string) Validator[string] {
	return func(s string) ValidationResult {
		if strings.TrimSpace(s) == "" {
			return Fail(field, "required", "is required")
		}
		return Valid()
	}
}

// NonNegative fails for values below zero.
func NonNegative(field string) Validator[int] {
	return func(n int) ValidationResult {
		if n < 0 {
			return Fail(field, "range", "must not be negative (got %d)", n)
		}
		return Valid()
	}
}

// OneOf fails when the value is not in allowed.
func OneOf[T comparable](field string, allowed []T) Validator[T] {
	set := make(map[T]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(value T) ValidationResult {
		if _, ok := set[value]; !ok {
			return Fail(field, "one_of", "must be one of %v (got %v)", allowed, value)
		}
		return Valid()
	}
}
