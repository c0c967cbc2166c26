package calc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies calculation failures so callers can react without
// string matching.
type ErrorKind string

const (
	// ErrMissingExchangeRate indicates a required currency conversion has no
	// supplied rate. The engine never substitutes a rate of 1.0.
	ErrMissingExchangeRate ErrorKind = "missing_exchange_rate"

	// ErrUnrecognizedValue indicates an enum-like input did not match any
	// known normalized value.
	ErrUnrecognizedValue ErrorKind = "unrecognized_value"

	// ErrMissingRequiredField indicates a phase's required input is absent.
	ErrMissingRequiredField ErrorKind = "missing_required_field"
)

// CalculationError is the typed error returned for any per-item or quote-level
// calculation failure. Phase is empty when the failure happens at the input
// boundary, before the pipeline runs.
type CalculationError struct {
	Kind  ErrorKind `json:"kind"`
	Phase Phase     `json:"phase,omitempty"`
	Field string    `json:"field,omitempty"`
	Value string    `json:"value,omitempty"`
}

func (e *CalculationError) Error() string {
	switch {
	case e.Phase != "" && e.Value != "":
		return fmt.Sprintf("%s: phase %s: field %q has unusable value %q", e.Kind, e.Phase, e.Field, e.Value)
	case e.Phase != "":
		return fmt.Sprintf("%s: phase %s: field %q", e.Kind, e.Phase, e.Field)
	case e.Value != "":
		return fmt.Sprintf("%s: field %q has unusable value %q", e.Kind, e.Field, e.Value)
	default:
		return fmt.Sprintf("%s: field %q", e.Kind, e.Field)
	}
}

// IsKind reports whether err is a *CalculationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CalculationError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

func missingRate(field string, currency Currency) *CalculationError {
	return &CalculationError{Kind: ErrMissingExchangeRate, Field: field, Value: string(currency)}
}

func missingField(phase Phase, field string) *CalculationError {
	return &CalculationError{Kind: ErrMissingRequiredField, Phase: phase, Field: field}
}

func unrecognized(field, value string) *CalculationError {
	return &CalculationError{Kind: ErrUnrecognizedValue, Field: field, Value: value}
}
