package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEvent marks schema violations that tag-based validation cannot
// express. Handlers map it, together with validator errors, to a 422.
var ErrInvalidEvent = errors.New("invalid event")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs tag-based validation on any request or domain struct.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}

// FieldError is one field-level validation failure, reported back to the
// caller in the error envelope.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// FieldErrors extracts field-level details from a validation error.
// Returns nil when err carries no per-field information.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: fe.Namespace(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
