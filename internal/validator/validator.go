package validator

import (
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func NewValidator() *validator.Validate {
	validate = validator.New()
	return validate
}

// GetValidator returns the shared validator, initializing it on first
// use so DTO validation works in every entrypoint, not just the server.
func GetValidator() *validator.Validate {
	if validate == nil {
		NewValidator()
	}
	return validate
}

// ValidateRequest evaluates the struct tags of a request and converts
// failures into the caller-facing validation error shape, with the
// failing fields as reportable details.
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
