package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the tax computation engine. The tax-specific ones
// (missing price, unknown currency, unresolved precision, cyclic
// definition) exist because silent defaults in those paths are the class
// of cent-drift bug the engine is built to prevent.
var (
	ErrNotFound            = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists       = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation          = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation    = new(ErrCodeInvalidOperation, "invalid operation")
	ErrMissingPrice        = new(ErrCodeMissingPrice, "line has quantity but no price")
	ErrUnknownCurrency     = new(ErrCodeUnknownCurrency, "unknown currency")
	ErrUnresolvedPrecision = new(ErrCodeUnresolvedPrecision, "currency precision could not be resolved")
	ErrCyclicDefinition    = new(ErrCodeCyclicDefinition, "cyclic tax definition")
	ErrHTTPClient          = new(ErrCodeHTTPClient, "http client error")
	ErrSystem              = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:            http.StatusNotFound,
		ErrAlreadyExists:       http.StatusConflict,
		ErrValidation:          http.StatusBadRequest,
		ErrInvalidOperation:    http.StatusBadRequest,
		ErrMissingPrice:        http.StatusBadRequest,
		ErrUnknownCurrency:     http.StatusBadRequest,
		ErrUnresolvedPrecision: http.StatusBadRequest,
		ErrCyclicDefinition:    http.StatusBadRequest,
		ErrHTTPClient:          http.StatusBadGateway,
		ErrSystem:              http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound            = "not_found"
	ErrCodeAlreadyExists       = "already_exists"
	ErrCodeValidation          = "validation_error"
	ErrCodeInvalidOperation    = "invalid_operation"
	ErrCodeMissingPrice        = "missing_price"
	ErrCodeUnknownCurrency     = "unknown_currency"
	ErrCodeUnresolvedPrecision = "unresolved_precision"
	ErrCodeCyclicDefinition    = "cyclic_tax_definition"
	ErrCodeHTTPClient          = "http_client_error"
	ErrCodeSystemError         = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMissingPrice checks if an error came from a priced line missing its price
func IsMissingPrice(err error) bool {
	return errors.Is(err, ErrMissingPrice)
}

// IsUnknownCurrency checks if an error came from an unresolvable currency
func IsUnknownCurrency(err error) bool {
	return errors.Is(err, ErrUnknownCurrency)
}

// IsUnresolvedPrecision checks if an error came from unresolved currency precision
func IsUnresolvedPrecision(err error) bool {
	return errors.Is(err, ErrUnresolvedPrecision)
}

// IsCyclicDefinition checks if an error came from a cyclic tax definition graph
func IsCyclicDefinition(err error) bool {
	return errors.Is(err, ErrCyclicDefinition)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
