package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/action-deck/internal/api/shared"
	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/entitlement"
	"github.com/phrazzld/action-deck/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// The purchase store is upstream of us.
	case errors.Is(err, entitlement.ErrRestoreFailed):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled),
		errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, entitlement.ErrRestoreFailed):
		return "Could not restore purchases"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, context.Canceled):
		return "Request was cancelled"
	case errors.Is(err, store.ErrClosed):
		return "Service is shutting down"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError responds with the status and safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// SanitizeValidationError turns validator output into a short message that
// names the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "oneof":
		return "invalid value"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}
