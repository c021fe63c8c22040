package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bikeride/internal/repository"
	"bikeride/internal/service"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidJourneyID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrBookingMismatch):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrBookingHasOpenJourney),
		errors.Is(err, service.ErrBookingNotActive),
		errors.Is(err, service.ErrJourneyNotActive),
		errors.Is(err, service.ErrJourneyNotCompleted):
		return http.StatusConflict

	// Forbidden
	case errors.Is(err, service.ErrCustomerMismatch):
		return http.StatusForbidden

	// Storage outages, safe to retry
	case errors.Is(err, service.ErrEphemeralStoreUnavailable),
		errors.Is(err, service.ErrDurablePersistenceFailure):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
