package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/repository"
	"courier/internal/service"
)

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
	// Not found
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDeliveryID),
		errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidPackageSize),
		errors.Is(err, service.ErrInvalidDeliveryType),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrMissingContact),
		errors.Is(err, service.ErrInvalidTrackingNumber),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest

	// Conflicts: lost races and illegal transitions
	case errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPaymentProcessed):
		return http.StatusConflict

	// Wrong actor or wrong role
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotADriver),
		errors.Is(err, service.ErrDriverNotVerified),
		errors.Is(err, service.ErrDriverNotAvailable):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
