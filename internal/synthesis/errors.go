package synthesis

import (
	"errors"
	"net/http"
)

// Domain errors for synthesis operations.
var (
	ErrNotFound       = errors.New("synthesis category not found")
	ErrDuplicate      = errors.New("synthesis category already exists")
	ErrInvalidRequest = errors.New("invalid synthesis request")
)

// MapHTTPStatus maps synthesis domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
