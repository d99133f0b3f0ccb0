package annotations

import (
	"errors"
	"net/http"
)

// Domain errors for annotation operations.
var (
	ErrNotFound       = errors.New("annotation record not found")
	ErrDuplicate      = errors.New("annotation record already exists")
	ErrInvalidRequest = errors.New("invalid annotation request")
	ErrNoModel        = errors.New("no topical clustering model fitted for task")
)

// MapHTTPStatus maps annotation domain errors to appropriate HTTP status codes.
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
	if errors.Is(err, ErrNoModel) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
