package models

import (
	"errors"
	"net/http"
)

// Domain errors for clustering model persistence.
var (
	ErrNotFound       = errors.New("clustering model not found")
	ErrDuplicate      = errors.New("clustering model already exists")
	ErrCorrupt        = errors.New("persisted clustering model is corrupt")
	ErrInvalidPurpose = errors.New("invalid model purpose")
)

// MapHTTPStatus maps model domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidPurpose) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
