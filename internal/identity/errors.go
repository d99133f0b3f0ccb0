package identity

import (
	"errors"
	"net/http"
)

// Domain errors for identity operations.
var (
	ErrNotFound = errors.New("example mapping not found")
	ErrCorrupt  = errors.New("identity mapping is corrupt")
)

// MapHTTPStatus maps identity domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
