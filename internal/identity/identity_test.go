package identity_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/annolab/curator/internal/identity"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", identity.ErrNotFound, http.StatusNotFound},
		{"corrupt", identity.ErrCorrupt, http.StatusInternalServerError},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("lookup failed: %w", identity.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identity.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
