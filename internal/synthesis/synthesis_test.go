package synthesis_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/annolab/curator/internal/synthesis"
	"github.com/annolab/curator/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", synthesis.ErrNotFound, http.StatusNotFound},
		{"duplicate", synthesis.ErrDuplicate, http.StatusConflict},
		{"invalid request", synthesis.ErrInvalidRequest, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", synthesis.ErrNotFound), http.StatusNotFound},
		{"wrapped invalid request", fmt.Errorf("synthesize failed: %w", synthesis.ErrInvalidRequest), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := synthesis.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"task_id":     {"sentiment-v2"},
			"round":       {"1"},
			"description": {"sarcasm"},
		}

		f := synthesis.FiltersFromQuery(values)

		if f.TaskID == nil || *f.TaskID != "sentiment-v2" {
			t.Errorf("TaskID = %v, want sentiment-v2", f.TaskID)
		}
		if f.Round == nil || *f.Round != 1 {
			t.Errorf("Round = %v, want 1", f.Round)
		}
		if f.Description == nil || *f.Description != "sarcasm" {
			t.Errorf("Description = %v, want sarcasm", f.Description)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := synthesis.FiltersFromQuery(url.Values{})

		if f.TaskID != nil || f.Round != nil || f.Description != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("invalid round ignored", func(t *testing.T) {
		f := synthesis.FiltersFromQuery(url.Values{"round": {"first"}})
		if f.Round != nil {
			t.Errorf("Round = %v, want nil for invalid int", f.Round)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	proj := query.
		NewProjectionMap("public", "edge_case_categories", "c").
		Project("task_id", "TaskID").
		Project("round", "Round").
		Project("description", "Description")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := synthesis.Filters{}
		f.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT c.task_id, c.round, c.description FROM public.edge_case_categories c"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("all filters combine", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := synthesis.Filters{
			TaskID:      ptr("sentiment-v2"),
			Round:       ptr(2),
			Description: ptr("negation"),
		}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 3 {
			t.Errorf("args length = %d, want 3", len(args))
		}
	})
}
