package annotations_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/annolab/curator/internal/annotations"
	"github.com/annolab/curator/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", annotations.ErrNotFound, http.StatusNotFound},
		{"duplicate", annotations.ErrDuplicate, http.StatusConflict},
		{"invalid request", annotations.ErrInvalidRequest, http.StatusBadRequest},
		{"no fitted model", annotations.ErrNoModel, http.StatusConflict},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", annotations.ErrNotFound), http.StatusNotFound},
		{"wrapped invalid request", fmt.Errorf("annotate failed: %w", annotations.ErrInvalidRequest), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annotations.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"task_id":       {"sentiment-v2"},
			"round":         {"3"},
			"label":         {"-1"},
			"new_edge_case": {"true"},
			"salvaged":      {"false"},
			"text":          {"sarcasm"},
		}

		f := annotations.FiltersFromQuery(values)

		if f.TaskID == nil || *f.TaskID != "sentiment-v2" {
			t.Errorf("TaskID = %v, want sentiment-v2", f.TaskID)
		}
		if f.Round == nil || *f.Round != 3 {
			t.Errorf("Round = %v, want 3", f.Round)
		}
		if f.Label == nil || *f.Label != "-1" {
			t.Errorf("Label = %v, want -1", f.Label)
		}
		if f.NewEdgeCase == nil || !*f.NewEdgeCase {
			t.Errorf("NewEdgeCase = %v, want true", f.NewEdgeCase)
		}
		if f.Salvaged == nil || *f.Salvaged {
			t.Errorf("Salvaged = %v, want false", f.Salvaged)
		}
		if f.Text == nil || *f.Text != "sarcasm" {
			t.Errorf("Text = %v, want sarcasm", f.Text)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := annotations.FiltersFromQuery(url.Values{})

		if f.TaskID != nil || f.Round != nil || f.Label != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
		if f.NewEdgeCase != nil || f.Salvaged != nil || f.Text != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})

	t.Run("invalid round ignored", func(t *testing.T) {
		f := annotations.FiltersFromQuery(url.Values{"round": {"three"}})
		if f.Round != nil {
			t.Errorf("Round = %v, want nil for invalid int", f.Round)
		}
	})

	t.Run("invalid bool ignored", func(t *testing.T) {
		f := annotations.FiltersFromQuery(url.Values{"new_edge_case": {"maybe"}})
		if f.NewEdgeCase != nil {
			t.Errorf("NewEdgeCase = %v, want nil for invalid bool", f.NewEdgeCase)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	proj := query.
		NewProjectionMap("public", "annotations", "a").
		Project("task_id", "TaskID").
		Project("round", "Round").
		Project("label", "Label").
		Project("new_edge_case", "NewEdgeCase").
		Project("salvaged", "Salvaged").
		Project("text", "Text")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := annotations.Filters{}
		f.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT a.task_id, a.round, a.label, a.new_edge_case, a.salvaged, a.text FROM public.annotations a"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("task and round filters", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := annotations.Filters{TaskID: ptr("sentiment-v2"), Round: ptr(2)}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 2 {
			t.Fatalf("args length = %d, want 2", len(args))
		}
	})

	t.Run("all filters combine", func(t *testing.T) {
		b := query.NewBuilder(proj)
		f := annotations.Filters{
			TaskID:      ptr("sentiment-v2"),
			Round:       ptr(1),
			Label:       ptr("2"),
			NewEdgeCase: ptr(true),
			Salvaged:    ptr(false),
			Text:        ptr("irony"),
		}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 6 {
			t.Errorf("args length = %d, want 6", len(args))
		}
	})
}
