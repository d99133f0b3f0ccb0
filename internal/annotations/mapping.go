package annotations

import (
	"net/url"
	"strconv"

	"github.com/annolab/curator/pkg/query"
	"github.com/annolab/curator/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "annotations", "a").
	Project("id", "ID").
	Project("task_id", "TaskID").
	Project("round", "Round").
	Project("uid", "UID").
	Project("text", "Text").
	Project("cluster", "Cluster").
	Project("pca_x", "PcaX").
	Project("pca_y", "PcaY").
	Project("raw", "Raw").
	Project("analysis", "Analysis").
	Project("label", "Label").
	Project("confidence", "Confidence").
	Project("new_edge_case", "NewEdgeCase").
	Project("guideline_improvement", "GuidelineImprovement").
	Project("salvaged", "Salvaged").
	Project("edge_case_id", "EdgeCaseID").
	Project("edge_case_pca_x", "EdgeCasePcaX").
	Project("edge_case_pca_y", "EdgeCasePcaY").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for annotation queries.
// Nil fields are ignored. TaskID, Round, Label, NewEdgeCase, and Salvaged
// use exact matching. Text uses case-insensitive contains matching.
type Filters struct {
	TaskID      *string `json:"task_id,omitempty"`
	Round       *int    `json:"round,omitempty"`
	Label       *string `json:"label,omitempty"`
	NewEdgeCase *bool   `json:"new_edge_case,omitempty"`
	Salvaged    *bool   `json:"salvaged,omitempty"`
	Text        *string `json:"text,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TaskID", f.TaskID).
		WhereEquals("Round", f.Round).
		WhereEquals("Label", f.Label).
		WhereEquals("NewEdgeCase", f.NewEdgeCase).
		WhereEquals("Salvaged", f.Salvaged).
		WhereContains("Text", f.Text)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("task_id"); t != "" {
		f.TaskID = &t
	}

	if r := values.Get("round"); r != "" {
		if v, err := strconv.Atoi(r); err == nil {
			f.Round = &v
		}
	}

	if l := values.Get("label"); l != "" {
		f.Label = &l
	}

	if n := values.Get("new_edge_case"); n != "" {
		if v, err := strconv.ParseBool(n); err == nil {
			f.NewEdgeCase = &v
		}
	}

	if s := values.Get("salvaged"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Salvaged = &v
		}
	}

	if t := values.Get("text"); t != "" {
		f.Text = &t
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.TaskID,
		&r.Round,
		&r.UID,
		&r.Text,
		&r.Cluster,
		&r.PcaX,
		&r.PcaY,
		&r.Raw,
		&r.Analysis,
		&r.Label,
		&r.Confidence,
		&r.NewEdgeCase,
		&r.GuidelineImprovement,
		&r.Salvaged,
		&r.EdgeCaseID,
		&r.EdgeCasePcaX,
		&r.EdgeCasePcaY,
		&r.CreatedAt,
	)
	return r, err
}
