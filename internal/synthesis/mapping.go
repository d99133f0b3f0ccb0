package synthesis

import (
	"net/url"
	"strconv"

	"github.com/annolab/curator/pkg/query"
)

var projection = query.
	NewProjectionMap("public", "edge_case_categories", "c").
	Project("id", "ID").
	Project("task_id", "TaskID").
	Project("round", "Round").
	Project("edge_case_id", "EdgeCaseID").
	Project("description", "Description").
	Project("member_uids", "MemberUIDs").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field: "EdgeCaseID",
}

// Filters contains optional filtering criteria for category queries.
// Nil fields are ignored. TaskID and Round use exact matching.
// Description uses case-insensitive contains matching.
type Filters struct {
	TaskID      *string `json:"task_id,omitempty"`
	Round       *int    `json:"round,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TaskID", f.TaskID).
		WhereEquals("Round", f.Round).
		WhereContains("Description", f.Description)
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

	if d := values.Get("description"); d != "" {
		f.Description = &d
	}

	return f
}
