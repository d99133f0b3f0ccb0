// Package annotations implements the annotation domain for Curator.
// It resolves stable uids for submitted texts, clusters them in embedding
// space, drives per-example LLM annotation, and persists the resulting
// records round by round.
package annotations

import (
	"time"

	"github.com/google/uuid"
)

// Record is one annotated example: the parsed LLM judgment plus the
// example's topical cluster assignment and 2-D projection.
//
// Projection fields are pointers so that non-finite values and projections
// that were never computed both serialize as null.
type Record struct {
	ID                   uuid.UUID `json:"id"`
	TaskID               string    `json:"task_id"`
	Round                int       `json:"round"`
	UID                  uuid.UUID `json:"uid"`
	Text                 string    `json:"text_to_annotate"`
	Cluster              int       `json:"cluster"`
	PcaX                 *float64  `json:"pca_x"`
	PcaY                 *float64  `json:"pca_y"`
	Raw                  string    `json:"raw_annotations"`
	Analysis             string    `json:"analyses"`
	Label                string    `json:"annotation"`
	Confidence           float64   `json:"confidence"`
	NewEdgeCase          bool      `json:"new_edge_case"`
	GuidelineImprovement string    `json:"guideline_improvement"`
	Salvaged             bool      `json:"salvaged"`
	EdgeCaseID           *int      `json:"edge_case_id,omitempty"`
	EdgeCasePcaX         *float64  `json:"edge_case_pca_x,omitempty"`
	EdgeCasePcaY         *float64  `json:"edge_case_pca_y,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// AnnotateCommand carries one annotation request.
type AnnotateCommand struct {
	TaskID    string   `json:"task_id" validate:"required"`
	Examples  []string `json:"examples" validate:"required,min=1"`
	Guideline string   `json:"annotation_guideline" validate:"required"`
	Round     int      `json:"reannotate_round" validate:"gte=0"`
}

// Result is the annotation response payload.
type Result struct {
	Annotations []Record `json:"annotations"`
	Cost        float64  `json:"cost"`
}
