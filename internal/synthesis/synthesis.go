// Package synthesis implements the edge-case synthesis domain for Curator.
// It clusters candidate edge-case rules in embedding space, asks an LLM to
// partition each cluster into named categories, merges near-duplicate
// categories across clusters, and assigns each resulting category a dense
// integer id.
package synthesis

import (
	"time"

	"github.com/google/uuid"
)

// InputRecord is one annotation result submitted for synthesis. Only
// records whose improvement text is not the EMPTY sentinel participate.
type InputRecord struct {
	UID                  uuid.UUID `json:"uid" validate:"required"`
	Text                 string    `json:"text_to_annotate"`
	Raw                  string    `json:"raw_annotations"`
	Analysis             string    `json:"analyses"`
	Label                string    `json:"annotation"`
	Confidence           float64   `json:"confidence" validate:"gte=0,lte=100"`
	GuidelineImprovement string    `json:"guideline_improvement" validate:"required"`
}

// SynthesizeCommand carries one synthesis request.
type SynthesizeCommand struct {
	TaskID    string        `json:"task_id" validate:"required"`
	Records   []InputRecord `json:"annotation_result" validate:"required,min=1,dive"`
	Guideline string        `json:"annotation_guideline" validate:"required"`
	Round     int           `json:"reannotate_round" validate:"gte=0"`
}

// ClusteredRecord is one synthesized record in the response: the input
// record enriched with its category assignment and 2-D projection.
// EdgeCaseID is nil for records the LLM never assigned to a category.
type ClusteredRecord struct {
	Text                 string    `json:"text_to_annotate"`
	UID                  uuid.UUID `json:"uid"`
	EdgeCaseID           *int      `json:"edge_case_id"`
	PcaX                 *float64  `json:"pca_x"`
	PcaY                 *float64  `json:"pca_y"`
	Raw                  string    `json:"raw_annotations"`
	Analysis             string    `json:"analyses"`
	Label                string    `json:"annotation"`
	Confidence           float64   `json:"confidence"`
	GuidelineImprovement string    `json:"guideline_improvement"`
	LowLevelImprovement  string    `json:"low_level_guideline_improvement"`
}

// Result is the synthesis response payload. Suggestions maps "edge_case_N"
// keys to merged category descriptions.
type Result struct {
	Suggestions         map[string]string `json:"suggestions"`
	ImprovementClusters []ClusteredRecord `json:"improvement_clusters"`
	DroppedEdgeCases    int               `json:"dropped_edge_cases"`
	Cost                float64           `json:"cost"`
}

// Category is one persisted synthesized category for a run.
type Category struct {
	ID          uuid.UUID   `json:"id"`
	TaskID      string      `json:"task_id"`
	Round       int         `json:"round"`
	EdgeCaseID  int         `json:"edge_case_id"`
	Description string      `json:"description"`
	MemberUIDs  []uuid.UUID `json:"member_uids"`
	CreatedAt   time.Time   `json:"created_at"`
}
