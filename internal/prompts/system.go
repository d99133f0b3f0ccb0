package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/annolab/curator/pkg/llm"
	"github.com/annolab/curator/pkg/pagination"
)

// System defines the public contract for prompt domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Instructions returns the effective template for a stage: the active
	// database override if one exists, otherwise the built-in default.
	Instructions(ctx context.Context, stage Stage) (string, error)

	// Annotation composes the completion request for one example text.
	Annotation(ctx context.Context, guideline, text string) (llm.Prompt, error)

	// Aggregation composes the per-cluster categorization request over a
	// numbered edge-case rule list.
	Aggregation(ctx context.Context, guideline string, rules []string) (llm.Prompt, error)

	// Merge composes the cross-cluster merge request over a numbered
	// category description list.
	Merge(ctx context.Context, guideline string, descriptions []string) (llm.Prompt, error)
}
