package annotations

import (
	"context"

	"github.com/annolab/curator/pkg/pagination"
)

// System defines the public contract for annotation domain operations.
type System interface {
	Handler() *Handler

	// AnnotateBatch annotates every example in the command, fitting the
	// task's topical clustering model on first use.
	AnnotateBatch(ctx context.Context, cmd AnnotateCommand) (*Result, error)

	// AnnotateOne annotates exactly one example against a previously fitted
	// topical model. Returns ErrNoModel when the task has none.
	AnnotateOne(ctx context.Context, cmd AnnotateCommand) (*Result, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)
}
