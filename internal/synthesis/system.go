package synthesis

import (
	"context"

	"github.com/annolab/curator/pkg/pagination"
)

// System defines the public contract for synthesis domain operations.
type System interface {
	Handler() *Handler

	// Synthesize clusters the submitted records' edge-case rules,
	// categorizes each cluster, merges near-duplicate categories, and
	// returns the consolidated rule set with per-record assignments.
	Synthesize(ctx context.Context, cmd SynthesizeCommand) (*Result, error)

	ListCategories(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Category], error)
}
