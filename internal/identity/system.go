package identity

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for identity mapping operations.
type System interface {
	// Resolve returns the uid for text under taskID, minting and persisting
	// a new uid on first sight.
	Resolve(ctx context.Context, taskID, text string) (uuid.UUID, error)

	// ResolveBatch resolves uids for texts in order. Identical texts within
	// one call resolve to one uid, and texts seen in prior calls resolve to
	// their previously assigned uid. Only genuinely new texts are persisted.
	ResolveBatch(ctx context.Context, taskID string, texts []string) ([]uuid.UUID, error)

	// Lookup returns the text previously mapped to uid under taskID.
	Lookup(ctx context.Context, taskID string, uid uuid.UUID) (string, error)
}
