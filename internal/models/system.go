package models

import "context"

// FitFunc fits a fresh model for a (task, purpose) pair that has none yet.
type FitFunc func(ctx context.Context) (*Model, error)

// System defines the public contract for clustering model persistence.
type System interface {
	// Find returns the persisted model for (taskID, purpose), or ErrNotFound.
	Find(ctx context.Context, taskID string, purpose Purpose) (*Model, error)

	// FitOnce returns the persisted model for (taskID, purpose), fitting and
	// persisting one via fit only when none exists. Concurrent callers for
	// the same pair are serialized in-process; the first persisted model
	// wins and later fits are discarded.
	FitOnce(ctx context.Context, taskID string, purpose Purpose, fit FitFunc) (*Model, error)
}
