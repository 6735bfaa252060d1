package store

import (
	"context"

	"wikitextifier/pkg/model"
)

// LabelStore persists resolved label entries keyed by (entity ID, language).
// Implementations must be safe for concurrent use.
type LabelStore interface {
	// GetLabel returns the stored entry for key. A store failure is
	// reported as a miss; the caller treats the cache as an optimization.
	GetLabel(ctx context.Context, key model.LabelKey) (model.LabelEntry, bool)

	// GetLabelsBatch returns all stored entries for the given keys.
	// Missing keys are simply absent from the result.
	GetLabelsBatch(ctx context.Context, keys []model.LabelKey) (map[model.LabelKey]model.LabelEntry, error)

	// PutLabel stores or replaces the entry for key.
	PutLabel(ctx context.Context, key model.LabelKey, entry model.LabelEntry) error

	// PutLabelsBatch stores or replaces all given entries.
	PutLabelsBatch(ctx context.Context, entries map[model.LabelKey]model.LabelEntry) error

	// Close closes the store.
	Close() error
}
