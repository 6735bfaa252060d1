package labels

import (
	"context"
	"log/slog"
	"time"

	"wikitextifier/pkg/model"
	"wikitextifier/pkg/store"
	"wikitextifier/pkg/tracker"
)

// Cache layers TTL handling and metrics over a LabelStore. Entries older
// than the TTL are treated as misses; pruning them from disk happens
// separately. Store failures degrade to misses, never to request errors.
type Cache struct {
	store   store.LabelStore
	tracker *tracker.Tracker
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A nil logger falls back
// to slog.Default; a nil tracker disables the counters.
func NewCache(s store.LabelStore, ttl time.Duration, t *tracker.Tracker, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   s,
		tracker: t,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns fresh cached entries for the given IDs in lang, and the
// IDs that were absent or expired.
func (c *Cache) Lookup(ctx context.Context, ids []model.EntityID, lang string) (map[model.EntityID]model.LabelEntry, []model.EntityID) {
	found := make(map[model.EntityID]model.LabelEntry, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]model.LabelKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, model.LabelKey{ID: id, Lang: lang})
	}

	stored, err := c.store.GetLabelsBatch(ctx, keys)
	if err != nil {
		c.logger.Warn("Label cache read failed, treating all as misses", "error", err)
		stored = nil
	}

	cutoff := c.now().Add(-c.ttl)
	var missing []model.EntityID
	for _, id := range ids {
		entry, ok := stored[model.LabelKey{ID: id, Lang: lang}]
		if !ok || entry.ResolvedAt.Before(cutoff) {
			if c.tracker != nil {
				c.tracker.TrackCacheMiss("labels")
			}
			missing = append(missing, id)
			continue
		}
		if c.tracker != nil {
			c.tracker.TrackCacheHit("labels")
		}
		found[id] = entry
	}

	return found, missing
}

// Store writes entries under lang, stamping ResolvedAt. A write failure
// is logged and swallowed; the entries will simply be re-fetched later.
func (c *Cache) Store(ctx context.Context, lang string, entries map[model.EntityID]model.LabelEntry) {
	if len(entries) == 0 {
		return
	}

	now := c.now()
	batch := make(map[model.LabelKey]model.LabelEntry, len(entries))
	for id, entry := range entries {
		entry.ResolvedAt = now
		batch[model.LabelKey{ID: id, Lang: lang}] = entry
	}

	if err := c.store.PutLabelsBatch(ctx, batch); err != nil {
		c.logger.Warn("Label cache write failed", "count", len(batch), "error", err)
	}
}
