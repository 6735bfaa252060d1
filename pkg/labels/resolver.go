package labels

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wikitextifier/pkg/config"
	"wikitextifier/pkg/model"
	"wikitextifier/pkg/wikidata"
)

// LabelFetcher is the remote side of batch resolution.
type LabelFetcher interface {
	FetchLabels(ctx context.Context, ids []model.EntityID, langs []string) (map[model.EntityID]wikidata.EntityLabels, error)
}

// Resolver turns entity IDs into label entries. It consults the cache
// first, fetches the rest in bounded-concurrency batches, applies the
// language fallback chain, and writes everything it learned back to the
// cache. IDs whose batch failed remotely stay absent from the result;
// IDs the remote confirmed unlabeled come back as negative entries.
type Resolver struct {
	fetcher LabelFetcher
	cache   *Cache
	logger  *slog.Logger

	batchSize     int
	maxInFlight   int
	batchTimeout  time.Duration
	fallbackLangs []string
}

// NewResolver creates a resolver from the resolver and labels config
// sections.
func NewResolver(f LabelFetcher, c *Cache, batchSize int, rcfg config.ResolverConfig, lcfg config.LabelsConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	maxInFlight := rcfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &Resolver{
		fetcher:       f,
		cache:         c,
		logger:        logger,
		batchSize:     batchSize,
		maxInFlight:   maxInFlight,
		batchTimeout:  time.Duration(rcfg.BatchTimeout),
		fallbackLangs: lcfg.FallbackLangs,
	}
}

// Resolve returns a label entry for as many of the given IDs as
// possible, in lang. fallbackLang, when non-empty, replaces the
// configured fallback languages for this request. The returned map may
// be smaller than ids when remote batches fail; it is never larger.
func (r *Resolver) Resolve(ctx context.Context, ids []model.EntityID, lang, fallbackLang string) (map[model.EntityID]model.LabelEntry, error) {
	chain := FallbackChain(lang, fallbackLang, r.fallbackLangs)

	resolved, missing := r.cache.Lookup(ctx, ids, lang)
	if len(missing) == 0 {
		return resolved, nil
	}

	var (
		mu      sync.Mutex
		fetched = make(map[model.EntityID]model.LabelEntry)
		wg      sync.WaitGroup
		sem     = make(chan struct{}, r.maxInFlight)
	)

	for start := 0; start < len(missing); start += r.batchSize {
		end := start + r.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			remote, err := r.fetchChunk(ctx, chunk, chain)
			if err != nil {
				r.logger.Warn("Label batch failed", "ids", len(chunk), "error", err)
				return
			}

			mu.Lock()
			for id, el := range remote {
				fetched[id] = entryFromChain(el, chain)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for id, entry := range fetched {
		resolved[id] = entry
	}
	if err := ctx.Err(); err != nil {
		// Too late to write the cache, but the caller still gets every
		// entry that resolved before the deadline.
		return resolved, err
	}

	r.cache.Store(ctx, lang, fetched)
	return resolved, nil
}

// fetchChunk calls the remote service for one chunk, retrying once.
func (r *Resolver) fetchChunk(ctx context.Context, chunk []model.EntityID, chain []string) (map[model.EntityID]wikidata.EntityLabels, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bctx := ctx
		if r.batchTimeout > 0 {
			var cancel context.CancelFunc
			bctx, cancel = context.WithTimeout(ctx, r.batchTimeout)
			defer cancel()
		}

		remote, err := r.fetcher.FetchLabels(bctx, chunk, chain)
		if err == nil {
			return remote, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// FallbackChain builds the ordered list of languages to consult:
// requested first, then "mul", then the per-request or configured
// fallbacks, then "en". Duplicates are dropped.
func FallbackChain(requested, override string, configured []string) []string {
	candidates := make([]string, 0, len(configured)+3)
	candidates = append(candidates, requested, "mul")
	if override != "" {
		candidates = append(candidates, override)
	} else {
		candidates = append(candidates, configured...)
	}
	candidates = append(candidates, "en")

	seen := make(map[string]struct{}, len(candidates))
	chain := candidates[:0]
	for _, l := range candidates {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		chain = append(chain, l)
	}
	return chain
}

// entryFromChain picks the label and description for an entity by
// walking the fallback chain. LanguageServed records the language that
// supplied the label, or the description when no label matched. An
// entity with nothing in any chain language becomes a negative entry.
func entryFromChain(el wikidata.EntityLabels, chain []string) model.LabelEntry {
	var entry model.LabelEntry
	for _, l := range chain {
		if v := el.Labels[l]; v != "" {
			entry.Label = v
			entry.LanguageServed = l
			break
		}
	}
	for _, l := range chain {
		if v := el.Descriptions[l]; v != "" {
			entry.Description = v
			if entry.LanguageServed == "" {
				entry.LanguageServed = l
			}
			break
		}
	}
	return entry
}
