package textifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wikitextifier/pkg/config"
	"wikitextifier/pkg/labels"
	"wikitextifier/pkg/model"
	"wikitextifier/pkg/tracker"
	"wikitextifier/pkg/wikidata"
)

// Items fetched from upstream are reused for a short window so that a
// warm label cache makes repeat resolutions fully local.
const (
	itemCacheTTL = 15 * time.Minute
	itemCacheMax = 1024
)

// Service resolves items end to end: fetch the raw item, collect every
// referenced entity ID, resolve labels through the cache and batch
// resolver, and substitute them into a ResolvedItem ready for
// formatting.
type Service struct {
	fetcher  wikidata.Fetcher
	resolver *labels.Resolver
	tracker  *tracker.Tracker
	logger   *slog.Logger

	requestTimeout      time.Duration
	minResolvedFraction float64

	mu    sync.Mutex
	items map[model.EntityID]cachedItem
	now   func() time.Time
}

type cachedItem struct {
	item    *model.RawItem
	fetched time.Time
}

// NewService creates a Service.
func NewService(f wikidata.Fetcher, r *labels.Resolver, cfg config.ResolverConfig, t *tracker.Tracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	minFraction := cfg.MinResolvedFraction
	if minFraction <= 0 || minFraction > 1 {
		minFraction = 0.5
	}
	return &Service{
		fetcher:             f,
		resolver:            r,
		tracker:             t,
		logger:              logger,
		requestTimeout:      time.Duration(cfg.RequestTimeout),
		minResolvedFraction: minFraction,
		items:               make(map[model.EntityID]cachedItem),
		now:                 time.Now,
	}
}

// ResolveItem fetches and label-resolves one entity. Unresolvable
// referenced IDs stay absent from the label table and render as raw
// IDs; the whole request fails only when the item itself cannot be
// fetched or fewer than the minimum fraction of labels resolved.
func (s *Service) ResolveItem(ctx context.Context, id model.EntityID, lang string, opts Options) (*model.ResolvedItem, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: malformed id %q", wikidata.ErrNotFound, string(id))
	}
	if lang == "" {
		lang = "en"
	}
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	item, err := s.fetchItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item = pruneItem(item, opts)
	ids := labels.Collect(item)

	resolved, err := s.resolver.Resolve(ctx, ids, lang, opts.FallbackLang)
	if err != nil && len(resolved) == 0 {
		return nil, fmt.Errorf("%w: label resolution: %v", wikidata.ErrUpstream, err)
	}
	if len(ids) > 0 {
		fraction := float64(len(resolved)) / float64(len(ids))
		if fraction < s.minResolvedFraction {
			return nil, fmt.Errorf("%w: only %d of %d labels resolved", wikidata.ErrUpstream, len(resolved), len(ids))
		}
	}

	return &model.ResolvedItem{
		Item:   *item,
		Lang:   lang,
		Labels: resolved,
	}, nil
}

// Textify resolves one or more entities and renders them in the
// requested format. Multiple items are combined per format: a keyed
// object for json, paragraph-joined for text, line-joined for triplet.
func (s *Service) Textify(ctx context.Context, ids []model.EntityID, lang string, opts Options) (string, error) {
	if s.tracker != nil {
		s.tracker.TrackRequest(string(opts.Format))
	}

	items := make([]*model.ResolvedItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.ResolveItem(ctx, id, lang, opts)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}
	return FormatItems(items, opts)
}

func (s *Service) fetchItem(ctx context.Context, id model.EntityID) (*model.RawItem, error) {
	s.mu.Lock()
	if c, ok := s.items[id]; ok && s.now().Sub(c.fetched) < itemCacheTTL {
		s.mu.Unlock()
		return c.item, nil
	}
	s.mu.Unlock()

	item, err := s.fetcher.FetchItem(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.items) >= itemCacheMax {
		cutoff := s.now().Add(-itemCacheTTL)
		for k, c := range s.items {
			if c.fetched.Before(cutoff) {
				delete(s.items, k)
			}
		}
		// Still full after dropping expired entries: start over.
		if len(s.items) >= itemCacheMax {
			s.items = make(map[model.EntityID]cachedItem)
		}
	}
	s.items[id] = cachedItem{item: item, fetched: s.now()}
	s.mu.Unlock()

	return item, nil
}

// pruneItem applies the property filter and the external-id and
// reference switches before label collection, so that labels are only
// fetched for entities the output will actually mention.
func pruneItem(item *model.RawItem, opts Options) *model.RawItem {
	out := *item
	out.Claims = nil

	for _, group := range item.Claims {
		if !opts.wantsProperty(group.Property) {
			continue
		}
		if !opts.ExternalIDs && groupDatatype(group) == "external-id" {
			continue
		}

		if opts.References {
			out.Claims = append(out.Claims, group)
			continue
		}

		stripped := model.ClaimGroup{Property: group.Property}
		for _, claim := range group.Claims {
			claim.References = nil
			stripped.Claims = append(stripped.Claims, claim)
		}
		out.Claims = append(out.Claims, stripped)
	}

	return &out
}

func groupDatatype(group model.ClaimGroup) string {
	for _, claim := range group.Claims {
		if claim.Datatype != "" {
			return claim.Datatype
		}
	}
	return ""
}

// ParseIDs splits a comma-separated id parameter into entity IDs.
func ParseIDs(raw string) []model.EntityID {
	parts := strings.Split(raw, ",")
	ids := make([]model.EntityID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ids = append(ids, model.EntityID(strings.ToUpper(p[:1])+p[1:]))
	}
	return ids
}
