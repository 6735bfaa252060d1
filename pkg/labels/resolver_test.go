package labels

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikitextifier/pkg/config"
	"wikitextifier/pkg/model"
	"wikitextifier/pkg/store"
	"wikitextifier/pkg/tracker"
	"wikitextifier/pkg/wikidata"
)

// fakeFetcher serves canned labels and records every remote call.
type fakeFetcher struct {
	mu      sync.Mutex
	labels  map[model.EntityID]wikidata.EntityLabels
	calls   [][]model.EntityID
	failFor map[model.EntityID]int // remaining failures for batches containing this ID
	onFetch func()                 // runs while the batch call is in flight
}

func (f *fakeFetcher) FetchLabels(_ context.Context, ids []model.EntityID, _ []string) (map[model.EntityID]wikidata.EntityLabels, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]model.EntityID(nil), ids...))
	if f.onFetch != nil {
		f.onFetch()
	}
	for _, id := range ids {
		if n, ok := f.failFor[id]; ok && n > 0 {
			f.failFor[id] = n - 1
			return nil, errors.New("remote unavailable")
		}
	}

	out := make(map[model.EntityID]wikidata.EntityLabels, len(ids))
	for _, id := range ids {
		if el, ok := f.labels[id]; ok {
			out[id] = el
		} else {
			// Unknown entities come back as empty records, like a
			// wbgetentities "missing" entry.
			out[id] = wikidata.EntityLabels{}
		}
	}
	return out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func enLabel(label string) wikidata.EntityLabels {
	return wikidata.EntityLabels{
		Labels:       map[string]string{"en": label},
		Descriptions: map[string]string{},
	}
}

func newTestResolver(f *fakeFetcher, ttl time.Duration, batchSize int) (*Resolver, *Cache) {
	cache := NewCache(store.NewMemoryStore(), ttl, tracker.New(), slog.Default())
	r := NewResolver(f, cache, batchSize,
		config.ResolverConfig{MaxInFlight: 2, BatchTimeout: config.Duration(time.Second)},
		config.LabelsConfig{FallbackLangs: []string{"en"}},
		slog.Default())
	return r, cache
}

func TestResolveBasic(t *testing.T) {
	f := &fakeFetcher{labels: map[model.EntityID]wikidata.EntityLabels{
		"Q42": enLabel("Douglas Adams"),
		"Q5":  enLabel("human"),
	}}
	r, _ := newTestResolver(f, time.Hour, 50)

	got, err := r.Resolve(context.Background(), []model.EntityID{"Q42", "Q5"}, "en", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Douglas Adams", got["Q42"].Label)
	assert.Equal(t, "en", got["Q42"].LanguageServed)
	assert.Equal(t, 1, f.callCount())
}

func TestResolveUsesCacheOnSecondCall(t *testing.T) {
	f := &fakeFetcher{labels: map[model.EntityID]wikidata.EntityLabels{
		"Q42": enLabel("Douglas Adams"),
	}}
	r, _ := newTestResolver(f, time.Hour, 50)

	_, err := r.Resolve(context.Background(), []model.EntityID{"Q42"}, "en", "")
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), []model.EntityID{"Q42"}, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams", got["Q42"].Label)
	assert.Equal(t, 1, f.callCount(), "second resolve must not hit the remote")
}

func TestResolveExpiredEntryRefetched(t *testing.T) {
	f := &fakeFetcher{labels: map[model.EntityID]wikidata.EntityLabels{
		"Q42": enLabel("Douglas Adams"),
	}}
	r, cache := newTestResolver(f, time.Hour, 50)

	_, err := r.Resolve(context.Background(), []model.EntityID{"Q42"}, "en", "")
	require.NoError(t, err)

	// Move the clock past the TTL.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = r.Resolve(context.Background(), []model.EntityID{"Q42"}, "en", "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())
}

func TestResolveNegativeCaching(t *testing.T) {
	f := &fakeFetcher{labels: map[model.EntityID]wikidata.EntityLabels{}}
	r, _ := newTestResolver(f, time.Hour, 50)

	got, err := r.Resolve(context.Background(), []model.EntityID{"Q999999999999"}, "en", "")
	require.NoError(t, err)
	require.Contains(t, got, model.EntityID("Q999999999999"))
	assert.True(t, got["Q999999999999"].Negative())

	// The negative result is cached like any other.
	_, err = r.Resolve(context.Background(), []model.EntityID{"Q999999999999"}, "en", "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.callCount())
}

func TestResolveChunking(t *testing.T) {
	labels := make(map[model.EntityID]wikidata.EntityLabels)
	var ids []model.EntityID
	for i := 1; i <= 120; i++ {
		id := model.EntityID("Q" + strconv.Itoa(i))
		ids = append(ids, id)
		labels[id] = enLabel("label " + strconv.Itoa(i))
	}

	f := &fakeFetcher{labels: labels}
	r, _ := newTestResolver(f, time.Hour, 50)

	got, err := r.Resolve(context.Background(), ids, "en", "")
	require.NoError(t, err)
	assert.Len(t, got, 120)
	assert.Equal(t, 3, f.callCount(), "120 IDs should go out as 50+50+20")
}

func TestResolvePartialFailure(t *testing.T) {
	f := &fakeFetcher{
		labels: map[model.EntityID]wikidata.EntityLabels{
			"Q1": enLabel("one"),
			"Q2": enLabel("two"),
		},
		// Both the first attempt and the retry of the batch holding Q2 fail.
		failFor: map[model.EntityID]int{"Q2": 2},
	}
	r, _ := newTestResolver(f, time.Hour, 1)

	got, err := r.Resolve(context.Background(), []model.EntityID{"Q1", "Q2"}, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "one", got["Q1"].Label)
	assert.NotContains(t, got, model.EntityID("Q2"), "failed IDs stay absent, not negative")
}

func TestResolveRetriesOnce(t *testing.T) {
	f := &fakeFetcher{
		labels:  map[model.EntityID]wikidata.EntityLabels{"Q1": enLabel("one")},
		failFor: map[model.EntityID]int{"Q1": 1},
	}
	r, _ := newTestResolver(f, time.Hour, 50)

	got, err := r.Resolve(context.Background(), []model.EntityID{"Q1"}, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "one", got["Q1"].Label)
	assert.Equal(t, 2, f.callCount())
}

func TestResolveKeepsResultsWhenContextExpires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{labels: map[model.EntityID]wikidata.EntityLabels{
		"Q42": enLabel("Douglas Adams"),
	}}
	// The deadline passes while the batch call is in flight; the batch
	// still succeeds.
	f.onFetch = cancel
	r, _ := newTestResolver(f, time.Hour, 50)

	got, err := r.Resolve(ctx, []model.EntityID{"Q42"}, "en", "")
	assert.ErrorIs(t, err, context.Canceled)
	require.Contains(t, got, model.EntityID("Q42"))
	assert.Equal(t, "Douglas Adams", got["Q42"].Label)
}

func TestFallbackChain(t *testing.T) {
	tests := []struct {
		name       string
		requested  string
		override   string
		configured []string
		want       []string
	}{
		{"default", "de", "", []string{"en"}, []string{"de", "mul", "en"}},
		{"english", "en", "", []string{"en"}, []string{"en", "mul"}},
		{"override", "de", "fr", []string{"en"}, []string{"de", "mul", "fr", "en"}},
		{"configured chain", "nl", "", []string{"de", "fr"}, []string{"nl", "mul", "de", "fr", "en"}},
		{"dupes dropped", "en", "en", nil, []string{"en", "mul"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackChain(tt.requested, tt.override, tt.configured))
		})
	}
}

func TestEntryFromChain(t *testing.T) {
	el := wikidata.EntityLabels{
		Labels:       map[string]string{"mul": "Douglas Adams", "de": "Douglas Adams"},
		Descriptions: map[string]string{"en": "English author"},
	}

	entry := entryFromChain(el, []string{"nl", "mul", "en"})
	assert.Equal(t, "Douglas Adams", entry.Label)
	assert.Equal(t, "mul", entry.LanguageServed)
	assert.Equal(t, "English author", entry.Description)
}
