package tracker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTracker_Counters(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("wikidata")
	tr.TrackCacheHit("wikidata")
	tr.TrackCacheMiss("wikidata")
	tr.TrackAPISuccess("wikidata")
	tr.TrackAPIFailure("wikidata")
	tr.TrackRequest("triplet")

	assert.Equal(t, float64(2), testutil.ToFloat64(tr.cacheHits.WithLabelValues("wikidata")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.cacheMisses.WithLabelValues("wikidata")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.apiSuccess.WithLabelValues("wikidata")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.apiFailures.WithLabelValues("wikidata")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.requests.WithLabelValues("triplet")))
}

func TestTracker_RegistryGathers(t *testing.T) {
	tr := New()
	tr.TrackCacheHit("wikidata")

	families, err := tr.Registry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
