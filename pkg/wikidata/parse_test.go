package wikidata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikitextifier/pkg/model"
)

func parseFixture(t *testing.T, entity string) *model.RawItem {
	t.Helper()
	item, err := parseItem("Q1", json.RawMessage(entity))
	require.NoError(t, err)
	return item
}

func firstClaim(t *testing.T, item *model.RawItem) model.RawClaim {
	t.Helper()
	require.NotEmpty(t, item.Claims)
	require.NotEmpty(t, item.Claims[0].Claims)
	return item.Claims[0].Claims[0]
}

func TestParseNovalueSnak(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P570": [{"mainsnak": {"snaktype": "novalue", "property": "P570", "datatype": "time"}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.False(t, claim.HasValue)
	assert.Equal(t, model.RankNormal, claim.Rank)
}

func TestParseSomevalueSnak(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P569": [{"mainsnak": {"snaktype": "somevalue", "property": "P569", "datatype": "time"}, "rank": "normal"}]}
	}`)

	assert.False(t, firstClaim(t, item).HasValue)
}

func TestParseStringValue(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P1472": [{"mainsnak": {"snaktype": "value", "property": "P1472", "datatype": "string",
			"datavalue": {"type": "string", "value": "Douglas Adams"}}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.Equal(t, model.KindString, claim.Value.Kind)
	assert.Equal(t, "Douglas Adams", claim.Value.Text)
}

func TestParseMonolingualValue(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P1559": [{"mainsnak": {"snaktype": "value", "property": "P1559", "datatype": "monolingualtext",
			"datavalue": {"type": "monolingualtext", "value": {"text": "Douglas Adams", "language": "en"}}}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.Equal(t, model.KindMonolingual, claim.Value.Kind)
	assert.Equal(t, "Douglas Adams", claim.Value.Text)
	assert.Equal(t, "en", claim.Value.Language)
}

func TestParseCoordinateValue(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P625": [{"mainsnak": {"snaktype": "value", "property": "P625", "datatype": "globe-coordinate",
			"datavalue": {"type": "globecoordinate", "value": {"latitude": 52.516, "longitude": 13.3833,
				"globe": "http://www.wikidata.org/entity/Q2"}}}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.Equal(t, model.KindCoordinate, claim.Value.Kind)
	assert.InDelta(t, 52.516, claim.Value.Lat, 1e-9)
	assert.InDelta(t, 13.3833, claim.Value.Lon, 1e-9)
	assert.Equal(t, model.EntityID("Q2"), claim.Value.Globe)
}

func TestParseUnitlessQuantity(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P1082": [{"mainsnak": {"snaktype": "value", "property": "P1082", "datatype": "quantity",
			"datavalue": {"type": "quantity", "value": {"amount": "+3769495", "unit": "1"}}}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.Equal(t, model.KindQuantity, claim.Value.Kind)
	assert.Equal(t, "+3769495", claim.Value.Amount)
	assert.Equal(t, model.EntityID(""), claim.Value.Unit)
}

func TestParseUnknownDatavalue(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P9999": [{"mainsnak": {"snaktype": "value", "property": "P9999", "datatype": "musical-notation",
			"datavalue": {"type": "musical-notation", "value": {"whatever": true}}}, "rank": "normal"}]}
	}`)

	claim := firstClaim(t, item)
	assert.True(t, claim.HasValue)
	assert.Equal(t, model.KindUnknown, claim.Value.Kind)
}

func TestParseClaimOrderPreserved(t *testing.T) {
	entity := `{"claims": {`
	props := []string{"P9", "P1", "P5", "P3", "P7"}
	for i, p := range props {
		if i > 0 {
			entity += ","
		}
		entity += `"` + p + `": [{"mainsnak": {"snaktype": "value", "property": "` + p + `", "datatype": "string",
			"datavalue": {"type": "string", "value": "v"}}, "rank": "normal"}]`
	}
	entity += `}}`

	item := parseFixture(t, entity)
	require.Len(t, item.Claims, len(props))
	for i, p := range props {
		assert.Equal(t, model.EntityID(p), item.Claims[i].Property)
	}
}

func TestParseQualifierOrderFollowsOrderArray(t *testing.T) {
	item := parseFixture(t, `{
		"claims": {"P39": [{
			"mainsnak": {"snaktype": "value", "property": "P39", "datatype": "wikibase-item",
				"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q11696"}}},
			"qualifiers": {
				"P582": [{"snaktype": "value", "property": "P582", "datatype": "time",
					"datavalue": {"type": "time", "value": {"time": "+1809-03-04T00:00:00Z", "precision": 11}}}],
				"P580": [{"snaktype": "value", "property": "P580", "datatype": "time",
					"datavalue": {"type": "time", "value": {"time": "+1801-03-04T00:00:00Z", "precision": 11}}}]
			},
			"qualifiers-order": ["P580", "P582"],
			"rank": "normal"
		}]}
	}`)

	claim := firstClaim(t, item)
	require.Len(t, claim.Qualifiers, 2)
	assert.Equal(t, model.EntityID("P580"), claim.Qualifiers[0].Property)
	assert.Equal(t, model.EntityID("P582"), claim.Qualifiers[1].Property)
}

func TestTrimEntityURI(t *testing.T) {
	assert.Equal(t, model.EntityID("Q11573"), trimEntityURI("http://www.wikidata.org/entity/Q11573"))
	assert.Equal(t, model.EntityID(""), trimEntityURI("1"))
	assert.Equal(t, model.EntityID(""), trimEntityURI(""))
	assert.Equal(t, model.EntityID(""), trimEntityURI("http://example.com/notanentity"))
}
