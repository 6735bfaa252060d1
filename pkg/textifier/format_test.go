package textifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikitextifier/pkg/model"
)

func entityClaim(prop, value model.EntityID, rank model.Rank) model.RawClaim {
	return model.RawClaim{
		Property: prop,
		Datatype: "wikibase-item",
		HasValue: true,
		Value:    model.RawValue{Kind: model.KindEntity, Entity: value},
		Rank:     rank,
	}
}

func douglasAdams() *model.ResolvedItem {
	return &model.ResolvedItem{
		Item: model.RawItem{
			ID: "Q42",
			Claims: []model.ClaimGroup{
				{Property: "P31", Claims: []model.RawClaim{entityClaim("P31", "Q5", model.RankNormal)}},
			},
		},
		Lang: "en",
		Labels: map[model.EntityID]model.LabelEntry{
			"Q42": {Label: "Douglas Adams"},
			"P31": {Label: "instance of"},
			"Q5":  {Label: "human"},
		},
	}
}

func TestFormatTripletBasic(t *testing.T) {
	out, err := FormatItem(douglasAdams(), Options{Format: FormatTriplet})
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams [Q42]\tinstance of [P31]\thuman [Q5]", out)
}

func TestFormatJSONBasic(t *testing.T) {
	out, err := FormatItem(douglasAdams(), Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"Q42","label":"Douglas Adams","claims":{"instance of":[{"id":"Q5","label":"human"}]}}`, out)
}

func TestFormatTextBasic(t *testing.T) {
	r := douglasAdams()
	r.Labels["Q42"] = model.LabelEntry{Label: "Douglas Adams", Description: "English author"}
	r.Item.Aliases = map[string][]string{"en": {"Douglas Noel Adams"}}

	out, err := FormatItem(r, Options{Format: FormatText})
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams, English author, also known as Douglas Noel Adams. Attributes include:\n- instance of: human", out)
}

func TestFormatInvalidSelector(t *testing.T) {
	_, err := FormatItem(douglasAdams(), Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
}

func TestFormatDeterminism(t *testing.T) {
	r := douglasAdams()
	r.Item.Claims = append(r.Item.Claims, model.ClaimGroup{
		Property: "P69",
		Claims:   []model.RawClaim{entityClaim("P69", "Q691283", model.RankNormal)},
	})
	r.Labels["P69"] = model.LabelEntry{Label: "educated at"}
	r.Labels["Q691283"] = model.LabelEntry{Label: "St John's College"}

	first, err := FormatItem(r, Options{Format: FormatTriplet})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FormatItem(r, Options{Format: FormatTriplet})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	lines := strings.Split(first, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.Contains(lines[0], "[P31]"))
	assert.True(t, strings.Contains(lines[1], "[P69]"))
}

func TestTripletLineCount(t *testing.T) {
	claim := entityClaim("P69", "Q691283", model.RankNormal)
	claim.Qualifiers = []model.Snak{
		{Property: "P812", HasValue: true, Value: model.RawValue{Kind: model.KindEntity, Entity: "Q11633"}},
		{Property: "P512", HasValue: true, Value: model.RawValue{Kind: model.KindEntity, Entity: "Q1765120"}},
	}
	claim.References = [][]model.Snak{
		{{Property: "P248", HasValue: true, Value: model.RawValue{Kind: model.KindEntity, Entity: "Q36578"}}},
	}

	r := douglasAdams()
	r.Item.Claims = append(r.Item.Claims, model.ClaimGroup{Property: "P69", Claims: []model.RawClaim{claim}})

	out, err := FormatItem(r, Options{Format: FormatTriplet, References: true})
	require.NoError(t, err)

	// 2 claims + 2 qualifier pairs + 1 reference pair.
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)

	// Qualifier lines precede reference lines and share the item subject.
	assert.True(t, strings.HasPrefix(lines[2], "Douglas Adams [Q42]\tP812 [P812]"))
	assert.True(t, strings.HasPrefix(lines[4], "Douglas Adams [Q42]\tP248 [P248]"))
}

func TestJSONMergesSameLabelProperties(t *testing.T) {
	r := douglasAdams()
	r.Item.Claims = append(r.Item.Claims, model.ClaimGroup{
		Property: "P279",
		Claims:   []model.RawClaim{entityClaim("P279", "Q488383", model.RankNormal)},
	})
	r.Labels["P279"] = model.LabelEntry{Label: "instance of"}
	r.Labels["Q488383"] = model.LabelEntry{Label: "object"}

	out, err := FormatItem(r, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, `"instance of"`), "same-label properties share one key")
	assert.Equal(t,
		`{"id":"Q42","label":"Douglas Adams","claims":{"instance of":[{"id":"Q5","label":"human"},{"id":"Q488383","label":"object"}]}}`,
		out)
}

func TestRankPolicy(t *testing.T) {
	r := douglasAdams()
	r.Item.Claims = []model.ClaimGroup{
		{
			Property: "P31",
			Claims: []model.RawClaim{
				entityClaim("P31", "Q4", model.RankDeprecated),
				entityClaim("P31", "Q5", model.RankNormal),
				entityClaim("P31", "Q6", model.RankPreferred),
			},
		},
	}
	r.Labels["Q4"] = model.LabelEntry{Label: "old value"}
	r.Labels["Q6"] = model.LabelEntry{Label: "new value"}

	jsonOut, err := FormatItem(r, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.NotContains(t, jsonOut, "old value", "deprecated claims stay out of json")
	assert.True(t, strings.Index(jsonOut, "new value") < strings.Index(jsonOut, "human"),
		"preferred claims come first")

	tripletOut, err := FormatItem(r, Options{Format: FormatTriplet})
	require.NoError(t, err)
	assert.Contains(t, tripletOut, "old value")
	assert.Contains(t, tripletOut, "[deprecated]")

	allOut, err := FormatItem(r, Options{Format: FormatJSON, AllRanks: true})
	require.NoError(t, err)
	assert.Contains(t, allOut, "old value")
	assert.Contains(t, allOut, `"rank":"deprecated"`)
}

func TestRankPolicyOnlyDeprecated(t *testing.T) {
	r := douglasAdams()
	r.Item.Claims = []model.ClaimGroup{
		{Property: "P31", Claims: []model.RawClaim{entityClaim("P31", "Q5", model.RankDeprecated)}},
	}

	out, err := FormatItem(r, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.Contains(t, out, "human", "deprecated survives when no alternative exists")
}

func TestUnresolvedLabelRendersRawID(t *testing.T) {
	r := douglasAdams()
	delete(r.Labels, "Q5")

	out, err := FormatItem(r, Options{Format: FormatTriplet})
	require.NoError(t, err)
	assert.Equal(t, "Douglas Adams [Q42]\tinstance of [P31]\tQ5 [Q5]", out)
}

func TestFormatItemsMultiJSON(t *testing.T) {
	berlin := &model.ResolvedItem{
		Item: model.RawItem{ID: "Q64"},
		Lang: "en",
		Labels: map[model.EntityID]model.LabelEntry{
			"Q64": {Label: "Berlin"},
		},
	}

	out, err := FormatItems([]*model.ResolvedItem{douglasAdams(), berlin}, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"Q42":{"id":"Q42"`))
	assert.Contains(t, out, `"Q64":{"id":"Q64","label":"Berlin"`)
}

func TestFormatItemsMultiTriplet(t *testing.T) {
	second := douglasAdams()
	out, err := FormatItems([]*model.ResolvedItem{douglasAdams(), second}, Options{Format: FormatTriplet})
	require.NoError(t, err)
	assert.Len(t, strings.Split(out, "\n"), 2)
}
