package wikidata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"wikitextifier/pkg/model"
)

// parseItem converts a wbgetentities entity payload into a RawItem.
// The claims object is walked token-by-token so property groups keep the
// order of the upstream payload; encoding/json maps would lose it.
func parseItem(id model.EntityID, raw json.RawMessage) (*model.RawItem, error) {
	var ent struct {
		Labels       map[string]langValue   `json:"labels"`
		Descriptions map[string]langValue   `json:"descriptions"`
		Aliases      map[string][]langValue `json:"aliases"`
		Claims       json.RawMessage        `json:"claims"`
	}
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, err
	}

	item := &model.RawItem{
		ID:           id,
		Labels:       make(map[string]string, len(ent.Labels)),
		Descriptions: make(map[string]string, len(ent.Descriptions)),
		Aliases:      make(map[string][]string, len(ent.Aliases)),
	}
	for lang, v := range ent.Labels {
		item.Labels[lang] = v.Value
	}
	for lang, v := range ent.Descriptions {
		item.Descriptions[lang] = v.Value
	}
	for lang, vs := range ent.Aliases {
		aliases := make([]string, 0, len(vs))
		for _, v := range vs {
			if v.Value != "" {
				aliases = append(aliases, v.Value)
			}
		}
		item.Aliases[lang] = aliases
	}

	if len(ent.Claims) > 0 {
		groups, err := parseClaimGroups(ent.Claims)
		if err != nil {
			return nil, err
		}
		item.Claims = groups
	}

	return item, nil
}

// parseClaimGroups decodes the claims object preserving key order.
func parseClaimGroups(raw json.RawMessage) ([]model.ClaimGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("claims: expected object, got %v", tok)
	}

	var groups []model.ClaimGroup
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		pid, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("claims: unexpected key token %v", keyTok)
		}

		var statements []rawStatement
		if err := dec.Decode(&statements); err != nil {
			return nil, fmt.Errorf("claims %s: %w", pid, err)
		}

		// Non-property keys are skipped, not errored; display degrades.
		if !strings.HasPrefix(pid, "P") {
			continue
		}

		property := model.EntityID(pid)
		group := model.ClaimGroup{Property: property}
		for i := range statements {
			group.Claims = append(group.Claims, statements[i].toClaim(property))
		}
		groups = append(groups, group)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return groups, nil
}

type rawStatement struct {
	Mainsnak        rawSnak              `json:"mainsnak"`
	Rank            string               `json:"rank"`
	Qualifiers      map[string][]rawSnak `json:"qualifiers"`
	QualifiersOrder []string             `json:"qualifiers-order"`
	References      []rawReference       `json:"references"`
}

type rawReference struct {
	Snaks      map[string][]rawSnak `json:"snaks"`
	SnaksOrder []string             `json:"snaks-order"`
}

type rawSnak struct {
	Snaktype  string          `json:"snaktype"`
	Property  string          `json:"property"`
	Datatype  string          `json:"datatype"`
	Datavalue json.RawMessage `json:"datavalue"`
}

func (st *rawStatement) toClaim(property model.EntityID) model.RawClaim {
	claim := model.RawClaim{
		Property: property,
		Datatype: st.Mainsnak.Datatype,
		Rank:     parseRank(st.Rank),
	}
	claim.HasValue, claim.Value = st.Mainsnak.toValue()

	claim.Qualifiers = parseSnakGroups(st.Qualifiers, st.QualifiersOrder)
	for _, ref := range st.References {
		snaks := parseSnakGroups(ref.Snaks, ref.SnaksOrder)
		if len(snaks) > 0 {
			claim.References = append(claim.References, snaks)
		}
	}

	return claim
}

// parseSnakGroups flattens a snaks map into an ordered list, following
// the explicit order array when present and sorted keys otherwise.
func parseSnakGroups(snaks map[string][]rawSnak, order []string) []model.Snak {
	if len(snaks) == 0 {
		return nil
	}

	pids := order
	if len(pids) == 0 {
		pids = make([]string, 0, len(snaks))
		for pid := range snaks {
			pids = append(pids, pid)
		}
		sort.Strings(pids)
	}

	var out []model.Snak
	for _, pid := range pids {
		if !strings.HasPrefix(pid, "P") {
			continue
		}
		for i := range snaks[pid] {
			s := snaks[pid][i]
			snak := model.Snak{
				Property: model.EntityID(pid),
				Datatype: s.Datatype,
			}
			snak.HasValue, snak.Value = s.toValue()
			out = append(out, snak)
		}
	}
	return out
}

func (s *rawSnak) toValue() (bool, model.RawValue) {
	if s.Snaktype != "" && s.Snaktype != "value" {
		// somevalue / novalue
		return false, model.RawValue{}
	}
	if len(s.Datavalue) == 0 {
		return false, model.RawValue{}
	}
	return true, parseDatavalue(s.Datatype, s.Datavalue)
}

func parseRank(rank string) model.Rank {
	switch rank {
	case "preferred":
		return model.RankPreferred
	case "deprecated":
		return model.RankDeprecated
	default:
		return model.RankNormal
	}
}

// parseDatavalue maps a datavalue payload onto the RawValue union.
// Unrecognized shapes become KindUnknown rather than errors.
func parseDatavalue(datatype string, raw json.RawMessage) model.RawValue {
	var dv struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &dv); err != nil {
		return model.RawValue{Kind: model.KindUnknown}
	}

	switch {
	case dv.Type == "wikibase-entityid" || datatype == "wikibase-item" || datatype == "wikibase-property":
		var v struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil || v.ID == "" {
			return model.RawValue{Kind: model.KindUnknown}
		}
		return model.RawValue{Kind: model.KindEntity, Entity: model.EntityID(v.ID)}

	case dv.Type == "quantity" || datatype == "quantity":
		var v struct {
			Amount string `json:"amount"`
			Unit   string `json:"unit"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil || v.Amount == "" {
			return model.RawValue{Kind: model.KindUnknown}
		}
		val := model.RawValue{Kind: model.KindQuantity, Amount: v.Amount}
		if v.Unit != "" && v.Unit != "1" {
			val.Unit = trimEntityURI(v.Unit)
		}
		return val

	case dv.Type == "time" || datatype == "time":
		var v struct {
			Time          string `json:"time"`
			Precision     int    `json:"precision"`
			Calendarmodel string `json:"calendarmodel"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil || v.Time == "" {
			return model.RawValue{Kind: model.KindUnknown}
		}
		cal := trimEntityURI(v.Calendarmodel)
		if cal == "" {
			cal = "Q1985786"
		}
		return model.RawValue{Kind: model.KindTime, Time: v.Time, Precision: v.Precision, Calendar: cal}

	case dv.Type == "globecoordinate" || dv.Type == "globe-coordinate" || datatype == "globe-coordinate":
		var v struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			Globe     string   `json:"globe"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil || v.Latitude == nil || v.Longitude == nil {
			return model.RawValue{Kind: model.KindUnknown}
		}
		return model.RawValue{
			Kind:  model.KindCoordinate,
			Lat:   *v.Latitude,
			Lon:   *v.Longitude,
			Globe: trimEntityURI(v.Globe),
		}

	case dv.Type == "monolingualtext" || datatype == "monolingualtext":
		var v struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal(dv.Value, &v); err != nil {
			return model.RawValue{Kind: model.KindUnknown}
		}
		return model.RawValue{Kind: model.KindMonolingual, Text: v.Text, Language: v.Language}

	case dv.Type == "string":
		var s string
		if err := json.Unmarshal(dv.Value, &s); err != nil {
			return model.RawValue{Kind: model.KindUnknown}
		}
		return model.RawValue{Kind: model.KindString, Text: s}
	}

	return model.RawValue{Kind: model.KindUnknown}
}

// trimEntityURI extracts an entity ID from a concept URI like
// "http://www.wikidata.org/entity/Q11573". Returns an empty EntityID for
// the unitless marker "1" or anything that is not an entity reference.
func trimEntityURI(uri string) model.EntityID {
	if uri == "" || uri == "1" {
		return ""
	}
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		uri = uri[idx+1:]
	}
	id := model.EntityID(uri)
	if !id.Valid() {
		return ""
	}
	return id
}
