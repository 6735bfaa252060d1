package textifier

import (
	"bytes"
	"encoding/json"

	"wikitextifier/pkg/model"
)

// orderedObject is a JSON object that marshals its keys in insertion
// order. Claim output is keyed by resolved property label, and the key
// order must follow the upstream claim order for reproducible payloads.
type orderedObject struct {
	keys []string
	vals []any
}

func (o *orderedObject) set(key string, val any) {
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, val)
}

// appendList merges vals into the []any stored under key, creating the
// key at the current position if absent. Distinct properties can resolve
// to the same label, and a JSON object must not repeat keys.
func (o *orderedObject) appendList(key string, vals []any) {
	for i, k := range o.keys {
		if k == key {
			o.vals[i] = append(o.vals[i].([]any), vals...)
			return
		}
	}
	o.set(key, vals)
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// formatJSON renders one resolved item as a compact JSON object:
// id, label, description, aliases, then claims keyed by property label.
func formatJSON(r *model.ResolvedItem, opts Options) (string, error) {
	b, err := json.Marshal(entityObject(r, opts))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func entityObject(r *model.ResolvedItem, opts Options) *orderedObject {
	obj := &orderedObject{}
	obj.set("id", string(r.Item.ID))
	obj.set("label", r.LabelFor(r.Item.ID))
	if desc := r.DescriptionFor(r.Item.ID); desc != "" {
		obj.set("description", desc)
	}
	if aliases := displayAliases(&r.Item, r.Lang); len(aliases) > 0 {
		obj.set("aliases", aliases)
	}

	claims := &orderedObject{}
	for _, group := range r.Item.Claims {
		var vals []any
		for _, claim := range selectClaims(group, opts) {
			if v := claimObject(claim, r, opts); v != nil {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			claims.appendList(r.LabelFor(group.Property), vals)
		}
	}
	obj.set("claims", claims)
	return obj
}

func claimObject(claim model.RawClaim, r *model.ResolvedItem, opts Options) *orderedObject {
	obj := valueObject(claim.HasValue, claim.Value, r)
	if obj == nil {
		return nil
	}

	if len(claim.Qualifiers) > 0 {
		if q := snakListObject(claim.Qualifiers, r); len(q.keys) > 0 {
			obj.set("qualifiers", q)
		}
	}
	if opts.References && len(claim.References) > 0 {
		var refs []any
		for _, ref := range claim.References {
			if g := snakListObject(ref, r); len(g.keys) > 0 {
				refs = append(refs, g)
			}
		}
		if len(refs) > 0 {
			obj.set("references", refs)
		}
	}
	if opts.AllRanks {
		obj.set("rank", string(claim.Rank))
	}
	return obj
}

// valueObject renders one snak value. Entity references become
// {id,label}; everything else becomes {value: text}. Empty renderings
// yield nil and the snak is skipped.
func valueObject(hasValue bool, v model.RawValue, r *model.ResolvedItem) *orderedObject {
	if !hasValue {
		return nil
	}

	obj := &orderedObject{}
	if v.Kind == model.KindEntity {
		obj.set("id", string(v.Entity))
		obj.set("label", r.LabelFor(v.Entity))
		return obj
	}

	text := valueText(v, r)
	if text == "" {
		return nil
	}
	obj.set("value", text)
	return obj
}

// snakListObject groups qualifier or reference snaks by property label,
// preserving snak order.
func snakListObject(snaks []model.Snak, r *model.ResolvedItem) *orderedObject {
	obj := &orderedObject{}
	for _, s := range snaks {
		v := valueObject(s.HasValue, s.Value, r)
		if v == nil {
			continue
		}
		obj.appendList(r.LabelFor(s.Property), []any{v})
	}
	return obj
}
