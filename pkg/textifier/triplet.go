package textifier

import (
	"strings"

	"wikitextifier/pkg/model"
)

// formatTriplet renders one resolved item as tab-separated triplet
// lines: subject, property, value, each as "label [id]" (entity values)
// or rendered text (scalar values). Lines follow upstream claim order;
// within a claim, the main triplet comes first, then one line per
// qualifier pair, then one per reference pair. Every rank is included;
// deprecated values carry a "[deprecated]" marker.
func formatTriplet(r *model.ResolvedItem, opts Options) (string, error) {
	subject := entityRef(r.Item.ID, r)

	var lines []string
	for _, group := range r.Item.Claims {
		prop := entityRef(group.Property, r)
		for _, claim := range selectClaims(group, opts) {
			if !claim.HasValue {
				continue
			}
			value := snakValueRef(claim.Value, r)
			if value == "" {
				continue
			}
			if claim.Rank == model.RankDeprecated {
				value += " [deprecated]"
			}
			lines = append(lines, subject+"\t"+prop+"\t"+value)

			lines = appendSnakLines(lines, subject, claim.Qualifiers, r)
			if opts.References {
				for _, ref := range claim.References {
					lines = appendSnakLines(lines, subject, ref, r)
				}
			}
		}
	}

	if len(lines) == 0 {
		return subject, nil
	}
	return strings.Join(lines, "\n"), nil
}

func appendSnakLines(lines []string, subject string, snaks []model.Snak, r *model.ResolvedItem) []string {
	for _, s := range snaks {
		if !s.HasValue {
			continue
		}
		value := snakValueRef(s.Value, r)
		if value == "" {
			continue
		}
		lines = append(lines, subject+"\t"+entityRef(s.Property, r)+"\t"+value)
	}
	return lines
}

// entityRef renders "label [id]", degrading to "id [id]" when the label
// is unresolved.
func entityRef(id model.EntityID, r *model.ResolvedItem) string {
	return r.LabelFor(id) + " [" + string(id) + "]"
}

func snakValueRef(v model.RawValue, r *model.ResolvedItem) string {
	if v.Kind == model.KindEntity {
		return entityRef(v.Entity, r)
	}
	return valueText(v, r)
}
