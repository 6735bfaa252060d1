package textifier

import (
	"wikitextifier/pkg/model"
)

// selectClaims orders a property's claims for display: preferred rank
// first, otherwise upstream order. For json and text output deprecated
// claims are dropped when a non-deprecated alternative exists; triplet
// output and the all_ranks switch keep everything.
func selectClaims(group model.ClaimGroup, opts Options) []model.RawClaim {
	keepDeprecated := opts.AllRanks || opts.Format == FormatTriplet

	hasAlternative := false
	for _, c := range group.Claims {
		if c.Rank != model.RankDeprecated {
			hasAlternative = true
			break
		}
	}

	out := make([]model.RawClaim, 0, len(group.Claims))
	for _, c := range group.Claims {
		if c.Rank == model.RankPreferred {
			out = append(out, c)
		}
	}
	for _, c := range group.Claims {
		if c.Rank == model.RankPreferred {
			continue
		}
		if c.Rank == model.RankDeprecated && hasAlternative && !keepDeprecated {
			continue
		}
		out = append(out, c)
	}
	return out
}

// displayAliases merges requested-language and "mul" aliases, deduped,
// requested language first.
func displayAliases(item *model.RawItem, lang string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range []string{lang, "mul"} {
		for _, a := range item.Aliases[l] {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
