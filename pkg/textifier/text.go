package textifier

import (
	"strings"

	"wikitextifier/pkg/model"
)

// formatText renders one resolved item as a short narrative paragraph:
// label, description and aliases in one sentence, then a dashed list of
// claims with qualifiers summarized in parentheses. References are
// omitted from text output.
func formatText(r *model.ResolvedItem, opts Options) (string, error) {
	vars := varsFor(r.Lang)

	var b strings.Builder
	label := r.LabelFor(r.Item.ID)
	b.WriteString(label)

	if desc := r.DescriptionFor(r.Item.ID); desc != "" {
		b.WriteString(vars.Sep)
		b.WriteString(desc)
	}
	if aliases := displayAliases(&r.Item, r.Lang); len(aliases) > 0 {
		b.WriteString(vars.Sep)
		b.WriteString(vars.AlsoKnownAs)
		b.WriteString(" ")
		b.WriteString(strings.Join(aliases, vars.Sep))
	}

	var attributes []string
	for _, group := range r.Item.Claims {
		if line := claimText(group, r, opts, vars); line != "" {
			attributes = append(attributes, line)
		}
	}

	if len(attributes) > 0 {
		b.WriteString(". ")
		b.WriteString(vars.Attributes)
		b.WriteString(":\n- ")
		b.WriteString(strings.Join(attributes, "\n- "))
	} else if b.Len() > len(label) {
		b.WriteString(".")
	}

	return b.String(), nil
}

// claimText renders one property's claims as "prop: v1, v2". Claims
// whose snaks carry no value render as "has prop".
func claimText(group model.ClaimGroup, r *model.ResolvedItem, opts Options, vars langVars) string {
	prop := r.LabelFor(group.Property)

	var values []string
	sawClaim := false
	for _, claim := range selectClaims(group, opts) {
		sawClaim = true
		if !claim.HasValue {
			continue
		}
		v := valueText(claim.Value, r)
		if v == "" {
			continue
		}
		if quals := qualifierText(claim.Qualifiers, r, vars); quals != "" {
			v += " (" + quals + ")"
		}
		values = append(values, v)
	}

	if len(values) > 0 {
		return prop + ": " + strings.Join(values, vars.Sep)
	}
	if sawClaim {
		return vars.Has + " " + prop
	}
	return ""
}

func qualifierText(quals []model.Snak, r *model.ResolvedItem, vars langVars) string {
	var parts []string
	for _, q := range quals {
		if !q.HasValue {
			continue
		}
		v := valueText(q.Value, r)
		if v == "" {
			continue
		}
		parts = append(parts, r.LabelFor(q.Property)+": "+v)
	}
	return strings.Join(parts, vars.Sep)
}
