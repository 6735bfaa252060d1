package model

// ValueKind tags the variant held by a RawValue.
type ValueKind int

const (
	// KindUnknown marks a datavalue we do not recognize. It renders as an
	// empty value rather than failing the request.
	KindUnknown ValueKind = iota
	KindEntity
	KindQuantity
	KindTime
	KindCoordinate
	KindString
	KindMonolingual
)

// RawValue is a tagged union over the known Wikidata datavalue kinds.
// Only the fields matching Kind are meaningful.
type RawValue struct {
	Kind ValueKind

	// KindEntity
	Entity EntityID

	// KindQuantity
	Amount string
	Unit   EntityID // empty for unitless quantities (wire unit "1")

	// KindTime
	Time      string
	Precision int
	Calendar  EntityID

	// KindCoordinate
	Lat   float64
	Lon   float64
	Globe EntityID

	// KindString / KindMonolingual
	Text     string
	Language string
}

// Snak is a property/value pair, used for qualifiers and references.
type Snak struct {
	Property EntityID
	Datatype string
	HasValue bool // false for somevalue/novalue snaks
	Value    RawValue
}

// Rank is a statement rank.
type Rank string

const (
	RankPreferred  Rank = "preferred"
	RankNormal     Rank = "normal"
	RankDeprecated Rank = "deprecated"
)

// RawClaim is one statement: a main snak plus qualifiers and references.
type RawClaim struct {
	Property   EntityID
	Datatype   string
	HasValue   bool
	Value      RawValue
	Qualifiers []Snak
	References [][]Snak
	Rank       Rank
}

// ClaimGroup holds the ordered statements for one property. Groups keep
// the order in which properties appeared in the upstream payload so that
// formatting is reproducible.
type ClaimGroup struct {
	Property EntityID
	Claims   []RawClaim
}

// RawItem is one fetched entity before label resolution.
type RawItem struct {
	ID           EntityID
	Labels       map[string]string
	Descriptions map[string]string
	Aliases      map[string][]string
	Claims       []ClaimGroup
}

// ResolvedItem is a RawItem plus a complete label table for every entity
// ID reachable from it. Formatters never look up labels remotely; every
// ID they encounter has an entry here, possibly a negative one.
type ResolvedItem struct {
	Item   RawItem
	Lang   string
	Labels map[EntityID]LabelEntry
}

// LabelFor returns the resolved label for id, or the bare ID string when
// no label is available.
func (r *ResolvedItem) LabelFor(id EntityID) string {
	if e, ok := r.Labels[id]; ok && e.Label != "" {
		return e.Label
	}
	return string(id)
}

// DescriptionFor returns the resolved description for id, if any.
func (r *ResolvedItem) DescriptionFor(id EntityID) string {
	return r.Labels[id].Description
}
