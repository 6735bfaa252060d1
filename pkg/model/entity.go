package model

import (
	"strings"
	"time"
)

// EntityID is an opaque Wikidata identifier (e.g. "Q42", "P31").
// Comparison is exact string equality; IDs are never recycled.
type EntityID string

// IsItem reports whether the ID belongs to the item namespace.
func (id EntityID) IsItem() bool {
	return strings.HasPrefix(string(id), "Q")
}

// IsProperty reports whether the ID belongs to the property namespace.
func (id EntityID) IsProperty() bool {
	return strings.HasPrefix(string(id), "P")
}

// Valid reports whether the ID looks like a namespaced Wikidata identifier.
func (id EntityID) Valid() bool {
	if len(id) < 2 {
		return false
	}
	if !id.IsItem() && !id.IsProperty() && !strings.HasPrefix(string(id), "L") {
		return false
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LabelKey identifies one cached label: an entity in one language.
type LabelKey struct {
	ID   EntityID
	Lang string
}

// LabelEntry is a resolved label/description for one LabelKey.
// An entry with neither label nor description is a negative entry: the
// remote service confirmed no label exists, and we cache that too.
type LabelEntry struct {
	Label          string    `json:"label,omitempty"`
	Description    string    `json:"description,omitempty"`
	LanguageServed string    `json:"language_served,omitempty"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// Negative reports whether this entry records "no label available".
func (e LabelEntry) Negative() bool {
	return e.Label == "" && e.Description == ""
}
