package labels

import (
	"wikitextifier/pkg/model"
)

// Collect walks an item and returns every entity ID a formatter will
// need a label for: the item itself, claim properties, entity-valued
// snaks, quantity units and coordinate globes, across main snaks,
// qualifiers and references. The result is deduplicated and keeps
// first-seen order. Malformed IDs are skipped.
func Collect(item *model.RawItem) []model.EntityID {
	c := collector{
		seen: make(map[model.EntityID]struct{}),
	}
	c.add(item.ID)

	for _, group := range item.Claims {
		c.add(group.Property)
		for i := range group.Claims {
			claim := &group.Claims[i]
			if claim.HasValue {
				c.addValue(claim.Value)
			}
			for _, q := range claim.Qualifiers {
				c.addSnak(q)
			}
			for _, ref := range claim.References {
				for _, s := range ref {
					c.addSnak(s)
				}
			}
		}
	}

	return c.ids
}

type collector struct {
	seen map[model.EntityID]struct{}
	ids  []model.EntityID
}

func (c *collector) add(id model.EntityID) {
	if !id.Valid() {
		return
	}
	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = struct{}{}
	c.ids = append(c.ids, id)
}

func (c *collector) addSnak(s model.Snak) {
	c.add(s.Property)
	if s.HasValue {
		c.addValue(s.Value)
	}
}

func (c *collector) addValue(v model.RawValue) {
	switch v.Kind {
	case model.KindEntity:
		c.add(v.Entity)
	case model.KindQuantity:
		c.add(v.Unit)
	case model.KindCoordinate:
		c.add(v.Globe)
	}
}
