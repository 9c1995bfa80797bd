package record

import (
	"encoding/json"
	"sort"
)

// Normalize turns the raw group lists into collections keyed by field name.
// Each field remembers the position of its group. A name that appears twice
// in one list is rejected with a *DuplicateFieldError.
func Normalize(raw *Raw) (*Record, error) {
	special, err := normalizeGroups(KeySpecialTags, raw.SpecialTags)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Description: raw.Description,
		SpecialTags: special,
		members:     cloneMembers(raw.members),
		description: append(json.RawMessage(nil), raw.description...),
	}
	if raw.HasOptional {
		optional, err := normalizeGroups(KeyOptional, raw.Optional)
		if err != nil {
			return nil, err
		}
		rec.Optional = optional
	}
	return rec, nil
}

func normalizeGroups(collection string, groups []Group) (*Collection, error) {
	c := &Collection{fields: make([]Field, 0, len(groups))}
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			c.empty = append(c.empty, i)
			continue
		}
		for _, e := range g {
			if seen[e.Name] {
				return nil, &DuplicateFieldError{Collection: collection, Name: e.Name}
			}
			seen[e.Name] = true
			c.fields = append(c.fields, Field{
				Name:  e.Name,
				Value: append(json.RawMessage(nil), e.Value...),
				Group: i,
			})
		}
	}
	return c, nil
}

// Denormalize rebuilds the wire form. Fields are emitted by ascending group
// position; fields sharing a position go back into one group. Groups that
// were empty on input keep their place, groups left empty by Remove disappear.
func Denormalize(rec *Record) *Raw {
	raw := &Raw{
		Description: rec.Description,
		SpecialTags: denormalizeCollection(rec.SpecialTags),
		members:     cloneMembers(rec.members),
		description: append(json.RawMessage(nil), rec.description...),
	}
	if rec.Optional != nil {
		raw.Optional = denormalizeCollection(rec.Optional)
		raw.HasOptional = true
	}
	return raw
}

func denormalizeCollection(c *Collection) []Group {
	fields := c.Fields()
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Group < fields[j].Group
	})

	var empty []int
	if c != nil {
		empty = c.empty
	}

	groups := make([]Group, 0, len(fields)+len(empty))
	last := -1
	for _, f := range fields {
		for len(empty) > 0 && empty[0] < f.Group {
			groups = append(groups, Group{})
			empty = empty[1:]
		}
		entry := Entry{Name: f.Name, Value: f.Value}
		if len(groups) > 0 && f.Group == last {
			groups[len(groups)-1] = append(groups[len(groups)-1], entry)
			continue
		}
		groups = append(groups, Group{entry})
		last = f.Group
	}
	for range empty {
		groups = append(groups, Group{})
	}
	return groups
}
