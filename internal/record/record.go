// Package record models the task record exchanged with the TTDL host.
//
// The host sends one JSON object per invocation:
//
//	{"description": "...", "specialTags": [{"due": "2000-01-01"}, ...], "optional": [{"created": "..."}]}
//
// Both field lists are ordered sequences of single-entry groups. Order is part
// of the contract, so collections are association lists rather than maps, and
// every value keeps its original raw JSON until it is overwritten.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collection names as they appear on the wire.
const (
	KeyDescription = "description"
	KeySpecialTags = "specialTags"
	KeyOptional    = "optional"
)

// Field is one named value in a collection.
type Field struct {
	Name  string
	Value json.RawMessage
	// Group is the position of the group this field came from.
	Group int
}

// Text returns the field value when it is a JSON string.
func (f Field) Text() (string, bool) {
	if !isJSONString(f.Value) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// Collection is an order-preserving association list of fields.
// Names are unique once a collection has been built by Normalize.
type Collection struct {
	fields []Field
	// positions of groups that were already empty on input
	empty []int
}

// Len returns the number of fields.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Fields returns a copy of the fields in order.
func (c *Collection) Fields() []Field {
	if c == nil {
		return nil
	}
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

func (c *Collection) index(name string) int {
	if c == nil {
		return -1
	}
	for i, f := range c.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the field named name.
func (c *Collection) Get(name string) (Field, bool) {
	i := c.index(name)
	if i < 0 {
		return Field{}, false
	}
	return c.fields[i], true
}

// Has reports whether a field named name exists.
func (c *Collection) Has(name string) bool {
	return c.index(name) >= 0
}

// SetString overwrites the value of an existing field with a JSON string.
// It returns false if the field does not exist; fields are never added.
func (c *Collection) SetString(name, value string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	raw, err := marshalString(value)
	if err != nil {
		return false
	}
	c.fields[i].Value = raw
	return true
}

// Remove drops the field named name and reports whether it existed.
func (c *Collection) Remove(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.fields = append(c.fields[:i], c.fields[i+1:]...)
	return true
}

// Clone returns a deep copy. A nil collection clones to nil.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{
		fields: make([]Field, len(c.fields)),
		empty:  append([]int(nil), c.empty...),
	}
	for i, f := range c.fields {
		f.Value = append(json.RawMessage(nil), f.Value...)
		out.fields[i] = f
	}
	return out
}

// Record is the normalized form of a task record.
type Record struct {
	Description string
	SpecialTags *Collection
	// Optional is nil when the record has no optional list.
	Optional *Collection

	// top-level members in input order, used to re-emit unknown keys
	members     []member
	description json.RawMessage
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := &Record{
		Description: r.Description,
		SpecialTags: r.SpecialTags.Clone(),
		Optional:    r.Optional.Clone(),
		members:     cloneMembers(r.members),
		description: append(json.RawMessage(nil), r.description...),
	}
	return out
}

// DuplicateFieldError reports a field name that occurs more than once in
// one collection.
type DuplicateFieldError struct {
	Collection string
	Name       string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf(`duplicated field "%s"`, e.Name)
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) >= 2 && raw[0] == '"'
}

func marshalString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
