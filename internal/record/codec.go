package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed marks input that is not a well-formed host record.
// Callers treat it as fatal; nothing is written back to the host.
var ErrMalformed = errors.New("malformed record")

// Entry is one name/value pair of a raw group.
type Entry struct {
	Name  string
	Value json.RawMessage
}

// Group is one element of a raw field list, normally holding a single entry.
type Group []Entry

// Raw is a record exactly as it appears on the wire.
type Raw struct {
	Description string
	SpecialTags []Group
	Optional    []Group
	HasOptional bool

	members     []member
	description json.RawMessage
}

type member struct {
	key   string
	value json.RawMessage
}

func cloneMembers(in []member) []member {
	out := make([]member, len(in))
	for i, m := range in {
		out[i] = member{key: m.key, value: append(json.RawMessage(nil), m.value...)}
	}
	return out
}

// HasField reports whether any group of the special tag list carries name.
// It works on the raw form so records without the name are never normalized.
func (r *Raw) HasField(name string) bool {
	for _, g := range r.SpecialTags {
		for _, e := range g {
			if e.Name == name {
				return true
			}
		}
	}
	return false
}

// Decode parses one host record.
func Decode(data []byte) (*Raw, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw := &Raw{members: members}
	var seenDescription, seenSpecialTags bool
	for _, m := range members {
		switch m.key {
		case KeyDescription:
			if !isJSONString(m.value) {
				return nil, fmt.Errorf("%w: %s must be a string", ErrMalformed, KeyDescription)
			}
			if err := json.Unmarshal(m.value, &raw.Description); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, KeyDescription, err)
			}
			raw.description = m.value
			seenDescription = true
		case KeySpecialTags:
			groups, err := decodeGroups(m.value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, KeySpecialTags, err)
			}
			if groups == nil {
				return nil, fmt.Errorf("%w: %s must be an array", ErrMalformed, KeySpecialTags)
			}
			raw.SpecialTags = groups
			seenSpecialTags = true
		case KeyOptional:
			groups, err := decodeGroups(m.value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, KeyOptional, err)
			}
			raw.Optional = groups
			raw.HasOptional = groups != nil
		}
	}

	if !seenDescription {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, KeyDescription)
	}
	if !seenSpecialTags {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, KeySpecialTags)
	}
	return raw, nil
}

// Encode writes the record as compact JSON, keeping the input key order and
// the raw bytes of every value that was not replaced.
func (r *Raw) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeMember := func(key string, value []byte) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := marshalString(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	wrote := map[string]bool{}
	emit := func(key string, original json.RawMessage) error {
		var value []byte
		var err error
		switch key {
		case KeyDescription:
			value, err = r.encodeDescription()
		case KeySpecialTags:
			value, err = encodeGroups(r.SpecialTags)
		case KeyOptional:
			if !r.HasOptional {
				if original == nil {
					return nil
				}
				value = original
			} else {
				value, err = encodeGroups(r.Optional)
			}
		default:
			value = original
		}
		if err != nil {
			return err
		}
		wrote[key] = true
		return writeMember(key, value)
	}

	for _, m := range r.members {
		if wrote[m.key] {
			continue
		}
		if err := emit(m.key, m.value); err != nil {
			return nil, err
		}
	}
	// Records built in code have no member order yet.
	for _, key := range []string{KeyDescription, KeySpecialTags, KeyOptional} {
		if !wrote[key] {
			if err := emit(key, nil); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Compact(&out, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return out.Bytes(), nil
}

func (r *Raw) encodeDescription() ([]byte, error) {
	if r.description != nil {
		var original string
		if err := json.Unmarshal(r.description, &original); err == nil && original == r.Description {
			return r.description, nil
		}
	}
	return marshalString(r.Description)
}

func encodeGroups(groups []Group) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, g := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, e := range g {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := marshalString(e.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(e.Value)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// decodeGroups returns nil for a JSON null.
func decodeGroups(data json.RawMessage) ([]Group, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("expected an array of objects")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(items))
	for i, item := range items {
		members, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		g := make(Group, len(members))
		for j, m := range members {
			g[j] = Entry{Name: m.key, Value: m.value}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// decodeObject reads a JSON object keeping member order and raw values.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected an object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		members = append(members, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after object")
	}
	return members, nil
}
