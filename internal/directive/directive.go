// Package directive parses the !lunar-calendar special tag.
//
// The tag comes in two shapes. A list of references names the fields to
// convert:
//
//	!lunar-calendar:created,#due,#tag
//
// where a leading # points at a special tag and a bare name points at an
// optional field. A boolean flag converts every field named "due":
//
//	!lunar-calendar:true
package directive

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const (
	// Key is the special tag holding the directive.
	Key = "!lunar-calendar"
	// Marker prefixes references to special tags.
	Marker = "#"
	// Separator splits the reference list.
	Separator = ","
	// DueField is the field converted by the boolean form.
	DueField = "due"
)

// ErrUnsupportedValue is returned for directive values that are neither
// strings nor booleans.
var ErrUnsupportedValue = errors.New("directive must be a string or a boolean")

// Kind tells which collection a reference points into.
type Kind int

const (
	SpecialTag Kind = iota
	Optional
)

func (k Kind) String() string {
	switch k {
	case SpecialTag:
		return "special tag"
	case Optional:
		return "optional"
	default:
		return "unknown"
	}
}

// Reference is one entry of the reference list.
type Reference struct {
	// Literal is the entry as written, used in error messages.
	Literal string
	// Name is the field name with the marker removed.
	Name string
	Kind Kind
}

// Parse splits a reference list. Empty segments are skipped and no
// whitespace is trimmed, so " #tag" looks up an optional named " #tag".
func Parse(value string) []Reference {
	var refs []Reference
	for _, segment := range strings.Split(value, Separator) {
		if segment == "" {
			continue
		}
		if name, ok := strings.CutPrefix(segment, Marker); ok {
			refs = append(refs, Reference{Literal: segment, Name: name, Kind: SpecialTag})
			continue
		}
		refs = append(refs, Reference{Literal: segment, Name: segment, Kind: Optional})
	}
	return refs
}

// Plan is what a directive asks for. It is either ExplicitReferenceList or
// EnableAllDueFields.
type Plan interface {
	// DropsDirective reports whether the directive tag is removed from the
	// record after a successful conversion.
	DropsDirective() bool
	isPlan()
}

// ExplicitReferenceList converts the listed fields in order.
type ExplicitReferenceList struct {
	References []Reference
}

func (ExplicitReferenceList) DropsDirective() bool { return false }
func (ExplicitReferenceList) isPlan()              {}

// EnableAllDueFields converts every field named DueField when Enabled.
type EnableAllDueFields struct {
	Enabled bool
}

func (EnableAllDueFields) DropsDirective() bool { return true }
func (EnableAllDueFields) isPlan()              {}

// ParsePlan picks the plan from the raw JSON value of the directive tag.
func ParsePlan(value json.RawMessage) (Plan, error) {
	trimmed := bytes.TrimSpace(value)
	switch {
	case bytes.Equal(trimmed, []byte("true")):
		return EnableAllDueFields{Enabled: true}, nil
	case bytes.Equal(trimmed, []byte("false")):
		return EnableAllDueFields{Enabled: false}, nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return ParseString(s), nil
	default:
		return nil, ErrUnsupportedValue
	}
}

// ParseString picks the plan for a directive given as text.
func ParseString(s string) Plan {
	if enabled, ok := parseFlag(s); ok {
		return EnableAllDueFields{Enabled: enabled}
	}
	return ExplicitReferenceList{References: Parse(s)}
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
