// Package convert applies a lunar calendar directive to a record.
//
// Conversion is all or nothing: references are processed left to right on a
// scratch copy, the first failure stops the walk, and the caller's record is
// only replaced when every reference converted.
package convert

import (
	"fmt"

	"ttdl-lunar-calendar/internal/directive"
	"ttdl-lunar-calendar/internal/lunar"
	"ttdl-lunar-calendar/internal/record"

	"go.uber.org/zap"
)

// Converted describes one field rewritten by Apply.
type Converted struct {
	Reference directive.Reference
	From      string
	To        string
}

// Orchestrator resolves references and drives the calendar converter.
type Orchestrator struct {
	calendar lunar.Converter
	logger   *zap.Logger
}

// New returns an orchestrator. A nil logger disables logging.
func New(calendar lunar.Converter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{calendar: calendar, logger: logger}
}

// Apply runs plan against rec. On success it returns the converted copy and
// the list of changes; rec itself is never modified. On failure it returns
// exactly one error describing the first problem found.
func (o *Orchestrator) Apply(rec *record.Record, plan directive.Plan) (*record.Record, []Converted, error) {
	scratch := rec.Clone()

	refs, err := o.references(scratch, plan)
	if err != nil {
		return nil, nil, err
	}

	converted, err := o.walk(scratch, refs)
	if err != nil {
		return nil, nil, err
	}

	if plan.DropsDirective() {
		scratch.SpecialTags.Remove(directive.Key)
	}
	return scratch, converted, nil
}

func (o *Orchestrator) references(rec *record.Record, plan directive.Plan) ([]directive.Reference, error) {
	switch p := plan.(type) {
	case directive.ExplicitReferenceList:
		return p.References, nil
	case directive.EnableAllDueFields:
		if !p.Enabled {
			return nil, nil
		}
		return dueReferences(rec)
	default:
		return nil, fmt.Errorf("unsupported plan %T", plan)
	}
}

// dueReferences lists every field named due, special tags first.
func dueReferences(rec *record.Record) ([]directive.Reference, error) {
	var refs []directive.Reference
	if rec.SpecialTags.Has(directive.DueField) {
		refs = append(refs, directive.Reference{
			Literal: directive.Marker + directive.DueField,
			Name:    directive.DueField,
			Kind:    directive.SpecialTag,
		})
	}
	if rec.Optional.Has(directive.DueField) {
		refs = append(refs, directive.Reference{
			Literal: directive.DueField,
			Name:    directive.DueField,
			Kind:    directive.Optional,
		})
	}
	if len(refs) == 0 {
		return nil, &NotFoundError{Literal: directive.DueField}
	}
	return refs, nil
}

func (o *Orchestrator) walk(rec *record.Record, refs []directive.Reference) ([]Converted, error) {
	seen := make(map[string]bool, len(refs))
	converted := make([]Converted, 0, len(refs))

	for _, ref := range refs {
		target := rec.SpecialTags
		if ref.Kind == directive.Optional {
			target = rec.Optional
		}

		if seen[ref.Literal] {
			return nil, &DuplicateReferenceError{Literal: ref.Literal}
		}
		field, ok := target.Get(ref.Name)
		if !ok {
			return nil, &NotFoundError{Literal: ref.Literal}
		}

		value, ok := field.Text()
		if !ok {
			return nil, &BadFormatError{Literal: ref.Literal}
		}
		date, err := lunar.ParseDate(value)
		if err != nil {
			return nil, &BadFormatError{Literal: ref.Literal}
		}
		solar, err := o.calendar.ToSolar(date)
		if err != nil {
			return nil, &BadValueError{Literal: ref.Literal, Err: err}
		}

		target.SetString(ref.Name, solar.String())
		seen[ref.Literal] = true
		converted = append(converted, Converted{Reference: ref, From: value, To: solar.String()})

		o.logger.Debug("field converted",
			zap.String("reference", ref.Literal),
			zap.Stringer("kind", ref.Kind),
			zap.String("lunar", value),
			zap.String("solar", solar.String()))
	}
	return converted, nil
}
