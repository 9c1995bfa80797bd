// Package plugin runs one TTDL record through the lunar calendar pipeline.
//
// Run is the whole plugin: decode the record, find the !lunar-calendar
// directive, convert the fields it names and encode the result. Problems with
// the directive or the field values never fail the call; they are reported by
// prefixing the description of the otherwise unchanged record. Only input
// that is not a record at all returns an error.
package plugin

import (
	"errors"
	"fmt"
	"time"

	"ttdl-lunar-calendar/internal/config"
	"ttdl-lunar-calendar/internal/convert"
	"ttdl-lunar-calendar/internal/directive"
	"ttdl-lunar-calendar/internal/logging"
	"ttdl-lunar-calendar/internal/lunar"
	"ttdl-lunar-calendar/internal/record"

	"go.uber.org/zap"
)

// Name appears in every error annotation.
const Name = config.AppName

// Annotation returns the description prefix reporting err.
func Annotation(err error) string {
	return fmt.Sprintf("[ERR(%s) %s] ", Name, err.Error())
}

// Plugin is the record filter.
type Plugin struct {
	orchestrator *convert.Orchestrator
	logs         *logging.Manager
}

// New returns a plugin converting with calendar. A nil manager disables logging.
func New(calendar lunar.Converter, logs *logging.Manager) *Plugin {
	if logs == nil {
		logs = logging.Nop()
	}
	return &Plugin{
		orchestrator: convert.New(calendar, logs.Get(logging.CategoryConvert)),
		logs:         logs,
	}
}

// Run processes one encoded record and returns the encoded result.
func (p *Plugin) Run(input []byte) ([]byte, error) {
	start := time.Now()
	event := logging.AuditEvent{}
	defer func() {
		event.Duration = time.Since(start)
		p.logs.Audit(event)
	}()

	raw, err := record.Decode(input)
	if err != nil {
		event.Outcome, event.Error = logging.AuditFailed, err.Error()
		return nil, err
	}

	if !raw.HasField(directive.Key) {
		event.Outcome = logging.AuditPassthrough
		return input, nil
	}

	out, converted, plan, err := p.process(raw)
	event.Plan = planName(plan)
	for _, c := range converted {
		event.References = append(event.References, c.Reference.Literal)
	}
	if err == nil {
		event.Outcome = logging.AuditConverted
		return out, nil
	}

	var fatal *encodeError
	if errors.As(err, &fatal) {
		event.Outcome, event.Error = logging.AuditFailed, err.Error()
		return nil, err
	}

	event.Outcome, event.Error = logging.AuditAnnotated, err.Error()
	annotated, encErr := annotate(raw, err)
	if encErr != nil {
		event.Outcome, event.Error = logging.AuditFailed, encErr.Error()
		return nil, encErr
	}
	return annotated, nil
}

// process returns either the converted record or the in-band error to
// annotate the original with.
func (p *Plugin) process(raw *record.Raw) ([]byte, []convert.Converted, directive.Plan, error) {
	rec, err := record.Normalize(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	field, _ := rec.SpecialTags.Get(directive.Key)
	plan, err := directive.ParsePlan(field.Value)
	if err != nil {
		p.logs.Get(logging.CategoryDirective).Debug("unsupported directive value",
			zap.ByteString("value", field.Value), zap.Error(err))
		return nil, nil, nil, &convert.BadFormatError{Literal: directive.Key}
	}
	p.logs.Get(logging.CategoryDirective).Debug("directive parsed", zap.String("plan", planName(plan)))

	result, converted, err := p.orchestrator.Apply(rec, plan)
	if err != nil {
		return nil, nil, plan, err
	}

	out, err := record.Denormalize(result).Encode()
	if err != nil {
		return nil, nil, plan, &encodeError{err: err}
	}
	return out, converted, plan, nil
}

// annotate prefixes the description of the untouched input record.
func annotate(raw *record.Raw, cause error) ([]byte, error) {
	annotated := *raw
	annotated.Description = Annotation(cause) + raw.Description
	out, err := annotated.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode annotated record: %w", err)
	}
	return out, nil
}

type encodeError struct {
	err error
}

func (e *encodeError) Error() string { return fmt.Sprintf("encode record: %v", e.err) }
func (e *encodeError) Unwrap() error { return e.err }

func planName(plan directive.Plan) string {
	switch p := plan.(type) {
	case directive.ExplicitReferenceList:
		return "references"
	case directive.EnableAllDueFields:
		if p.Enabled {
			return "all-due"
		}
		return "disabled"
	default:
		return ""
	}
}
