package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditOutcome is how one invocation ended.
type AuditOutcome string

const (
	// Record had no directive and was returned as is.
	AuditPassthrough AuditOutcome = "passthrough"
	// Every referenced field was converted.
	AuditConverted AuditOutcome = "converted"
	// A directive-level error was written into the description.
	AuditAnnotated AuditOutcome = "annotated"
	// The record could not be read; nothing was written.
	AuditFailed AuditOutcome = "failed"
)

// AuditEvent is one structured summary line per invocation.
type AuditEvent struct {
	Outcome    AuditOutcome
	Plan       string
	References []string
	Error      string
	Duration   time.Duration
}

// Audit writes the event to the plugin category.
func (m *Manager) Audit(e AuditEvent) {
	fields := []zap.Field{
		zap.String("outcome", string(e.Outcome)),
		zap.Int64("dur_us", e.Duration.Microseconds()),
	}
	if e.Plan != "" {
		fields = append(fields, zap.String("plan", e.Plan))
	}
	if len(e.References) > 0 {
		fields = append(fields, zap.Strings("references", e.References))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}

	l := m.Get(CategoryPlugin)
	if e.Outcome == AuditFailed {
		l.Error("record rejected", fields...)
		return
	}
	l.Info("record processed", fields...)
}
