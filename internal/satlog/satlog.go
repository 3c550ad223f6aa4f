// Package satlog provides the structured logger the core passes to the
// saturation loop.
// Built on logrus, the structured-logging library the richer repos in
// the retrieval pack (e.g. the operator-framework dependency tree)
// depend on; every log line carries at least a run id, and the derived
// loggers WithRule and WithClause add a rule name or a clause id as
// fields rather than format-string interpolation.
package satlog

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry pre-populated with a run id, so every
// derived field-logger downstream stays correlated to one saturation
// run without passing the id through every call explicitly.
type Logger struct {
	*logrus.Entry
	RunID uuid.UUID
}

// New builds a Logger at the given level, writing structured (JSON)
// output to w (os.Stderr if nil).
func New(level logrus.Level, w *os.File) *Logger {
	if w == nil {
		w = os.Stderr
	}
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(level)
	base.SetFormatter(&logrus.JSONFormatter{})
	runID := uuid.New()
	return &Logger{Entry: base.WithField("run_id", runID.String()), RunID: runID}
}

// WithRule returns a derived logger tagged with the inference rule name
// currently executing, for the saturation loop's per-step trace lines.
func (l *Logger) WithRule(rule string) *logrus.Entry {
	return l.Entry.WithField("rule", rule)
}

// WithClause returns a derived logger tagged with a clause id, used when
// logging admission/discard/simplification decisions.
func (l *Logger) WithClause(id uint32) *logrus.Entry {
	return l.Entry.WithField("clause_id", id)
}
