package sqlbind

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	loggerPointer atomic.Pointer[zap.Logger]
	auditEnabled  atomic.Bool
)

func init() {
	loggerPointer.Store(zap.NewNop())
}

// SetLogger sets the logger used by query execution helpers.
// A nil logger disables logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPointer.Store(l)
}

// SetAudit enables injection audit of string parameters
// before a query is executed, see Query.Audit.
func SetAudit(enabled bool) {
	auditEnabled.Store(enabled)
}

func logger() *zap.Logger {
	return loggerPointer.Load()
}

// logQuery is called right before a query is sent to a database.
func logQuery(q *Query, text string, args int) {
	l := logger()
	if auditEnabled.Load() {
		for _, s := range q.Audit() {
			l.Warn("Suspicious query parameter",
				zap.String("parameter", s.Name),
				zap.String("fingerprint", s.Fingerprint))
		}
	}
	if ce := l.Check(zap.DebugLevel, "Executing query"); ce != nil {
		ce.Write(
			zap.String("sql", text),
			zap.Int("args", args),
			zap.Stringer("dialect", q.dialect))
	}
}
