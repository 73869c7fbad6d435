package port

import "context"

// AuditEntry represents a single auditable DDL event.
type AuditEntry struct {
	Tool       string
	Statement  string
	Object     string
	DurationMS int64
	Err        error
}

// DDLAuditor records statistics DDL audit events.
type DDLAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}

// NoopAuditor discards all audit entries.
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, AuditEntry) {}
func (NoopAuditor) Close() error                       { return nil }
