package auditlog

import "context"

// Store defines persistence operations for the audit ledger.
// The ledger is append-only: there are no update or delete operations.
type Store interface {
	// CreateAuditLog persists a new entry.
	CreateAuditLog(ctx context.Context, entry *Entry) error

	// ListAuditLogs returns entries matching the filter, newest first.
	ListAuditLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountAuditLogs returns the number of entries matching the filter.
	CountAuditLogs(ctx context.Context, filter *QueryFilter) (int64, error)
}
