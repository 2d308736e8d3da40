package gatehouse

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/id"
)

// Record appends an entry to the audit ledger. A ledger write failure
// never blocks the triggering operation: it is reported on the process
// log and the entry is returned anyway so callers can inspect what was
// attempted. Pass a nil userID for system-initiated events.
func (e *Engine) Record(ctx context.Context, eventType string, userID *string, details map[string]any) *auditlog.Entry {
	entry := &auditlog.Entry{
		ID:        id.NewAuditLogID(),
		EventType: eventType,
		UserID:    userID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateAuditLog(ctx, entry); err != nil {
		e.logger.Warn("audit log write failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return entry
	}
	if e.plugins != nil {
		e.plugins.EmitAuditRecorded(ctx, entry)
	}
	return entry
}

// RecordLogin appends a login event for the given user.
func (e *Engine) RecordLogin(ctx context.Context, userID string, details map[string]any) *auditlog.Entry {
	uid := userID
	return e.Record(ctx, auditlog.EventLogin, &uid, details)
}

// AuditLogs queries the ledger, newest first.
func (e *Engine) AuditLogs(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	entries, err := e.store.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, storeFailure("list audit logs", err)
	}
	return entries, nil
}

// CountAuditLogs counts ledger entries matching the filter.
func (e *Engine) CountAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	n, err := e.store.CountAuditLogs(ctx, filter)
	if err != nil {
		return 0, storeFailure("count audit logs", err)
	}
	return n, nil
}
