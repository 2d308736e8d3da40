// Package auditlog defines the append-only audit ledger Entry entity.
package auditlog

import (
	"errors"
	"time"

	"github.com/xraph/gatehouse/id"
)

// ErrNotFound is wrapped by store backends when an entry does not exist.
var ErrNotFound = errors.New("audit log entry not found")

// Well-known event types. EventType is free-form; privilege-change events
// use the workflow operation name, authentication uses EventLogin.
const (
	EventLogin     = "login"
	EventBootstrap = "bootstrap"
)

// Entry is a single audit record. Entries are append-only: the application
// never mutates or deletes them. A nil UserID marks a system-initiated
// event (bootstrap, maintenance) rather than a user action.
type Entry struct {
	ID        id.AuditLogID  `json:"id" db:"id"`
	EventType string         `json:"event_type" db:"event_type"`
	UserID    *string        `json:"user_id,omitempty" db:"user_id"`
	Details   map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying the ledger.
// Results are ordered newest-first.
type QueryFilter struct {
	EventTypePrefix string     `json:"event_type_prefix,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	After           *time.Time `json:"after,omitempty"`
	Before          *time.Time `json:"before,omitempty"`
	Limit           int        `json:"limit,omitempty"`
	Offset          int        `json:"offset,omitempty"`
}
