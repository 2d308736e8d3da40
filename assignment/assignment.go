// Package assignment defines the Assignment entity (role→user binding).
package assignment

import (
	"errors"
	"time"

	"github.com/xraph/gatehouse/id"
)

// ErrNotFound is wrapped by store backends when an assignment does not exist.
var ErrNotFound = errors.New("assignment not found")

// Assignment binds a role to a user. The (RoleID, UserID) pair is unique;
// a user holds a role at most once, and removing the assignment removes
// only this edge, never the role itself.
type Assignment struct {
	ID        id.AssignmentID `json:"id" db:"id"`
	RoleID    id.RoleID       `json:"role_id" db:"role_id"`
	UserID    string          `json:"user_id" db:"user_id"`
	GrantedBy string          `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing assignments.
type ListFilter struct {
	RoleID *id.RoleID `json:"role_id,omitempty"`
	UserID string     `json:"user_id,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
}
