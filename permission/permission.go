// Package permission defines the Permission entity and its store interface.
package permission

import (
	"errors"
	"time"

	"github.com/xraph/gatehouse/id"
)

// ErrNotFound is wrapped by store backends when a permission does not exist.
var ErrNotFound = errors.New("permission not found")

// Permission denotes "may perform Action on Resource". Name is the unique
// key; Resource and Action are free-form text, and two permissions with
// different names but the same (resource, action) pair are allowed.
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Resource    string          `json:"resource" db:"resource"`
	Action      string          `json:"action" db:"action"`
	IsSystem    bool            `json:"is_system" db:"is_system"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`
	IsSystem *bool  `json:"is_system,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
