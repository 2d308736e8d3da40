// Package gatehouse provides a role-based authorization kernel for Go.
//
// Gatehouse models a flat set of roles, permissions keyed by (resource,
// action) pairs, role assignments to users, and an append-only audit
// ledger. A user's effective permission set is the union of permissions
// across all assigned roles; the super-admin role bypasses fine-grained
// checks entirely. Privilege mutations run through a guarded workflow
// that authorizes the caller, executes the store mutation, and always
// records exactly one audit entry.
//
//	eng, err := gatehouse.NewEngine(
//	    gatehouse.WithStore(memStore),
//	)
//	allowed, err := eng.HasCapability(ctx, "user_123", "rfps", "read")
package gatehouse

import (
	"context"

	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/role"
)

// ID is the primary identifier type for all Gatehouse entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// RoleSummary aggregates a user's role standing for display purposes.
// The Primary role is chosen by the configured rank table and must never
// be used for authorization decisions; the boolean flags come from the
// same checks the decision engine uses.
type RoleSummary struct {
	Roles        []*role.Role `json:"roles"`
	Primary      *role.Role   `json:"primary,omitempty"`
	IsSuperAdmin bool         `json:"is_super_admin"`
	IsAdmin      bool         `json:"is_admin"`
}

// Identity is a resolved user identity from the external identity provider.
// Gatehouse stores only the ID; email and name pass through for display.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// IdentityResolver yields the authenticated identity for a request.
// Implementations wrap whatever session or token machinery the host
// application uses. A nil identity with a nil error means the request
// is unauthenticated; every downstream check then fails closed.
type IdentityResolver interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}
