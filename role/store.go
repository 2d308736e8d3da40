package role

import (
	"context"

	"github.com/xraph/gatehouse/id"
)

// Store defines persistence operations for roles and the role↔permission
// edge set. All mutations are atomic: the edge is created/removed and
// visible to subsequent reads, or nothing changes.
type Store interface {
	// CreateRole persists a new role.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.RoleID) (*Role, error)

	// GetRoleByName retrieves a role by its unique name (case-sensitive).
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// UpdateRole persists changes to a role.
	UpdateRole(ctx context.Context, r *Role) error

	// ListRoles returns roles matching the filter.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// CountRoles returns the number of roles matching the filter.
	CountRoles(ctx context.Context, filter *ListFilter) (int64, error)

	// ListRolePermissions returns permission IDs attached to a role.
	ListRolePermissions(ctx context.Context, roleID id.RoleID) ([]id.PermissionID, error)

	// AttachPermission links a permission to a role. Attaching an
	// already-linked permission is a no-op success.
	AttachPermission(ctx context.Context, roleID id.RoleID, permID id.PermissionID) error

	// DetachPermission removes a permission from a role. Detaching an
	// absent link is a no-op success.
	DetachPermission(ctx context.Context, roleID id.RoleID, permID id.PermissionID) error
}
