package assignment

import (
	"context"

	"github.com/xraph/gatehouse/id"
)

// Store defines persistence operations for role assignments.
// Create and delete are idempotent: repeating the call with the same
// arguments leaves the same edge set as calling it once.
type Store interface {
	// CreateAssignment persists a role→user edge. Creating an edge that
	// already exists is a no-op success.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// DeleteAssignmentByUserRole removes the edge between a user and a
	// role. Removing an absent edge is a no-op success.
	DeleteAssignmentByUserRole(ctx context.Context, userID string, roleID id.RoleID) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListRolesForUser returns the role IDs assigned to a user.
	// Returns an empty slice (not an error) for a user with no assignments.
	ListRolesForUser(ctx context.Context, userID string) ([]id.RoleID, error)

	// ListUsersForRole returns all assignments of a role.
	ListUsersForRole(ctx context.Context, roleID id.RoleID) ([]*Assignment, error)
}
