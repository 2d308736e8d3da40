package gatehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
)

// Operation names the privilege mutations the workflow can run. The
// operation name doubles as the audit event type.
type Operation string

const (
	// OpCreateRole creates a new role.
	OpCreateRole Operation = "role_create"

	// OpCreatePermission creates a new permission.
	OpCreatePermission Operation = "permission_create"

	// OpAssignRole assigns a role to a user.
	OpAssignRole Operation = "role_assign"

	// OpRevokeRole revokes a role from a user.
	OpRevokeRole Operation = "role_revoke"

	// OpAttachPermission attaches a permission to a role.
	OpAttachPermission Operation = "permission_attach"

	// OpDetachPermission detaches a permission from a role.
	OpDetachPermission Operation = "permission_detach"

	// OpPromoteSuperAdmin grants the super-admin role to a user.
	OpPromoteSuperAdmin Operation = "admin_promote"
)

// Outcome is the terminal state of a workflow invocation.
type Outcome string

const (
	// OutcomeCommitted means the mutation was applied.
	OutcomeCommitted Outcome = "committed"

	// OutcomeDenied means the caller failed the authorization gate.
	OutcomeDenied Outcome = "denied"

	// OutcomeFailed means the mutation was attempted and failed.
	OutcomeFailed Outcome = "failed"
)

// gateFunc decides whether the caller may run an operation.
type gateFunc func(ctx context.Context, callerID string) (bool, error)

// runPrivileged is the single path every privilege mutation takes:
// authorize the caller, execute the store mutation, and record exactly
// one audit entry no matter how the invocation ends. The authorization
// gate always completes before the mutation starts, and a denial is
// itself an audited event.
func (e *Engine) runPrivileged(ctx context.Context, op Operation, callerID string, details map[string]any, gate gateFunc, exec func(context.Context) error) error {
	outcome := OutcomeFailed
	var opErr error

	defer func() {
		if details == nil {
			details = map[string]any{}
		}
		details["operation"] = string(op)
		details["outcome"] = string(outcome)
		if opErr != nil {
			details["error"] = opErr.Error()
		}
		var uid *string
		if callerID != "" {
			caller := callerID
			uid = &caller
		}
		e.Record(ctx, string(op), uid, details)
	}()

	if callerID == "" {
		outcome = OutcomeDenied
		opErr = fmt.Errorf("%w: unauthenticated caller", ErrNotAuthorized)
		return opErr
	}

	allowed, err := gate(ctx, callerID)
	if err != nil {
		opErr = err
		return opErr
	}
	if !allowed {
		outcome = OutcomeDenied
		opErr = fmt.Errorf("%w: caller %s may not %s", ErrNotAuthorized, callerID, op)
		return opErr
	}

	if err := exec(ctx); err != nil {
		opErr = err
		return opErr
	}
	outcome = OutcomeCommitted
	return nil
}

func (e *Engine) adminGate(ctx context.Context, callerID string) (bool, error) {
	return e.HasAdminAccess(ctx, callerID)
}

func (e *Engine) superAdminGate(ctx context.Context, callerID string) (bool, error) {
	return e.IsSuperAdmin(ctx, callerID)
}

// CreateRole creates a new role on behalf of callerID.
func (e *Engine) CreateRole(ctx context.Context, callerID, name, description string) (*role.Role, error) {
	name = strings.TrimSpace(name)
	var created *role.Role

	err := e.runPrivileged(ctx, OpCreateRole, callerID,
		map[string]any{"target": name},
		e.adminGate,
		func(ctx context.Context) error {
			if name == "" {
				return fmt.Errorf("%w: role name must not be empty", ErrInvalidInput)
			}
			if _, err := e.store.GetRoleByName(ctx, name); err == nil {
				return fmt.Errorf("%w: role %q", ErrDuplicateName, name)
			} else if !errors.Is(err, role.ErrNotFound) {
				return storeFailure("get role by name", err)
			}

			now := time.Now().UTC()
			r := &role.Role{
				ID:          id.NewRoleID(),
				Name:        name,
				Description: description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := e.store.CreateRole(ctx, r); err != nil {
				return storeFailure("create role", err)
			}
			created = r
			if e.plugins != nil {
				e.plugins.EmitRoleCreated(ctx, r)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreatePermission creates a new permission on behalf of callerID.
// Resource and action are free-form; two permissions with different
// names may carry the same (resource, action) pair.
func (e *Engine) CreatePermission(ctx context.Context, callerID, name, resource, action, description string) (*permission.Permission, error) {
	name = strings.TrimSpace(name)
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(action)
	var created *permission.Permission

	err := e.runPrivileged(ctx, OpCreatePermission, callerID,
		map[string]any{"target": name, "resource": resource, "action": action},
		e.adminGate,
		func(ctx context.Context) error {
			if name == "" {
				return fmt.Errorf("%w: permission name must not be empty", ErrInvalidInput)
			}
			if resource == "" || action == "" {
				return fmt.Errorf("%w: resource and action must not be empty", ErrInvalidInput)
			}
			if _, err := e.store.GetPermissionByName(ctx, name); err == nil {
				return fmt.Errorf("%w: permission %q", ErrDuplicateName, name)
			} else if !errors.Is(err, permission.ErrNotFound) {
				return storeFailure("get permission by name", err)
			}

			now := time.Now().UTC()
			p := &permission.Permission{
				ID:          id.NewPermissionID(),
				Name:        name,
				Description: description,
				Resource:    resource,
				Action:      action,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := e.store.CreatePermission(ctx, p); err != nil {
				return storeFailure("create permission", err)
			}
			created = p
			if e.plugins != nil {
				e.plugins.EmitPermissionCreated(ctx, p)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AssignRole grants the named role to userID. Assigning a role the
// user already holds is a no-op success.
func (e *Engine) AssignRole(ctx context.Context, callerID, userID, roleName string) error {
	return e.runPrivileged(ctx, OpAssignRole, callerID,
		map[string]any{"target": userID, "role": roleName},
		e.adminGate,
		func(ctx context.Context) error {
			if userID == "" || roleName == "" {
				return fmt.Errorf("%w: user id and role name must not be empty", ErrInvalidInput)
			}
			r, err := e.lookupRole(ctx, roleName)
			if err != nil {
				return err
			}
			return e.assignRoleEdge(ctx, callerID, userID, r)
		},
	)
}

// RevokeRole removes the named role from userID. Revoking a role the
// user does not hold is a no-op success.
func (e *Engine) RevokeRole(ctx context.Context, callerID, userID, roleName string) error {
	return e.runPrivileged(ctx, OpRevokeRole, callerID,
		map[string]any{"target": userID, "role": roleName},
		e.adminGate,
		func(ctx context.Context) error {
			if userID == "" || roleName == "" {
				return fmt.Errorf("%w: user id and role name must not be empty", ErrInvalidInput)
			}
			r, err := e.lookupRole(ctx, roleName)
			if err != nil {
				return err
			}
			if err := e.store.DeleteAssignmentByUserRole(ctx, userID, r.ID); err != nil {
				return storeFailure("delete assignment", err)
			}
			if e.cache != nil {
				e.cache.InvalidateUser(ctx, userID)
			}
			if e.plugins != nil {
				e.plugins.EmitRoleRevoked(ctx, userID, r.ID)
			}
			return nil
		},
	)
}

// AttachPermission attaches the named permission to the named role.
// Attaching an already-attached permission is a no-op success.
func (e *Engine) AttachPermission(ctx context.Context, callerID, roleName, permName string) error {
	return e.runPrivileged(ctx, OpAttachPermission, callerID,
		map[string]any{"target": roleName, "permission": permName},
		e.adminGate,
		func(ctx context.Context) error {
			r, p, err := e.lookupRolePermission(ctx, roleName, permName)
			if err != nil {
				return err
			}
			if err := e.store.AttachPermission(ctx, r.ID, p.ID); err != nil {
				return storeFailure("attach permission", err)
			}
			// The grant may widen any holder of this role.
			if e.cache != nil {
				e.cache.InvalidateAll(ctx)
			}
			if e.plugins != nil {
				e.plugins.EmitPermissionAttached(ctx, r.ID, p.ID)
			}
			return nil
		},
	)
}

// DetachPermission detaches the named permission from the named role.
// Detaching an absent link is a no-op success.
func (e *Engine) DetachPermission(ctx context.Context, callerID, roleName, permName string) error {
	return e.runPrivileged(ctx, OpDetachPermission, callerID,
		map[string]any{"target": roleName, "permission": permName},
		e.adminGate,
		func(ctx context.Context) error {
			r, p, err := e.lookupRolePermission(ctx, roleName, permName)
			if err != nil {
				return err
			}
			if err := e.store.DetachPermission(ctx, r.ID, p.ID); err != nil {
				return storeFailure("detach permission", err)
			}
			if e.cache != nil {
				e.cache.InvalidateAll(ctx)
			}
			if e.plugins != nil {
				e.plugins.EmitPermissionDetached(ctx, r.ID, p.ID)
			}
			return nil
		},
	)
}

// PromoteToSuperAdmin grants the super-admin role to targetUserID.
// Only a caller who already holds the super-admin role passes the
// gate; admin access is not sufficient. Promotion is idempotent at
// the store level, and the workflow never retries on its own.
func (e *Engine) PromoteToSuperAdmin(ctx context.Context, callerID, targetUserID string) error {
	return e.runPrivileged(ctx, OpPromoteSuperAdmin, callerID,
		map[string]any{"target": targetUserID},
		e.superAdminGate,
		func(ctx context.Context) error {
			if targetUserID == "" {
				return fmt.Errorf("%w: target user id must not be empty", ErrInvalidInput)
			}
			r, err := e.lookupRole(ctx, e.config.SuperAdminRole)
			if err != nil {
				return err
			}
			if err := e.assignRoleEdge(ctx, callerID, targetUserID, r); err != nil {
				return err
			}
			if e.plugins != nil {
				e.plugins.EmitSuperAdminPromoted(ctx, callerID, targetUserID)
			}
			return nil
		},
	)
}

// assignRoleEdge writes the role→user edge and invalidates the user's
// cached capability answers.
func (e *Engine) assignRoleEdge(ctx context.Context, callerID, userID string, r *role.Role) error {
	a := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		RoleID:    r.ID,
		UserID:    userID,
		GrantedBy: callerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateAssignment(ctx, a); err != nil {
		return storeFailure("create assignment", err)
	}
	if e.cache != nil {
		e.cache.InvalidateUser(ctx, userID)
	}
	if e.plugins != nil {
		e.plugins.EmitRoleAssigned(ctx, a)
	}
	return nil
}

func (e *Engine) lookupRole(ctx context.Context, name string) (*role.Role, error) {
	r, err := e.store.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %q", ErrNotFound, name)
		}
		return nil, storeFailure("get role by name", err)
	}
	return r, nil
}

func (e *Engine) lookupRolePermission(ctx context.Context, roleName, permName string) (*role.Role, *permission.Permission, error) {
	if roleName == "" || permName == "" {
		return nil, nil, fmt.Errorf("%w: role and permission names must not be empty", ErrInvalidInput)
	}
	r, err := e.lookupRole(ctx, roleName)
	if err != nil {
		return nil, nil, err
	}
	p, err := e.store.GetPermissionByName(ctx, permName)
	if err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: permission %q", ErrNotFound, permName)
		}
		return nil, nil, storeFailure("get permission by name", err)
	}
	return r, p, nil
}
