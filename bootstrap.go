package gatehouse

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
)

// SeedOptions configures bootstrap seeding.
type SeedOptions struct {
	// InitialSuperAdmin is a user ID granted the super-admin role at
	// bootstrap. This is the only path to a first super-admin; after
	// bootstrap, only an existing super-admin can mint another. Empty
	// means no initial grant.
	InitialSuperAdmin string
}

// Default catalog seeded at bootstrap. Resources mirror the admin
// surface of the host application; actions are plain CRUD.
var (
	seedResources = []string{"users", "rfps", "roles", "permissions", "logs"}
	seedActions   = []string{"create", "read", "update", "delete"}
)

// Seed provisions the built-in roles and permission catalog. It is
// idempotent: existing roles, permissions, and links are left alone, so
// re-running at every startup is safe. When anything was created, one
// system-initiated audit entry records the bootstrap.
func (e *Engine) Seed(ctx context.Context, opts *SeedOptions) error {
	if opts == nil {
		opts = &SeedOptions{}
	}

	var createdRoles, createdPerms int

	roleNames := []string{e.config.SuperAdminRole, e.config.AdminRole, "manager", "user"}
	roles := make(map[string]*role.Role, len(roleNames))
	for _, name := range roleNames {
		r, created, err := e.ensureRole(ctx, name)
		if err != nil {
			return err
		}
		if created {
			createdRoles++
		}
		roles[name] = r
	}

	perms := make(map[string]*permission.Permission)
	for _, res := range seedResources {
		for _, act := range seedActions {
			p, created, err := e.ensurePermission(ctx, res, act)
			if err != nil {
				return err
			}
			if created {
				createdPerms++
			}
			perms[res+":"+act] = p
		}
	}

	// The super-admin role carries no explicit grants: it bypasses
	// capability checks entirely. Admin gets the full catalog.
	for _, p := range perms {
		if err := e.store.AttachPermission(ctx, roles[e.config.AdminRole].ID, p.ID); err != nil {
			return storeFailure("attach permission", err)
		}
	}

	// Manager reads everything and manages RFP records.
	managerGrants := []string{"rfps:create", "rfps:update"}
	for _, res := range seedResources {
		managerGrants = append(managerGrants, res+":read")
	}
	for _, name := range managerGrants {
		if err := e.store.AttachPermission(ctx, roles["manager"].ID, perms[name].ID); err != nil {
			return storeFailure("attach permission", err)
		}
	}

	// Plain users may only read RFP records.
	if err := e.store.AttachPermission(ctx, roles["user"].ID, perms["rfps:read"].ID); err != nil {
		return storeFailure("attach permission", err)
	}

	if opts.InitialSuperAdmin != "" {
		a := &assignment.Assignment{
			ID:        id.NewAssignmentID(),
			RoleID:    roles[e.config.SuperAdminRole].ID,
			UserID:    opts.InitialSuperAdmin,
			CreatedAt: time.Now().UTC(),
		}
		if err := e.store.CreateAssignment(ctx, a); err != nil {
			return storeFailure("create assignment", err)
		}
		if e.cache != nil {
			e.cache.InvalidateUser(ctx, opts.InitialSuperAdmin)
		}
	}

	if createdRoles > 0 || createdPerms > 0 {
		details := map[string]any{
			"roles_created":       createdRoles,
			"permissions_created": createdPerms,
		}
		if opts.InitialSuperAdmin != "" {
			details["initial_super_admin"] = opts.InitialSuperAdmin
		}
		e.Record(ctx, auditlog.EventBootstrap, nil, details)
	}
	return nil
}

// ensureRole fetches a role by name, creating it as a system role if
// missing. Reports whether a create happened.
func (e *Engine) ensureRole(ctx context.Context, name string) (*role.Role, bool, error) {
	r, err := e.store.GetRoleByName(ctx, name)
	if err == nil {
		return r, false, nil
	}
	if !errors.Is(err, role.ErrNotFound) {
		return nil, false, storeFailure("get role by name", err)
	}

	now := time.Now().UTC()
	r = &role.Role{
		ID:        id.NewRoleID(),
		Name:      name,
		IsSystem:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateRole(ctx, r); err != nil {
		return nil, false, storeFailure("create role", err)
	}
	return r, true, nil
}

// ensurePermission fetches a permission named "resource:action",
// creating it as a system permission if missing.
func (e *Engine) ensurePermission(ctx context.Context, resource, action string) (*permission.Permission, bool, error) {
	name := resource + ":" + action
	p, err := e.store.GetPermissionByName(ctx, name)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, permission.ErrNotFound) {
		return nil, false, storeFailure("get permission by name", err)
	}

	now := time.Now().UTC()
	p = &permission.Permission{
		ID:        id.NewPermissionID(),
		Name:      name,
		Resource:  resource,
		Action:    action,
		IsSystem:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreatePermission(ctx, p); err != nil {
		return nil, false, storeFailure("create permission", err)
	}
	return p, true, nil
}
