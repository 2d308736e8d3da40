package gatehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/plugin"
	"github.com/xraph/gatehouse/role"
	"github.com/xraph/gatehouse/store"
)

// Engine is the central authorization engine. It answers capability
// questions over the role/permission store, runs the privilege-change
// workflow, and fires plugin hooks.
type Engine struct {
	store    store.Store
	cache    Cache
	plugins  *plugin.Registry
	logger   *slog.Logger
	config   Config
	resolver IdentityResolver
}

// NewEngine creates a new Gatehouse engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("gatehouse: store is required")
	}
	if e.config.SuperAdminRole == "" {
		e.config.SuperAdminRole = "developer"
	}
	if e.config.AdminRole == "" {
		e.config.AdminRole = "admin"
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// ResolveIdentity resolves the acting identity via the configured
// resolver. Returns nil when no resolver is set or no identity is bound
// to the context.
func (e *Engine) ResolveIdentity(ctx context.Context) (*Identity, error) {
	if e.resolver == nil {
		return nil, nil
	}
	return e.resolver.CurrentUser(ctx)
}

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown and notifies plugins.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// RolesForUser returns the roles assigned to a user. A user with no
// assignments (or an empty user ID) gets an empty slice, not an error.
func (e *Engine) RolesForUser(ctx context.Context, userID string) ([]*role.Role, error) {
	if userID == "" {
		return []*role.Role{}, nil
	}
	roleIDs, err := e.store.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("list roles for user", err)
	}
	roles := make([]*role.Role, 0, len(roleIDs))
	for _, rid := range roleIDs {
		r, err := e.store.GetRole(ctx, rid)
		if err != nil {
			// A dangling assignment edge must not poison the whole set.
			if errors.Is(err, role.ErrNotFound) {
				continue
			}
			return nil, storeFailure("get role", err)
		}
		roles = append(roles, r)
	}
	return roles, nil
}

// IsSuperAdmin reports whether the user holds the super-admin role.
// An unresolvable identity fails closed to false.
func (e *Engine) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return e.hasRoleNamed(ctx, userID, e.config.SuperAdminRole)
}

// HasAdminAccess reports whether the user holds the super-admin or
// admin role. An unresolvable identity fails closed to false.
func (e *Engine) HasAdminAccess(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	roles, err := e.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == e.config.SuperAdminRole || r.Name == e.config.AdminRole {
			return true, nil
		}
	}
	return false, nil
}

// HasCapability reports whether the user may perform action on resource.
// Super-admins pass every check; everyone else needs an exact
// (resource, action) match in their effective permission set. An
// unresolvable identity fails closed to false. This is the hot path.
func (e *Engine) HasCapability(ctx context.Context, userID, resource, action string) (bool, error) {
	if userID == "" || resource == "" || action == "" {
		return false, nil
	}

	if e.cache != nil {
		if allowed, ok := e.cache.Get(ctx, userID, resource, action); ok {
			return allowed, nil
		}
	}

	super, err := e.IsSuperAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	allowed := super
	if !allowed {
		perms, err := e.EffectivePermissions(ctx, userID)
		if err != nil {
			return false, err
		}
		for _, p := range perms {
			if p.Resource == resource && p.Action == action {
				allowed = true
				break
			}
		}
	}

	if e.cache != nil {
		e.cache.Set(ctx, userID, resource, action, allowed, e.config.CacheTTL)
	}
	return allowed, nil
}

// EffectivePermissions returns the deduplicated union of permissions
// granted via all of the user's assigned roles.
func (e *Engine) EffectivePermissions(ctx context.Context, userID string) ([]*permission.Permission, error) {
	if userID == "" {
		return []*permission.Permission{}, nil
	}
	perms, err := e.store.ListPermissionsByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("list permissions for user", err)
	}
	return perms, nil
}

// Summary aggregates the user's role standing for display. Roles are
// ordered by the configured rank table (super-admin first, then admin,
// then the rest in store order); the primary role is the first entry.
func (e *Engine) Summary(ctx context.Context, userID string) (*RoleSummary, error) {
	roles, err := e.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(roles, func(i, j int) bool {
		return e.config.rank(roles[i].Name) < e.config.rank(roles[j].Name)
	})

	s := &RoleSummary{Roles: roles}
	if len(roles) > 0 {
		s.Primary = roles[0]
	}
	for _, r := range roles {
		if r.Name == e.config.SuperAdminRole {
			s.IsSuperAdmin = true
			s.IsAdmin = true
		}
		if r.Name == e.config.AdminRole {
			s.IsAdmin = true
		}
	}
	return s, nil
}

func (e *Engine) hasRoleNamed(ctx context.Context, userID, name string) (bool, error) {
	roles, err := e.RolesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// storeFailure wraps a persistence error into the retryable taxonomy.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
