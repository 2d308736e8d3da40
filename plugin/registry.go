package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
)

// Named entry types pair a hook with the plugin name for logging.

type roleCreatedEntry struct {
	name string
	hook RoleCreated
}
type roleAssignedEntry struct {
	name string
	hook RoleAssigned
}
type roleRevokedEntry struct {
	name string
	hook RoleRevoked
}
type permissionCreatedEntry struct {
	name string
	hook PermissionCreated
}
type permissionAttachedEntry struct {
	name string
	hook PermissionAttached
}
type permissionDetachedEntry struct {
	name string
	hook PermissionDetached
}
type superAdminPromotedEntry struct {
	name string
	hook SuperAdminPromoted
}
type auditRecordedEntry struct {
	name string
	hook AuditRecorded
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	roleCreated        []roleCreatedEntry
	roleAssigned       []roleAssignedEntry
	roleRevoked        []roleRevokedEntry
	permissionCreated  []permissionCreatedEntry
	permissionAttached []permissionAttachedEntry
	permissionDetached []permissionDetachedEntry
	superAdminPromoted []superAdminPromotedEntry
	auditRecorded      []auditRecordedEntry
	shutdown           []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, roleCreatedEntry{name, h})
	}
	if h, ok := p.(RoleAssigned); ok {
		r.roleAssigned = append(r.roleAssigned, roleAssignedEntry{name, h})
	}
	if h, ok := p.(RoleRevoked); ok {
		r.roleRevoked = append(r.roleRevoked, roleRevokedEntry{name, h})
	}
	if h, ok := p.(PermissionCreated); ok {
		r.permissionCreated = append(r.permissionCreated, permissionCreatedEntry{name, h})
	}
	if h, ok := p.(PermissionAttached); ok {
		r.permissionAttached = append(r.permissionAttached, permissionAttachedEntry{name, h})
	}
	if h, ok := p.(PermissionDetached); ok {
		r.permissionDetached = append(r.permissionDetached, permissionDetachedEntry{name, h})
	}
	if h, ok := p.(SuperAdminPromoted); ok {
		r.superAdminPromoted = append(r.superAdminPromoted, superAdminPromotedEntry{name, h})
	}
	if h, ok := p.(AuditRecorded); ok {
		r.auditRecorded = append(r.auditRecorded, auditRecordedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Role event emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, rl); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleAssigned notifies all plugins that implement RoleAssigned.
func (r *Registry) EmitRoleAssigned(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.roleAssigned {
		if err := e.hook.OnRoleAssigned(ctx, a); err != nil {
			r.logHookError("OnRoleAssigned", e.name, err)
		}
	}
}

// EmitRoleRevoked notifies all plugins that implement RoleRevoked.
func (r *Registry) EmitRoleRevoked(ctx context.Context, userID string, roleID id.RoleID) {
	for _, e := range r.roleRevoked {
		if err := e.hook.OnRoleRevoked(ctx, userID, roleID); err != nil {
			r.logHookError("OnRoleRevoked", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Permission event emitters
// ──────────────────────────────────────────────────

// EmitPermissionCreated notifies all plugins that implement PermissionCreated.
func (r *Registry) EmitPermissionCreated(ctx context.Context, p *permission.Permission) {
	for _, e := range r.permissionCreated {
		if err := e.hook.OnPermissionCreated(ctx, p); err != nil {
			r.logHookError("OnPermissionCreated", e.name, err)
		}
	}
}

// EmitPermissionAttached notifies all plugins that implement PermissionAttached.
func (r *Registry) EmitPermissionAttached(ctx context.Context, roleID id.RoleID, permID id.PermissionID) {
	for _, e := range r.permissionAttached {
		if err := e.hook.OnPermissionAttached(ctx, roleID, permID); err != nil {
			r.logHookError("OnPermissionAttached", e.name, err)
		}
	}
}

// EmitPermissionDetached notifies all plugins that implement PermissionDetached.
func (r *Registry) EmitPermissionDetached(ctx context.Context, roleID id.RoleID, permID id.PermissionID) {
	for _, e := range r.permissionDetached {
		if err := e.hook.OnPermissionDetached(ctx, roleID, permID); err != nil {
			r.logHookError("OnPermissionDetached", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Escalation and audit emitters
// ──────────────────────────────────────────────────

// EmitSuperAdminPromoted notifies all plugins that implement SuperAdminPromoted.
func (r *Registry) EmitSuperAdminPromoted(ctx context.Context, callerID, targetID string) {
	for _, e := range r.superAdminPromoted {
		if err := e.hook.OnSuperAdminPromoted(ctx, callerID, targetID); err != nil {
			r.logHookError("OnSuperAdminPromoted", e.name, err)
		}
	}
}

// EmitAuditRecorded notifies all plugins that implement AuditRecorded.
func (r *Registry) EmitAuditRecorded(ctx context.Context, entry *auditlog.Entry) {
	for _, e := range r.auditRecorded {
		if err := e.hook.OnAuditRecorded(ctx, entry); err != nil {
			r.logHookError("OnAuditRecorded", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
