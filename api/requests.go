package api

// ──────────────────────────────────────────────────
// Capability requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for a capability check.
type CheckRequest struct {
	UserID   string `json:"user_id" description:"User identifier"`
	Resource string `json:"resource" description:"Resource name"`
	Action   string `json:"action" description:"Action name"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name        string `json:"name" description:"Role name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// GetRoleRequest is the path parameter for getting a role.
type GetRoleRequest struct {
	RoleName string `path:"roleName" description:"Role name"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// AttachPermissionRequest is the body for attaching a permission to a role.
type AttachPermissionRequest struct {
	PermissionName string `json:"permission_name" description:"Permission name to attach"`
}

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// CreatePermissionRequest is the body for creating a permission.
type CreatePermissionRequest struct {
	Name        string `json:"name" description:"Permission name (e.g. rfps:read)"`
	Resource    string `json:"resource" description:"Resource name"`
	Action      string `json:"action" description:"Action name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// GetPermissionRequest is the path parameter for getting a permission.
type GetPermissionRequest struct {
	PermissionName string `path:"permissionName" description:"Permission name"`
}

// ListPermissionsRequest holds query parameters.
type ListPermissionsRequest struct {
	Resource string `query:"resource" description:"Filter by resource"`
	Action   string `query:"action" description:"Filter by action"`
	Search   string `query:"search" description:"Search by name"`
	Limit    int    `query:"limit" description:"Maximum results"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// User requests
// ──────────────────────────────────────────────────

// AssignRoleRequest is the body for assigning a role to a user.
type AssignRoleRequest struct {
	RoleName string `json:"role_name" description:"Role name to assign"`
}

// GetUserRequest is the path parameter for user routes.
type GetUserRequest struct {
	UserID string `path:"userId" description:"User identifier"`
}

// ──────────────────────────────────────────────────
// Audit log requests
// ──────────────────────────────────────────────────

// ListAuditLogsRequest holds query parameters for querying the audit log.
type ListAuditLogsRequest struct {
	EventType string `query:"event_type" description:"Filter by event type prefix"`
	UserID    string `query:"user_id" description:"Filter by acting user"`
	After     string `query:"after" description:"After timestamp (RFC3339)"`
	Before    string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit     int    `query:"limit" description:"Maximum results"`
	Offset    int    `query:"offset" description:"Results to skip"`
}
