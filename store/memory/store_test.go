package memory

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
	"github.com/xraph/gatehouse/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestRoleCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &role.Role{
		ID:   id.NewRoleID(),
		Name: "admin",
	}

	// Create
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "admin" {
		t.Fatalf("expected admin, got %s", got.Name)
	}

	// GetByName
	got, err = s.GetRoleByName(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID {
		t.Fatal("name lookup mismatch")
	}

	// Update
	r.Description = "full administrative access"
	err = s.UpdateRole(ctx, r)
	if err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRole(ctx, r.ID)
	if got.Description != "full administrative access" {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListRoles(ctx, nil)
	if len(list) != 1 {
		t.Fatalf("expected 1 role, got %d", len(list))
	}

	// Count
	count, _ := s.CountRoles(ctx, nil)
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestPermissionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{
		ID:       id.NewPermissionID(),
		Name:     "rfps:read",
		Resource: "rfps",
		Action:   "read",
	}

	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPermission(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "rfps:read" {
		t.Fatal("mismatch")
	}

	got, err = s.GetPermissionByName(ctx, "rfps:read")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("name lookup mismatch")
	}

	// ListPermissions with resource filter
	list, _ := s.ListPermissions(ctx, &permission.ListFilter{Resource: "rfps"})
	if len(list) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(list))
	}
	list, _ = s.ListPermissions(ctx, &permission.ListFilter{Resource: "users"})
	if len(list) != 0 {
		t.Fatalf("expected 0 permissions, got %d", len(list))
	}
}

func TestRolePermissionAttach(t *testing.T) {
	ctx := context.Background()
	s := New()

	roleID := id.NewRoleID()
	perm1 := id.NewPermissionID()
	perm2 := id.NewPermissionID()

	// Create role and permissions.
	_ = s.CreateRole(ctx, &role.Role{ID: roleID, Name: "manager"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: perm1, Name: "rfps:read", Resource: "rfps", Action: "read"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: perm2, Name: "rfps:update", Resource: "rfps", Action: "update"})

	// Attach
	_ = s.AttachPermission(ctx, roleID, perm1)
	_ = s.AttachPermission(ctx, roleID, perm2)

	perms, _ := s.ListRolePermissions(ctx, roleID)
	if len(perms) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(perms))
	}

	// Re-attach is a no-op.
	_ = s.AttachPermission(ctx, roleID, perm1)
	perms, _ = s.ListRolePermissions(ctx, roleID)
	if len(perms) != 2 {
		t.Fatalf("expected 2 permissions after re-attach, got %d", len(perms))
	}

	// ListPermissionsByRole
	permObjs, _ := s.ListPermissionsByRole(ctx, roleID)
	if len(permObjs) != 2 {
		t.Fatalf("expected 2 permission objects, got %d", len(permObjs))
	}

	// Detach
	_ = s.DetachPermission(ctx, roleID, perm1)
	perms, _ = s.ListRolePermissions(ctx, roleID)
	if len(perms) != 1 {
		t.Fatalf("expected 1 permission after detach, got %d", len(perms))
	}

	// Detach of an absent link is a no-op.
	if err := s.DetachPermission(ctx, roleID, perm1); err != nil {
		t.Fatal(err)
	}
}

func TestAssignmentIdempotence(t *testing.T) {
	ctx := context.Background()
	s := New()

	roleID := id.NewRoleID()
	_ = s.CreateRole(ctx, &role.Role{ID: roleID, Name: "admin"})

	a := &assignment.Assignment{
		ID:     id.NewAssignmentID(),
		RoleID: roleID,
		UserID: "u1",
	}

	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}

	// Assigning the same (role, user) pair again is a no-op.
	dup := &assignment.Assignment{ID: id.NewAssignmentID(), RoleID: roleID, UserID: "u1"}
	if err := s.CreateAssignment(ctx, dup); err != nil {
		t.Fatal(err)
	}

	roles, _ := s.ListRolesForUser(ctx, "u1")
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}

	users, _ := s.ListUsersForRole(ctx, roleID)
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	if err := s.DeleteAssignmentByUserRole(ctx, "u1", roleID); err != nil {
		t.Fatal(err)
	}
	roles, _ = s.ListRolesForUser(ctx, "u1")
	if len(roles) != 0 {
		t.Fatalf("expected 0 roles after revoke, got %d", len(roles))
	}

	// Revoking an absent edge is a no-op.
	if err := s.DeleteAssignmentByUserRole(ctx, "u1", roleID); err != nil {
		t.Fatal(err)
	}
}

func TestListPermissionsByUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	roleA := id.NewRoleID()
	roleB := id.NewRoleID()
	permRead := id.NewPermissionID()
	permWrite := id.NewPermissionID()

	_ = s.CreateRole(ctx, &role.Role{ID: roleA, Name: "reader"})
	_ = s.CreateRole(ctx, &role.Role{ID: roleB, Name: "writer"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: permRead, Name: "rfps:read", Resource: "rfps", Action: "read"})
	_ = s.CreatePermission(ctx, &permission.Permission{ID: permWrite, Name: "rfps:update", Resource: "rfps", Action: "update"})

	// Both roles carry read; only writer carries update.
	_ = s.AttachPermission(ctx, roleA, permRead)
	_ = s.AttachPermission(ctx, roleB, permRead)
	_ = s.AttachPermission(ctx, roleB, permWrite)

	_ = s.CreateAssignment(ctx, &assignment.Assignment{ID: id.NewAssignmentID(), RoleID: roleA, UserID: "u1"})
	_ = s.CreateAssignment(ctx, &assignment.Assignment{ID: id.NewAssignmentID(), RoleID: roleB, UserID: "u1"})

	// Union is deduplicated.
	perms, err := s.ListPermissionsByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 2 {
		t.Fatalf("expected 2 effective permissions, got %d", len(perms))
	}

	// Unknown user gets an empty set, not an error.
	perms, err = s.ListPermissionsByUser(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 0 {
		t.Fatalf("expected 0 permissions, got %d", len(perms))
	}
}

func TestAuditLogQuery(t *testing.T) {
	ctx := context.Background()
	s := New()

	u1 := "u1"
	now := time.Now()

	entries := []*auditlog.Entry{
		{ID: id.NewAuditLogID(), EventType: "login", UserID: &u1, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: id.NewAuditLogID(), EventType: "role_assign", UserID: &u1, CreatedAt: now.Add(-time.Hour)},
		{ID: id.NewAuditLogID(), EventType: "role_create", CreatedAt: now},
	}
	for _, e := range entries {
		if err := s.CreateAuditLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	// Newest first.
	logs, err := s.ListAuditLogs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}
	if logs[0].EventType != "role_create" {
		t.Fatalf("expected newest first, got %s", logs[0].EventType)
	}

	// By user.
	logs, _ = s.ListAuditLogs(ctx, &auditlog.QueryFilter{UserID: "u1"})
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries for u1, got %d", len(logs))
	}

	// By event type prefix.
	logs, _ = s.ListAuditLogs(ctx, &auditlog.QueryFilter{EventTypePrefix: "role_"})
	if len(logs) != 2 {
		t.Fatalf("expected 2 role_ entries, got %d", len(logs))
	}

	// Time window.
	after := now.Add(-90 * time.Minute)
	logs, _ = s.ListAuditLogs(ctx, &auditlog.QueryFilter{After: &after})
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries after cutoff, got %d", len(logs))
	}

	count, _ := s.CountAuditLogs(ctx, nil)
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestCountIgnoresPagination(t *testing.T) {
	ctx := context.Background()
	s := New()

	now := time.Now()
	for i := 0; i < 5; i++ {
		e := &auditlog.Entry{
			ID:        id.NewAuditLogID(),
			EventType: "role_assign",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateAuditLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	// The list honors the page size.
	logs, err := s.ListAuditLogs(ctx, &auditlog.QueryFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected a page of 2, got %d", len(logs))
	}

	// The count covers the whole filtered set regardless of limit/offset.
	count, err := s.CountAuditLogs(ctx, &auditlog.QueryFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}
	count, _ = s.CountAuditLogs(ctx, &auditlog.QueryFilter{Limit: 2, Offset: 4})
	if count != 5 {
		t.Fatalf("expected count 5 with offset, got %d", count)
	}

	// Same contract on the other entities.
	for i := 0; i < 3; i++ {
		_ = s.CreateRole(ctx, &role.Role{ID: id.NewRoleID(), Name: "r" + string(rune('a'+i))})
	}
	count, _ = s.CountRoles(ctx, &role.ListFilter{Limit: 1})
	if count != 3 {
		t.Fatalf("expected role count 3, got %d", count)
	}
	for i := 0; i < 3; i++ {
		_ = s.CreatePermission(ctx, &permission.Permission{
			ID:       id.NewPermissionID(),
			Name:     "rfps:" + string(rune('a'+i)),
			Resource: "rfps",
			Action:   string(rune('a' + i)),
		})
	}
	count, _ = s.CountPermissions(ctx, &permission.ListFilter{Resource: "rfps", Limit: 1})
	if count != 3 {
		t.Fatalf("expected permission count 3, got %d", count)
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
