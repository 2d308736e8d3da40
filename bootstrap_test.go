package gatehouse

import (
	"context"
	"testing"

	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
)

func TestSeed_Catalog(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	if err := eng.Seed(ctx, nil); err != nil {
		t.Fatal(err)
	}

	roles, err := s.ListRoles(ctx, &role.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 4 {
		t.Fatalf("expected 4 built-in roles, got %d", len(roles))
	}
	for _, name := range []string{"developer", "admin", "manager", "user"} {
		r, err := s.GetRoleByName(ctx, name)
		if err != nil {
			t.Fatalf("missing built-in role %s", name)
		}
		if !r.IsSystem {
			t.Fatalf("expected %s to be a system role", name)
		}
	}

	perms, err := s.ListPermissions(ctx, &permission.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 20 {
		t.Fatalf("expected 20 catalog permissions, got %d", len(perms))
	}

	grants := func(name string) int {
		r, err := s.GetRoleByName(ctx, name)
		if err != nil {
			t.Fatal(err)
		}
		ps, err := s.ListPermissionsByRole(ctx, r.ID)
		if err != nil {
			t.Fatal(err)
		}
		return len(ps)
	}
	if n := grants("developer"); n != 0 {
		t.Fatalf("expected developer to carry no explicit grants, got %d", n)
	}
	if n := grants("admin"); n != 20 {
		t.Fatalf("expected admin to hold the full catalog, got %d", n)
	}
	if n := grants("manager"); n != 7 {
		t.Fatalf("expected 7 manager grants, got %d", n)
	}
	if n := grants("user"); n != 1 {
		t.Fatalf("expected 1 user grant, got %d", n)
	}

	entries, err := s.ListAuditLogs(ctx, &auditlog.QueryFilter{EventTypePrefix: auditlog.EventBootstrap})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 bootstrap audit entry, got %d", len(entries))
	}
	if entries[0].UserID != nil {
		t.Fatal("expected system-initiated bootstrap entry")
	}
}

func TestSeed_InitialSuperAdmin(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if err := eng.Seed(ctx, &SeedOptions{InitialSuperAdmin: "root"}); err != nil {
		t.Fatal(err)
	}

	super, err := eng.IsSuperAdmin(ctx, "root")
	if err != nil {
		t.Fatal(err)
	}
	if !super {
		t.Fatal("expected initial super admin grant")
	}

	allowed, err := eng.HasCapability(ctx, "root", "rfps", "delete")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected super admin bypass after seeding")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	if err := eng.Seed(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := eng.Seed(ctx, nil); err != nil {
		t.Fatal(err)
	}

	roles, err := s.CountRoles(ctx, &role.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if roles != 4 {
		t.Fatalf("expected 4 roles after re-seed, got %d", roles)
	}
	perms, err := s.CountPermissions(ctx, &permission.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if perms != 20 {
		t.Fatalf("expected 20 permissions after re-seed, got %d", perms)
	}

	// Only the first run creates anything, so only one bootstrap entry.
	entries, err := s.ListAuditLogs(ctx, &auditlog.QueryFilter{EventTypePrefix: auditlog.EventBootstrap})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 bootstrap audit entry, got %d", len(entries))
	}
}
