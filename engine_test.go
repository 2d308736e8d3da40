package gatehouse

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/gatehouse/assignment"
	"github.com/xraph/gatehouse/id"
	"github.com/xraph/gatehouse/permission"
	"github.com/xraph/gatehouse/role"
	"github.com/xraph/gatehouse/store/memory"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

// grantRole creates the named role if missing and assigns it to userID
// directly through the store, bypassing the workflow gates.
func grantRole(t *testing.T, s *memory.Store, userID, roleName string) *role.Role {
	t.Helper()
	ctx := context.Background()
	r, err := s.GetRoleByName(ctx, roleName)
	if err != nil {
		r = &role.Role{ID: id.NewRoleID(), Name: roleName}
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.CreateAssignment(ctx, &assignment.Assignment{
		ID:     id.NewAssignmentID(),
		RoleID: r.ID,
		UserID: userID,
	})
	return r
}

// grantCapability attaches a fresh (resource, action) permission to the
// named role, creating the role if missing.
func grantCapability(t *testing.T, s *memory.Store, roleName, resource, action string) *permission.Permission {
	t.Helper()
	ctx := context.Background()
	r, err := s.GetRoleByName(ctx, roleName)
	if err != nil {
		r = &role.Role{ID: id.NewRoleID(), Name: roleName}
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	p := &permission.Permission{
		ID:       id.NewPermissionID(),
		Name:     resource + ":" + action,
		Resource: resource,
		Action:   action,
	}
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachPermission(ctx, r.ID, p.ID); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestHasCapability_FailsClosed(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	allowed, err := eng.HasCapability(ctx, "", "rfps", "read")
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("expected empty user ID to be denied")
	}

	allowed, err = eng.HasCapability(ctx, "ghost", "rfps", "read")
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("expected unknown user to be denied")
	}
}

func TestHasCapability_ExactMatch(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	grantRole(t, s, "u1", "editor")
	grantCapability(t, s, "editor", "rfps", "read")

	allowed, err := eng.HasCapability(ctx, "u1", "rfps", "read")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected rfps:read to be allowed")
	}

	// Same resource, different action.
	allowed, _ = eng.HasCapability(ctx, "u1", "rfps", "delete")
	if allowed {
		t.Fatal("expected rfps:delete to be denied")
	}

	// Same action, different resource.
	allowed, _ = eng.HasCapability(ctx, "u1", "users", "read")
	if allowed {
		t.Fatal("expected users:read to be denied")
	}
}

func TestHasCapability_UnionAcrossRoles(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	grantRole(t, s, "u1", "reader")
	grantRole(t, s, "u1", "writer")
	grantCapability(t, s, "reader", "rfps", "read")
	grantCapability(t, s, "writer", "rfps", "update")

	for _, action := range []string{"read", "update"} {
		allowed, err := eng.HasCapability(ctx, "u1", "rfps", action)
		if err != nil {
			t.Fatal(err)
		}
		if !allowed {
			t.Fatalf("expected rfps:%s to be allowed via role union", action)
		}
	}
}

func TestHasCapability_SuperAdminBypass(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	// Super admin holds no explicit permissions at all.
	grantRole(t, s, "root", "developer")

	allowed, err := eng.HasCapability(ctx, "root", "anything", "whatsoever")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected super admin to bypass capability checks")
	}
}

func TestHasAdminAccess(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	grantRole(t, s, "dev", "developer")
	grantRole(t, s, "adm", "admin")
	grantRole(t, s, "mgr", "manager")

	cases := []struct {
		userID string
		want   bool
	}{
		{"dev", true},
		{"adm", true},
		{"mgr", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := eng.HasAdminAccess(ctx, tc.userID)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Fatalf("HasAdminAccess(%q) = %v, want %v", tc.userID, got, tc.want)
		}
	}
}

func TestEffectivePermissions_Deduplicated(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	r1 := grantRole(t, s, "u1", "editor")
	r2 := grantRole(t, s, "u1", "reviewer")
	p := grantCapability(t, s, "editor", "rfps", "read")
	// Attach the same permission to the second role too.
	if err := s.AttachPermission(ctx, r2.ID, p.ID); err != nil {
		t.Fatal(err)
	}
	_ = r1

	perms, err := eng.EffectivePermissions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 1 {
		t.Fatalf("expected 1 deduplicated permission, got %d", len(perms))
	}
}

func TestSummary_Precedence(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	// Assign in reverse precedence order to prove sorting.
	grantRole(t, s, "u1", "user")
	grantRole(t, s, "u1", "manager")
	grantRole(t, s, "u1", "admin")

	sum, err := eng.Summary(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Primary == nil || sum.Primary.Name != "admin" {
		t.Fatalf("expected primary role admin, got %+v", sum.Primary)
	}
	if !sum.IsAdmin {
		t.Fatal("expected IsAdmin")
	}
	if sum.IsSuperAdmin {
		t.Fatal("did not expect IsSuperAdmin")
	}
	want := []string{"admin", "manager", "user"}
	if len(sum.Roles) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(sum.Roles))
	}
	for i, name := range want {
		if sum.Roles[i].Name != name {
			t.Fatalf("role %d: expected %s, got %s", i, name, sum.Roles[i].Name)
		}
	}
}

func TestSummary_EmptyUser(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	sum, err := eng.Summary(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Roles) != 0 || sum.Primary != nil || sum.IsAdmin || sum.IsSuperAdmin {
		t.Fatalf("expected empty summary, got %+v", sum)
	}
}

// recordingCache is a test double that tracks cache traffic.
type recordingCache struct {
	entries map[string]bool
	sets    int
	hits    int
	lastTTL time.Duration
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string]bool{}}
}

func (c *recordingCache) Get(_ context.Context, userID, resource, action string) (bool, bool) {
	allowed, ok := c.entries[userID+":"+resource+":"+action]
	if ok {
		c.hits++
	}
	return allowed, ok
}

func (c *recordingCache) Set(_ context.Context, userID, resource, action string, allowed bool, ttl time.Duration) {
	c.entries[userID+":"+resource+":"+action] = allowed
	c.sets++
	c.lastTTL = ttl
}

func (c *recordingCache) InvalidateUser(_ context.Context, userID string) {
	for k := range c.entries {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+":" {
			delete(c.entries, k)
		}
	}
}

func (c *recordingCache) InvalidateAll(_ context.Context) {
	c.entries = map[string]bool{}
}

func TestHasCapability_UsesCache(t *testing.T) {
	ctx := context.Background()
	cache := newRecordingCache()
	eng, s := newTestEngine(t, WithCache(cache))

	grantRole(t, s, "u1", "editor")
	grantCapability(t, s, "editor", "rfps", "read")

	if _, err := eng.HasCapability(ctx, "u1", "rfps", "read"); err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache set, got %d", cache.sets)
	}

	if _, err := eng.HasCapability(ctx, "u1", "rfps", "read"); err != nil {
		t.Fatal(err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", cache.hits)
	}

	// A cached answer wins even when the store disagrees.
	cache.entries["u1:rfps:delete"] = true
	allowed, err := eng.HasCapability(ctx, "u1", "rfps", "delete")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected cached answer to be returned")
	}
}

func TestHasCapability_ConfiguredCacheTTL(t *testing.T) {
	ctx := context.Background()
	cache := newRecordingCache()
	eng, s := newTestEngine(t, WithCache(cache), WithConfig(Config{CacheTTL: time.Minute}))

	grantRole(t, s, "u1", "editor")
	grantCapability(t, s, "editor", "rfps", "read")

	if _, err := eng.HasCapability(ctx, "u1", "rfps", "read"); err != nil {
		t.Fatal(err)
	}
	if cache.lastTTL != time.Minute {
		t.Fatalf("expected configured TTL to reach the cache, got %v", cache.lastTTL)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(storeFailure("probe", context.DeadlineExceeded)) {
		t.Fatal("expected store failures to be retryable")
	}
	if IsRetryable(ErrNotAuthorized) || IsRetryable(ErrInvalidInput) || IsRetryable(nil) {
		t.Fatal("expected non-store errors to be terminal")
	}
}
