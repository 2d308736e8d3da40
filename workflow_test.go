package gatehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/gatehouse/auditlog"
	"github.com/xraph/gatehouse/store"
	"github.com/xraph/gatehouse/store/memory"
)

func auditEntries(t *testing.T, eng *Engine, eventPrefix string) []*auditlog.Entry {
	t.Helper()
	entries, err := eng.AuditLogs(context.Background(), &auditlog.QueryFilter{EventTypePrefix: eventPrefix})
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestCreateRole_Committed(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")

	r, err := eng.CreateRole(ctx, "adm", "auditor", "read-only reviewer")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "auditor" {
		t.Fatalf("expected role auditor, got %s", r.Name)
	}

	got, err := s.GetRoleByName(ctx, "auditor")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != r.ID {
		t.Fatal("created role not found in store")
	}

	entries := auditEntries(t, eng, string(OpCreateRole))
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.UserID == nil || *e.UserID != "adm" {
		t.Fatalf("expected audit actor adm, got %v", e.UserID)
	}
	if e.Details["outcome"] != string(OutcomeCommitted) {
		t.Fatalf("expected committed outcome, got %v", e.Details["outcome"])
	}
}

func TestCreateRole_DeniedUnauthenticated(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	_, err := eng.CreateRole(ctx, "", "auditor", "")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	entries := auditEntries(t, eng, string(OpCreateRole))
	if len(entries) != 1 {
		t.Fatalf("expected denied attempt to be audited, got %d entries", len(entries))
	}
	e := entries[0]
	if e.UserID != nil {
		t.Fatalf("expected nil actor for unauthenticated caller, got %v", *e.UserID)
	}
	if e.Details["outcome"] != string(OutcomeDenied) {
		t.Fatalf("expected denied outcome, got %v", e.Details["outcome"])
	}
}

func TestCreateRole_DeniedNonAdmin(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "u1", "user")

	_, err := eng.CreateRole(ctx, "u1", "auditor", "")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := s.GetRoleByName(ctx, "auditor"); err == nil {
		t.Fatal("denied operation must not mutate the store")
	}
}

func TestCreateRole_DuplicateAndInvalid(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")

	if _, err := eng.CreateRole(ctx, "adm", "auditor", ""); err != nil {
		t.Fatal(err)
	}
	_, err := eng.CreateRole(ctx, "adm", "auditor", "")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	_, err = eng.CreateRole(ctx, "adm", "   ", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// One audit entry per invocation: committed, failed, failed.
	entries := auditEntries(t, eng, string(OpCreateRole))
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(entries))
	}
	failed := 0
	for _, e := range entries {
		if e.Details["outcome"] == string(OutcomeFailed) {
			failed++
		}
	}
	if failed != 2 {
		t.Fatalf("expected 2 failed outcomes, got %d", failed)
	}
}

func TestCreatePermission_AllowsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")

	// Distinct names over the same (resource, action) pair are legal.
	if _, err := eng.CreatePermission(ctx, "adm", "rfps:read", "rfps", "read", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreatePermission(ctx, "adm", "rfps-view", "rfps", "read", ""); err != nil {
		t.Fatal(err)
	}

	_, err := eng.CreatePermission(ctx, "adm", "rfps:read", "rfps", "read", "")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for reused name, got %v", err)
	}
}

func TestAssignRole_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")
	grantCapability(t, s, "editor", "rfps", "update")

	if err := eng.AssignRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}
	if err := eng.AssignRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}

	roles, err := eng.RolesForUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatalf("expected 1 role after double assign, got %d", len(roles))
	}

	allowed, _ := eng.HasCapability(ctx, "u1", "rfps", "update")
	if !allowed {
		t.Fatal("expected capability after assignment")
	}
}

func TestRevokeRole_Idempotent(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")
	grantCapability(t, s, "editor", "rfps", "update")

	if err := eng.AssignRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}
	if err := eng.RevokeRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}
	// Revoking an absent grant is still a success.
	if err := eng.RevokeRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}

	allowed, _ := eng.HasCapability(ctx, "u1", "rfps", "update")
	if allowed {
		t.Fatal("expected capability to disappear after revocation")
	}
}

func TestRevokeRole_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache := newRecordingCache()
	eng, s := newTestEngine(t, WithCache(cache))
	grantRole(t, s, "adm", "admin")
	grantCapability(t, s, "editor", "rfps", "update")

	if err := eng.AssignRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}
	allowed, _ := eng.HasCapability(ctx, "u1", "rfps", "update")
	if !allowed {
		t.Fatal("expected capability before revocation")
	}

	if err := eng.RevokeRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}
	// The cached positive answer must not outlive the grant.
	allowed, _ = eng.HasCapability(ctx, "u1", "rfps", "update")
	if allowed {
		t.Fatal("expected stale cached grant to be invalidated")
	}
}

func TestAssignRole_UnknownRole(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")

	err := eng.AssignRole(ctx, "adm", "u1", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	entries := auditEntries(t, eng, string(OpAssignRole))
	if len(entries) != 1 || entries[0].Details["outcome"] != string(OutcomeFailed) {
		t.Fatalf("expected one failed audit entry, got %+v", entries)
	}
}

func TestAttachDetachPermission(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")

	if _, err := eng.CreateRole(ctx, "adm", "editor", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreatePermission(ctx, "adm", "rfps:update", "rfps", "update", ""); err != nil {
		t.Fatal(err)
	}
	if err := eng.AssignRole(ctx, "adm", "u1", "editor"); err != nil {
		t.Fatal(err)
	}

	if err := eng.AttachPermission(ctx, "adm", "editor", "rfps:update"); err != nil {
		t.Fatal(err)
	}
	allowed, _ := eng.HasCapability(ctx, "u1", "rfps", "update")
	if !allowed {
		t.Fatal("expected capability after attach")
	}

	if err := eng.DetachPermission(ctx, "adm", "editor", "rfps:update"); err != nil {
		t.Fatal(err)
	}
	allowed, _ = eng.HasCapability(ctx, "u1", "rfps", "update")
	if allowed {
		t.Fatal("expected capability to disappear after detach")
	}
	_ = s
}

func TestPromoteToSuperAdmin_Gate(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	grantRole(t, s, "adm", "admin")
	grantRole(t, s, "root", "developer")

	// Admin access is not enough to mint a super admin.
	err := eng.PromoteToSuperAdmin(ctx, "adm", "u1")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin caller, got %v", err)
	}
	entries := auditEntries(t, eng, string(OpPromoteSuperAdmin))
	if len(entries) != 1 || entries[0].Details["outcome"] != string(OutcomeDenied) {
		t.Fatalf("expected one denied audit entry, got %+v", entries)
	}

	if err := eng.PromoteToSuperAdmin(ctx, "root", "u1"); err != nil {
		t.Fatal(err)
	}
	super, err := eng.IsSuperAdmin(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !super {
		t.Fatal("expected promoted user to be super admin")
	}
}

// failingAuditStore drops every ledger write.
type failingAuditStore struct {
	store.Store
}

func (s *failingAuditStore) CreateAuditLog(context.Context, *auditlog.Entry) error {
	return errors.New("ledger unavailable")
}

func TestAuditWriteFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	eng, err := NewEngine(WithStore(&failingAuditStore{Store: mem}))
	if err != nil {
		t.Fatal(err)
	}
	grantRole(t, mem, "adm", "admin")

	r, err := eng.CreateRole(ctx, "adm", "auditor", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mem.GetRole(ctx, r.ID); err != nil {
		t.Fatal("mutation must survive a failed audit write")
	}
}

func TestRecordLogin(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	entry := eng.RecordLogin(ctx, "u1", map[string]any{"ip": "10.0.0.1"})
	if entry.UserID == nil || *entry.UserID != "u1" {
		t.Fatalf("expected login actor u1, got %v", entry.UserID)
	}

	entries := auditEntries(t, eng, auditlog.EventLogin)
	if len(entries) != 1 {
		t.Fatalf("expected 1 login entry, got %d", len(entries))
	}
}
