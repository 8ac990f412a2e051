package access

import (
	"errors"
	"testing"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

func TestCanAccessEndpoint(t *testing.T) {
	cases := []struct {
		role, required models.Role
		want           bool
	}{
		{models.RoleAdmin, models.RoleAdmin, true},
		{models.RoleAdmin, models.RoleMember, true},
		{models.RoleMember, models.RoleMember, true},
		{models.RoleMember, models.RoleAdmin, false},
	}
	for _, tc := range cases {
		if got := CanAccessEndpoint(tc.role, tc.required); got != tc.want {
			t.Fatalf("CanAccessEndpoint(%s, %s) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}

func TestCanAccessResource(t *testing.T) {
	if !CanAccessResource("u1", models.RoleMember, "u1") {
		t.Fatal("owner must access own resource")
	}
	if CanAccessResource("u1", models.RoleMember, "u2") {
		t.Fatal("member must not access another owner's resource")
	}
	if !CanAccessResource("u1", models.RoleAdmin, "u2") {
		t.Fatal("admin must access any resource")
	}
	if CanAccessResource("", models.RoleMember, "") {
		t.Fatal("empty caller id must never match")
	}
}

func TestChangeRole(t *testing.T) {
	if err := ChangeRole("admin-1", "u2", models.RoleAdmin); err != nil {
		t.Fatalf("expected promotion to succeed, got %v", err)
	}
	if err := ChangeRole("admin-1", "u2", models.RoleMember); err != nil {
		t.Fatalf("expected demotion to succeed, got %v", err)
	}
	if err := ChangeRole("admin-1", "u2", models.Role("root")); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestChangeRoleSelfModificationWinsOverRoleValidity(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleMember, models.Role("bogus"), ""} {
		if err := ChangeRole("admin-1", "admin-1", role); !errors.Is(err, ErrSelfRoleChange) {
			t.Fatalf("role %q: expected ErrSelfRoleChange, got %v", role, err)
		}
	}
}
