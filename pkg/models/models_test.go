package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"member", RoleMember, true},
		{" administrator ", RoleAdmin, true},
		{"admin", "", false},
		{"Member", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("Urgent"); !ok || c != CategoryUrgent {
		t.Fatalf("expected Urgent, got %q ok=%v", c, ok)
	}
	if c, ok := ParseCategory("Non-Urgent"); !ok || c != CategoryNonUrgent {
		t.Fatalf("expected Non-Urgent, got %q ok=%v", c, ok)
	}
	if _, ok := ParseCategory("Maybe"); ok {
		t.Fatal("expected Maybe to be rejected")
	}
}

func TestUserJSONNeverExposesPasswordHash(t *testing.T) {
	u := User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         RoleMember,
		CreatedAt:    time.Now().UTC(),
	}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Fatalf("password hash leaked into JSON: %s", b)
	}
}

func TestTodoJSONOmitsEmptyOptionalFields(t *testing.T) {
	todo := Todo{ID: "t1", Title: "x", Category: CategoryUrgent}
	b, err := json.Marshal(todo)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "description") || strings.Contains(s, "dueDate") {
		t.Fatalf("unexpected optional fields in %s", s)
	}
}
