package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. There are exactly two; anything
// else is rejected at the boundary.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "administrator"
)

// ParseRole maps a wire value onto the closed enum.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleMember:
		return RoleMember, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Category is the closed set of todo categories.
type Category string

const (
	CategoryUrgent    Category = "Urgent"
	CategoryNonUrgent Category = "Non-Urgent"
)

func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryUrgent:
		return CategoryUrgent, true
	case CategoryNonUrgent:
		return CategoryNonUrgent, true
	}
	return "", false
}

// User is an account record. PasswordHash never crosses the JSON boundary.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OwnerSummary is the slice of a user embedded in todo responses.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Summary() OwnerSummary {
	return OwnerSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Todo is a task record. OwnerID is immutable after creation.
type Todo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Category    Category     `json:"category"`
	Completed   bool         `json:"completed"`
	OwnerID     string       `json:"-"`
	Owner       OwnerSummary `json:"user"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RegisterRequest is the POST /api/auth/register payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts either username or email as the identifier.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// TodoCreateRequest is the POST /api/todos payload.
type TodoCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Category    string `json:"category"`
}

// TodoUpdateRequest is the PUT /api/todos/{id} payload. Pointer fields
// distinguish "absent" from "set to zero"; absent fields are left untouched.
type TodoUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Category    *string `json:"category"`
	Completed   *bool   `json:"completed"`
}

// RoleUpdateRequest is the PATCH /api/admin/users/{id}/role payload.
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalTodos     int64 `json:"totalTodos"`
	CompletedTodos int64 `json:"completedTodos"`
	PendingTodos   int64 `json:"pendingTodos"`
	UrgentTodos    int64 `json:"urgentTodos"`
}
