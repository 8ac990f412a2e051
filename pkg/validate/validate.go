// Package validate applies the field-level input rules ahead of any handler
// logic. Failures name the offending field so clients can surface them.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// Register normalizes and validates a registration payload in place.
func Register(req *models.RegisterRequest) []httpx.FieldError {
	var errs []httpx.FieldError
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		errs = append(errs, httpx.FieldError{Field: "username", Message: "Username must be at least 3 characters long"})
	} else if !usernameRe.MatchString(req.Username) {
		errs = append(errs, httpx.FieldError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		errs = append(errs, httpx.FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, httpx.FieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	} else if !hasMixedCharacters(req.Password) {
		errs = append(errs, httpx.FieldError{Field: "password", Message: "Password must contain at least one uppercase letter, one lowercase letter, and one number"})
	}
	return errs
}

func hasMixedCharacters(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Login checks that both credential fields are present.
func Login(req *models.LoginRequest) []httpx.FieldError {
	var errs []httpx.FieldError
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		errs = append(errs, httpx.FieldError{Field: "identifier", Message: "Email or username is required"})
	}
	if req.Password == "" {
		errs = append(errs, httpx.FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// TodoInput is a validated create payload.
type TodoInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Category    models.Category
}

// TodoCreate validates a create payload. Title and category are required.
func TodoCreate(req models.TodoCreateRequest) (TodoInput, []httpx.FieldError) {
	var in TodoInput
	var errs []httpx.FieldError
	in.Title = strings.TrimSpace(req.Title)
	if in.Title == "" {
		errs = append(errs, httpx.FieldError{Field: "title", Message: "Title is required"})
	} else if len(in.Title) > maxTitleLen {
		errs = append(errs, httpx.FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
	}
	in.Description = strings.TrimSpace(req.Description)
	if len(in.Description) > maxDescriptionLen {
		errs = append(errs, httpx.FieldError{Field: "description", Message: "Description cannot exceed 500 characters"})
	}
	if raw := strings.TrimSpace(req.DueDate); raw != "" {
		due, err := parseDate(raw)
		if err != nil {
			errs = append(errs, httpx.FieldError{Field: "dueDate", Message: "Invalid date format"})
		} else {
			in.DueDate = &due
		}
	}
	category, ok := models.ParseCategory(req.Category)
	if !ok {
		errs = append(errs, httpx.FieldError{Field: "category", Message: "Category must be either Urgent or Non-Urgent"})
	}
	in.Category = category
	return in, errs
}

// TodoPatch is a validated update payload; nil fields were absent and must
// not be written. DueDateSet distinguishes "clear" from "absent".
type TodoPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	DueDateSet  bool
	Category    *models.Category
	Completed   *bool
}

// Empty reports whether the patch carries no recognized field.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.DueDateSet && p.Category == nil && p.Completed == nil
}

// TodoUpdate validates a partial update. All fields optional; present fields
// obey the create rules.
func TodoUpdate(req models.TodoUpdateRequest) (TodoPatch, []httpx.FieldError) {
	var patch TodoPatch
	var errs []httpx.FieldError
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			errs = append(errs, httpx.FieldError{Field: "title", Message: "Title cannot be empty"})
		} else if len(title) > maxTitleLen {
			errs = append(errs, httpx.FieldError{Field: "title", Message: "Title cannot exceed 100 characters"})
		} else {
			patch.Title = &title
		}
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if len(desc) > maxDescriptionLen {
			errs = append(errs, httpx.FieldError{Field: "description", Message: "Description cannot exceed 500 characters"})
		} else {
			patch.Description = &desc
		}
	}
	if req.DueDate != nil {
		patch.DueDateSet = true
		if raw := strings.TrimSpace(*req.DueDate); raw != "" {
			due, err := parseDate(raw)
			if err != nil {
				errs = append(errs, httpx.FieldError{Field: "dueDate", Message: "Invalid date format"})
				patch.DueDateSet = false
			} else {
				patch.DueDate = &due
			}
		}
	}
	if req.Category != nil {
		category, ok := models.ParseCategory(*req.Category)
		if !ok {
			errs = append(errs, httpx.FieldError{Field: "category", Message: "Category must be either Urgent or Non-Urgent"})
		} else {
			patch.Category = &category
		}
	}
	patch.Completed = req.Completed
	return patch, errs
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
