package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique constraint (username or email) was hit.
	ErrDuplicate = errors.New("already exists")
)

const userColumns = `id, username, email, password_hash, role, created_at`

// Users is the account repository.
type Users struct {
	DB DB
}

func (s *Users) Create(ctx context.Context, u models.User) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", u.Username, ErrDuplicate)
	}
	return err
}

func (s *Users) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByIdentifier resolves a login identifier, matching username exactly or
// email case-insensitively.
func (s *Users) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username = $1 OR email = lower($1)
	`, strings.TrimSpace(identifier))
	return scanUser(row)
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole sets the role and returns the updated record.
func (s *Users) UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE users SET role = $2 WHERE id = $1
		RETURNING `+userColumns+`
	`, id, role)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
