package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

const todoSelect = `
	SELECT t.id, t.title, t.description, t.due_date, t.category, t.completed,
	       t.owner_id, u.username, u.email, t.created_at, t.updated_at
	FROM todos t
	JOIN users u ON u.id = t.owner_id`

// Todos is the task repository. Listing callers supply the predicate built
// by pkg/scope; nothing here re-derives visibility.
type Todos struct {
	DB DB
}

func (s *Todos) Create(ctx context.Context, todo models.Todo) (models.Todo, error) {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO todos (id, title, description, due_date, category, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, todo.ID, todo.Title, todo.Description, todo.DueDate, todo.Category,
		todo.Completed, todo.OwnerID, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return models.Todo{}, err
	}
	return s.Get(ctx, todo.ID)
}

func (s *Todos) Get(ctx context.Context, id string) (models.Todo, error) {
	row := s.DB.QueryRow(ctx, todoSelect+` WHERE t.id = $1`, id)
	return scanTodo(row)
}

// List runs the scoped query. where/args come from scope.Build and may be
// empty for an unrestricted admin listing.
func (s *Todos) List(ctx context.Context, where string, args []any) ([]models.Todo, error) {
	rows, err := s.DB.Query(ctx, todoSelect+where+` ORDER BY t.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// Update writes every mutable field at once; the handler applies the patch
// to the loaded record first, so a rejected payload writes nothing.
func (s *Todos) Update(ctx context.Context, todo models.Todo) (models.Todo, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE todos
		SET title = $2, description = $3, due_date = $4, category = $5,
		    completed = $6, updated_at = $7
		WHERE id = $1
	`, todo.ID, todo.Title, todo.Description, todo.DueDate, todo.Category,
		todo.Completed, todo.UpdatedAt)
	if err != nil {
		return models.Todo{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Todo{}, ErrNotFound
	}
	return s.Get(ctx, todo.ID)
}

func (s *Todos) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the admin dashboard counters in a single round trip.
func (s *Todos) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	row := s.DB.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM users),
		       count(*),
		       count(*) FILTER (WHERE completed),
		       count(*) FILTER (WHERE category = 'Urgent')
		FROM todos
	`)
	if err := row.Scan(&st.TotalUsers, &st.TotalTodos, &st.CompletedTodos, &st.UrgentTodos); err != nil {
		return models.Stats{}, err
	}
	st.PendingTodos = st.TotalTodos - st.CompletedTodos
	return st, nil
}

func scanTodo(row pgx.Row) (models.Todo, error) {
	var todo models.Todo
	var description *string
	err := row.Scan(&todo.ID, &todo.Title, &description, &todo.DueDate, &todo.Category,
		&todo.Completed, &todo.OwnerID, &todo.Owner.Username, &todo.Owner.Email,
		&todo.CreatedAt, &todo.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, err
	}
	if description != nil {
		todo.Description = *description
	}
	todo.Owner.ID = todo.OwnerID
	return todo, nil
}
