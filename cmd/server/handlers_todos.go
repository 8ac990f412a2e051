package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/access"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/auth"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/metrics"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/scope"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/store"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/stream"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/validate"
)

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	filters := scope.ParseFilters(r.URL.Query())
	where, args := scope.Build(identity.Role, identity.UserID, filters)
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	todos, err := s.Todos.List(ctx, where, args)
	if err != nil {
		s.internalError(w, r, err, "Error fetching todos")
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{
		"count": len(todos),
		"todos": todos,
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req models.TodoCreateRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	in, errs := validate.TodoCreate(req)
	if len(errs) > 0 {
		httpx.ValidationError(w, errs)
		return
	}
	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Category:    in.Category,
		OwnerID:     identity.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	created, err := s.Todos.Create(ctx, todo)
	if err != nil {
		s.internalError(w, r, err, "Error creating todo")
		return
	}
	s.publish(stream.EventTodoCreated, created)
	httpx.OK(w, http.StatusCreated, "Todo created successfully", map[string]interface{}{
		"todo": created,
	})
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := s.loadOwnedTodo(w, r, "Access denied. You can only view your own todos.")
	if !ok {
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{"todo": todo})
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req models.TodoUpdateRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	patch, errs := validate.TodoUpdate(req)
	if len(errs) > 0 {
		httpx.ValidationError(w, errs)
		return
	}
	todo, ok := s.loadOwnedTodo(w, r, "Access denied. You can only update your own todos.")
	if !ok {
		return
	}
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = *patch.Description
	}
	if patch.DueDateSet {
		todo.DueDate = patch.DueDate
	}
	if patch.Category != nil {
		todo.Category = *patch.Category
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	todo.UpdatedAt = time.Now().UTC()
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	updated, err := s.Todos.Update(ctx, todo)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return
		}
		s.internalError(w, r, err, "Error updating todo")
		return
	}
	s.publish(stream.EventTodoUpdated, updated)
	httpx.OK(w, http.StatusOK, "Todo updated successfully", map[string]interface{}{
		"todo": updated,
	})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := s.loadOwnedTodo(w, r, "Access denied. You can only delete your own todos.")
	if !ok {
		return
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	if err := s.Todos.Delete(ctx, todo.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return
		}
		s.internalError(w, r, err, "Error deleting todo")
		return
	}
	s.publish(stream.EventTodoDeleted, map[string]string{"id": todo.ID})
	httpx.OK(w, http.StatusOK, "Todo deleted successfully", nil)
}

// loadOwnedTodo loads the addressed todo and applies the ownership predicate.
// The same gate serves read, update, and delete so the three can never drift.
func (s *Server) loadOwnedTodo(w http.ResponseWriter, r *http.Request, denyMsg string) (models.Todo, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return models.Todo{}, false
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	todo, err := s.Todos.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return models.Todo{}, false
		}
		s.internalError(w, r, err, "Error fetching todo")
		return models.Todo{}, false
	}
	if !access.CanAccessResource(identity.UserID, identity.Role, todo.OwnerID) {
		s.Metrics.IncAuthz(metrics.AuthzOwnershipDeny)
		httpx.Error(w, http.StatusForbidden, denyMsg)
		return models.Todo{}, false
	}
	return todo, true
}
