package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/access"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/audit"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/auth"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/scope"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/store"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/stream"
)

const statsCacheKey = "admin:stats"

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	users, err := s.Users.List(ctx)
	if err != nil {
		s.internalError(w, r, err, "Error fetching users")
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{
		"count": len(users),
		"users": users,
	})
}

func (s *Server) handleAdminListTodos(w http.ResponseWriter, r *http.Request) {
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

func (s *Server) handleAdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	targetID := chi.URLParam(r, "id")
	var req models.RoleUpdateRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	newRole := models.Role(strings.TrimSpace(req.Role))
	if err := access.ChangeRole(identity.UserID, targetID, newRole); err != nil {
		switch {
		case errors.Is(err, access.ErrSelfRoleChange):
			httpx.Error(w, http.StatusBadRequest, "You cannot change your own role")
		case errors.Is(err, access.ErrInvalidRole):
			httpx.Error(w, http.StatusBadRequest, `Invalid role. Must be either "member" or "administrator"`)
		default:
			s.internalError(w, r, err, "Error updating role")
		}
		return
	}

	ctx, cancel := s.dbCtx(r)
	defer cancel()
	before, err := s.Users.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		s.internalError(w, r, err, "Error updating role")
		return
	}
	updated, err := s.Users.UpdateRole(ctx, targetID, newRole)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "User not found")
			return
		}
		s.internalError(w, r, err, "Error updating role")
		return
	}

	rec := audit.Record{
		ID:        uuid.NewString(),
		ActorID:   identity.UserID,
		Action:    audit.ActionRoleChange,
		TargetID:  targetID,
		Detail:    audit.RoleChangeDetail(string(before.Role), string(updated.Role)),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Audit.Append(ctx, rec); err != nil {
		// The mutation already committed; an audit write failure is logged,
		// not surfaced.
		log.Printf("audit append: %v", err)
	}
	s.publish(stream.EventRoleChanged, map[string]string{
		"userId": updated.ID,
		"role":   string(updated.Role),
	})
	httpx.OK(w, http.StatusOK, "User role updated to "+string(updated.Role), map[string]interface{}{
		"user": updated,
	})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	if cached, err := s.Cache.Get(ctx, statsCacheKey); err == nil {
		var stats models.Stats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			httpx.OK(w, http.StatusOK, "", map[string]interface{}{"stats": stats})
			return
		}
	}
	stats, err := s.Todos.Stats(ctx)
	if err != nil {
		s.internalError(w, r, err, "Error fetching stats")
		return
	}
	if b, err := json.Marshal(stats); err == nil {
		if err := s.Cache.Set(ctx, statsCacheKey, string(b), s.StatsCacheTTL); err != nil {
			log.Printf("stats cache set: %v", err)
		}
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{"stats": stats})
}

func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	records, err := s.Audit.ListRecent(ctx, limit)
	if err != nil {
		s.internalError(w, r, err, "Error fetching audit records")
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: s.AllowAnyWSOrigin,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := s.Events.Subscribe(64)
	defer s.Events.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, evt)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
