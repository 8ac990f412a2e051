package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/auth"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/ratelimit"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/store"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/stream"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/validate"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r, ratelimit.RegisterKey(clientIP(r)), s.RegisterLimit) {
		return
	}
	var req models.RegisterRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if errs := validate.Register(&req); len(errs) > 0 {
		httpx.ValidationError(w, errs)
		return
	}
	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, r, err, "Error registering user")
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         models.RoleMember,
		CreatedAt:    time.Now().UTC(),
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			httpx.Error(w, http.StatusBadRequest, "Username or email already in use")
			return
		}
		s.internalError(w, r, err, "Error registering user")
		return
	}
	token, err := s.Codec.Issue(user.ID, user.Role)
	if err != nil {
		s.internalError(w, r, err, "Error registering user")
		return
	}
	s.publish(stream.EventUserCreated, user.Summary())
	httpx.OK(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if errs := validate.Login(&req); len(errs) > 0 {
		httpx.ValidationError(w, errs)
		return
	}
	if !s.allow(w, r, ratelimit.LoginKey(clientIP(r), req.Identifier), s.LoginLimit) {
		return
	}
	ctx, cancel := s.dbCtx(r)
	defer cancel()
	user, err := s.Users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.internalError(w, r, err, "Error logging in")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := s.Codec.Issue(user.ID, user.Role)
	if err != nil {
		s.internalError(w, r, err, "Error logging in")
		return
	}
	httpx.OK(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]interface{}{"user": identity.User})
}

// allow applies the auth-endpoint rate limit; a nil limiter allows everything.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, key string, limit int) bool {
	if s.RateLimiter == nil {
		return true
	}
	out := s.RateLimiter.Allow(r.Context(), key, limit)
	if out.Allowed {
		return true
	}
	httpx.Error(w, http.StatusTooManyRequests, "Too many requests, try again later")
	return false
}
