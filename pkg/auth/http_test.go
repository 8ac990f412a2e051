package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

type fakeUserLoader struct {
	users map[string]models.User
	err   error
}

func (f *fakeUserLoader) GetUser(ctx context.Context, id string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func resolverFixture(t *testing.T, loader UserLoader) (*Codec, http.Handler, *Identity) {
	t.Helper()
	codec := newTestCodec(t)
	var captured Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		captured = id
		w.WriteHeader(http.StatusOK)
	})
	return codec, Middleware(codec, loader, time.Second)(inner), &captured
}

func authMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatalf("expected failure envelope, got %s", rr.Body.String())
	}
	return body.Message
}

func TestMiddlewareNoToken(t *testing.T) {
	_, h, _ := resolverFixture(t, &fakeUserLoader{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := authMessage(t, rr); msg != "no token provided" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	_, h, _ := resolverFixture(t, &fakeUserLoader{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := authMessage(t, rr); msg != "invalid token" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	codec, h, _ := resolverFixture(t, &fakeUserLoader{})
	past := time.Now().UTC().Add(-time.Hour)
	codec.now = func() time.Time { return past }
	token, err := codec.Issue("u1", models.RoleMember)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	codec.now = time.Now
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := authMessage(t, rr); msg != "token expired" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMiddlewareDeletedUser(t *testing.T) {
	codec, h, _ := resolverFixture(t, &fakeUserLoader{users: map[string]models.User{}})
	token, err := codec.Issue("ghost", models.RoleMember)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if msg := authMessage(t, rr); msg != "user not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMiddlewareLoaderFailure(t *testing.T) {
	codec, h, _ := resolverFixture(t, &fakeUserLoader{err: errors.New("connection refused")})
	token, err := codec.Issue("u1", models.RoleMember)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on loader failure, got %d", rr.Code)
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	loader := &fakeUserLoader{users: map[string]models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", Role: models.RoleMember},
	}}
	codec, h, captured := resolverFixture(t, loader)
	token, err := codec.Issue("u1", models.RoleMember)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.UserID != "u1" || captured.Role != models.RoleMember || captured.User.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", captured)
	}
}
