package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

// Identity is the authenticated request context: the verified subject id and
// role from the token plus the freshly loaded account record.
type Identity struct {
	UserID string
	Role   models.Role
	User   models.User
}

type contextKey string

const identityContextKey contextKey = "todo.identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// UserLoader loads the subject record behind a verified token. ErrNotFound
// from the loader means the account was deleted after the token was issued.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

// ErrUserNotFound is what a UserLoader returns (possibly wrapped) when the
// subject no longer exists.
var ErrUserNotFound = errors.New("user not found")

// Middleware resolves the bearer token into an Identity and rejects with 401
// on any failure. It runs once per request ahead of all route logic.
func Middleware(codec *Codec, users UserLoader, timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				httpx.Error(w, http.StatusUnauthorized, "no token provided")
				return
			}
			token := strings.TrimSpace(header[len("Bearer "):])
			claims, err := codec.Verify(token)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					httpx.Error(w, http.StatusUnauthorized, "token expired")
					return
				}
				httpx.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			user, err := users.GetUser(ctx, claims.Subject)
			cancel()
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					httpx.Error(w, http.StatusUnauthorized, "user not found")
					return
				}
				httpx.Error(w, http.StatusInternalServerError, "authentication failed")
				return
			}
			id := Identity{UserID: user.ID, Role: claims.Role, User: user}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
