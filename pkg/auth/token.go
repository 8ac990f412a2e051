package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

// Token verification failures, distinguished so the boundary layer can pick
// the right user-facing message (all map to 401).
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Claims is the signed identity payload carried by every request.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens. The signing secret is
// loaded once at startup and immutable afterwards.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}, nil
}

// Issue mints a token for the subject. Two calls at different instants yield
// distinct, independently valid tokens.
func (c *Codec) Issue(userID string, role models.Role) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token, returning its claims or one of the
// sentinel errors above.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignatureInvalid
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}
