package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 48 * time.Hour
)

// ErrInvalidToken covers malformed tokens, bad signatures and expired
// tokens alike. Callers never learn which, so token validity cannot be
// probed for the reason a token was rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

type UserClaims struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
	Role  string `json:"role"`
}

type SessionClaims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens. The secret and algorithm are
// injected once at construction and never change at runtime.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func NewCodec(secret []byte, alg string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("tokens: unknown signing algorithm %q", alg)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("tokens: algorithm %q is not an HMAC method", alg)
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Codec{
		secret:     secret,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token for user with a fresh jti. A zero ttl falls back to
// the configured default for the token class.
func (c *Codec) Issue(user UserClaims, ttl time.Duration, refresh bool) (string, error) {
	if ttl <= 0 {
		if refresh {
			ttl = c.refreshTTL
		} else {
			ttl = c.accessTTL
		}
	}

	now := c.now()
	claims := SessionClaims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

func (c *Codec) Decode(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Remaining reports how long the token stays structurally valid. Used to
// bound the revocation entry to the token's natural lifetime.
func (c *Codec) Remaining(claims *SessionClaims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(c.now())
}
