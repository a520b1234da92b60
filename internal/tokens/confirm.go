package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Confirmation tokens are a separate signing scheme from session tokens:
// their own secret, a purpose claim instead of a token class flag, no jti
// and no revocation tracking. They travel inside email links for
// verification and password resets.

type ConfirmPurpose string

const (
	PurposeEmailVerification ConfirmPurpose = "email_verification"
	PurposePasswordReset     ConfirmPurpose = "password_reset"
)

const DefaultConfirmTTL = 24 * time.Hour

type confirmClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type ConfirmCodec struct {
	secret []byte
	ttl    time.Duration

	now func() time.Time
}

func NewConfirmCodec(secret []byte, ttl time.Duration) *ConfirmCodec {
	if ttl <= 0 {
		ttl = DefaultConfirmTTL
	}
	return &ConfirmCodec{secret: secret, ttl: ttl, now: time.Now}
}

func (c *ConfirmCodec) Issue(email string, purpose ConfirmPurpose) (string, error) {
	now := c.now()
	claims := confirmClaims{
		Email:   email,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode returns the email the token was issued for. A token minted for a
// different purpose is rejected the same way as a corrupt one.
func (c *ConfirmCodec) Decode(raw string, purpose ConfirmPurpose) (string, error) {
	claims := &confirmClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil || !token.Valid || claims.Purpose != string(purpose) || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
