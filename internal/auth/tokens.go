package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID string     `json:"id"`
	Role   users.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs HS256 bearer tokens. Admin tokens live shorter.
type Tokens struct {
	Secret   []byte
	UserTTL  time.Duration
	AdminTTL time.Duration
	Now      func() time.Time
}

func NewTokens(secret string, userTTL, adminTTL time.Duration) Tokens {
	return Tokens{Secret: []byte(secret), UserTTL: userTTL, AdminTTL: adminTTL, Now: time.Now}
}

func (t Tokens) Issue(u users.User) (string, time.Time, error) {
	now := t.Now()
	ttl := t.UserTTL
	if u.IsAdmin() {
		ttl = t.AdminTTL
	}
	exp := now.Add(ttl)
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (t Tokens) Parse(raw string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil || !tok.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
