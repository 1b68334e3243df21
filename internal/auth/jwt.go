// Package auth guards the admin API. The lifecycle store does no
// authorization of its own.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Gate verifies a bearer token and returns the subject it was issued to.
type Gate interface {
	Verify(token string) (string, error)
}

// JWTGate issues and verifies HS256 tokens for the single admin account.
type JWTGate struct {
	secret       []byte
	user         string
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

var _ Gate = (*JWTGate)(nil)

// NewJWTGate creates a gate. passwordHash is a bcrypt hash; when it is empty
// every login is refused and only externally minted tokens are accepted.
func NewJWTGate(secret, user, passwordHash string, ttl time.Duration) *JWTGate {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTGate{
		secret:       []byte(secret),
		user:         user,
		passwordHash: passwordHash,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login checks the admin credentials and returns a signed token.
func (g *JWTGate) Login(user, password string) (string, error) {
	if g.passwordHash == "" || user != g.user {
		return "", ErrInvalidCredentials
	}
	if !CheckPassword(password, g.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return g.Issue(user)
}

// Issue signs a token for subject without checking a password.
func (g *JWTGate) Issue(subject string) (string, error) {
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token, with or without a "Bearer " prefix.
func (g *JWTGate) Verify(token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// HashPassword returns a bcrypt hash suitable for auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
