// Package auth issues and verifies the access and refresh tokens the HTTP
// layer consumes. Rotation policy lives with the caller, not here.
package auth

import (
	"fmt"
	"time"

	"schoolcampus/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	ID   string `json:"_id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
}

func NewManager(env config.Env) *Manager {
	return &Manager{
		accessSecret:  []byte(env.JWTSecret),
		refreshSecret: []byte(env.RefreshSecret),
		accessExpire:  env.JWTExpire,
		refreshExpire: env.RefreshExpire,
	}
}

func (m *Manager) SignAccess(id, role string) (string, error) {
	return sign(m.accessSecret, id, role, m.accessExpire)
}

func (m *Manager) SignRefresh(id, role string) (string, error) {
	return sign(m.refreshSecret, id, role, m.refreshExpire)
}

func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	return verify(m.accessSecret, token)
}

func (m *Manager) VerifyRefresh(token string) (*Claims, error) {
	return verify(m.refreshSecret, token)
}

func sign(secret []byte, id, role string, expire time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(secret []byte, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
