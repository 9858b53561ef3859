// Package auth issues and checks the admin tokens that guard catalog
// mutations.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminRole is the only role a token can carry
const AdminRole = "admin"

// Claims is the validated content of an admin token
type Claims struct {
	Subject   string
	Role      string
	JTI       uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the token grants admin access
func (c *Claims) IsAdmin() bool {
	return c.Role == AdminRole
}

// JWTManager signs and validates HS256 admin tokens
type JWTManager struct {
	secretKey string
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTManager creates a token manager. Tokens expire ttl after issuance.
func NewJWTManager(secretKey, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// GenerateAdminToken issues a token for subject and returns it with its
// expiry time
func (j *JWTManager) GenerateAdminToken(subject string) (string, time.Time, error) {
	if j.secretKey == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret key is empty")
	}

	now := j.now().UTC()
	expiresAt := now.Add(j.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"iss":  j.issuer,
		"jti":  uuid.New().String(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}

// ValidateToken verifies signature, issuer and expiry and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid sub claim")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid role claim")
	}

	jtiStr, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid jti claim")
	}
	jti, err := uuid.Parse(jtiStr)
	if err != nil {
		return nil, fmt.Errorf("invalid jti format")
	}

	out := &Claims{Subject: subject, Role: role, JTI: jti}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.UTC()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.UTC()
	}
	return out, nil
}
