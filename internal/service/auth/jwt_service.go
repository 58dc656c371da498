package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing session tokens.
type JWTService interface {
	// GenerateToken creates a signed session token for the user.
	GenerateToken(ctx context.Context, userID int64) (Token, error)

	// ValidateToken validates the token string and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Token is a signed session token and its metadata.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents the validated content of a session token.
type Claims struct {
	// UserID is the identifier of the user the token was issued for.
	UserID int64 `json:"uid,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`

	// ValidUntil is the last instant the token is still accepted, which is
	// ExpiresAt plus the validation leeway. Revocations must last this long.
	ValidUntil time.Time `json:"-"`
}
