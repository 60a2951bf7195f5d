// Package auth provides admin authentication for the ledger API.
package auth

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// Admin is the single administrative principal. There is no user registry;
// one row holds the bcrypt hash the API authenticates against.
type Admin struct {
	ID           id.ID     `db:"id"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Credentials is a login request.
type Credentials struct {
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Repository loads and stores the admin principal.
type Repository interface {
	Get(ctx context.Context) (*Admin, error)
	SetPasswordHash(ctx context.Context, hash string) error
}
