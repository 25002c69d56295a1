package merchant

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken indicates authorization data missing required credentials
var ErrInvalidToken = errors.New("merchant: access and refresh tokens are required")

// Token holds the OAuth credentials for one merchant. A merchant has at most
// one token row; an authorization event replaces it and an uninstall event
// deletes it.
type Token struct {
	MerchantID   int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewToken builds a token from an authorization event. Expiry comes as a unix
// timestamp and is stored as UTC.
func NewToken(merchantID int64, accessToken, refreshToken string, expiresUnix int64) (*Token, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, ErrInvalidToken
	}
	return &Token{
		MerchantID:   merchantID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Unix(expiresUnix, 0).UTC(),
	}, nil
}

// IsExpired reports whether the access token must be refreshed before use
func (t *Token) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Refresh replaces the access token and expiry after a successful OAuth
// refresh call. The refresh token itself is kept.
func (t *Token) Refresh(accessToken string, expiresUnix int64) {
	t.AccessToken = accessToken
	t.ExpiresAt = time.Unix(expiresUnix, 0).UTC()
}

// TokenRepository defines persistence operations for merchant tokens
type TokenRepository interface {
	// Upsert creates or replaces the token for a merchant
	Upsert(ctx context.Context, token *Token) error

	// FindByMerchant loads the token for a merchant.
	// Returns shared.ErrNotFound when absent.
	FindByMerchant(ctx context.Context, merchantID int64) (*Token, error)

	// Delete removes the token for a merchant. Deleting an absent token is
	// not an error: uninstall events may arrive for merchants that never
	// authorized.
	Delete(ctx context.Context, merchantID int64) error
}
