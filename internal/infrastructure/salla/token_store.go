package salla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TokenStore hands out valid access tokens for merchants, refreshing
// transparently when the stored token has expired. A failed refresh leaves
// the stored token untouched.
type TokenStore struct {
	tokens     merchant.TokenRepository
	cfg        *config.SallaConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewTokenStore creates a new token store backed by the given repository
func NewTokenStore(tokens merchant.TokenRepository, cfg *config.SallaConfig, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		tokens:     tokens,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("salla.tokens"),
		now:        time.Now,
	}
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AccessToken returns a usable access token for the merchant. Returns
// shared.ErrNoToken when the merchant never authorized; refresh failures
// come back as errors and the caller decides whether syncing matters.
func (s *TokenStore) AccessToken(ctx context.Context, merchantID int64) (string, error) {
	token, err := s.tokens.FindByMerchant(ctx, merchantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrNoToken
		}
		return "", err
	}

	if !token.IsExpired(s.now()) {
		return token.AccessToken, nil
	}
	if err := s.refresh(ctx, token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// refresh exchanges the refresh token at the platform's OAuth endpoint and
// persists the new credentials on success.
func (s *TokenStore) refresh(ctx context.Context, token *merchant.Token) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)
	form.Set("client_id", s.cfg.APIKey)
	form.Set("client_secret", s.cfg.APISecret)

	endpoint := s.cfg.AccountsBaseURL + "/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Error("token refresh rejected",
			zap.Int64("merchant", token.MerchantID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var payload refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("refresh response carries no access token")
	}

	expires := payload.Expires
	if expires == 0 && payload.ExpiresIn > 0 {
		expires = s.now().Add(time.Duration(payload.ExpiresIn) * time.Second).Unix()
	}

	token.Refresh(payload.AccessToken, expires)
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	s.logger.Info("access token refreshed", zap.Int64("merchant", token.MerchantID))
	return nil
}
