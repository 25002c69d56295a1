package salla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shipments/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client pushes shipment state changes back to the Salla admin API.
// It satisfies the dispatcher's PlatformSyncer port.
type Client struct {
	cfg        *config.SallaConfig
	tokens     *TokenStore
	httpClient *http.Client
	logger     *zap.Logger
	cost       decimal.Decimal
}

// NewClient creates a new Salla API client
func NewClient(cfg *config.SallaConfig, tokens *TokenStore, logger *zap.Logger) *Client {
	cost, err := decimal.NewFromString(cfg.ShippingCost)
	if err != nil {
		cost = decimal.NewFromInt(19)
	}
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("salla.client"),
		cost:       cost,
	}
}

type shipmentUpdatePayload struct {
	ShipmentNumber string          `json:"shipment_number"`
	Status         string          `json:"status"`
	PDFLabel       string          `json:"pdf_label"`
	Cost           decimal.Decimal `json:"cost"`
}

// SyncShipmentStatus PUTs the local status change to the platform's
// shipments endpoint. The cost is a fixed nominal value, never derived from
// package weight. One attempt, no retries; the caller logs failures.
func (c *Client) SyncShipmentStatus(ctx context.Context, s *shipment.Shipment, status shipment.Status) error {
	accessToken, err := c.tokens.AccessToken(ctx, s.Merchant)
	if err != nil {
		return fmt.Errorf("cannot sync shipment %d: %w", s.ShipmentID, err)
	}

	payload := shipmentUpdatePayload{
		ShipmentNumber: s.ShippingNumber,
		Status:         status.String(),
		PDFLabel:       s.LabelURL(),
		Cost:           c.cost,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode shipment update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/admin/v2/shipments/%d", c.cfg.APIBaseURL, s.ShipmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build shipment update request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shipment update request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("platform rejected shipment update",
			zap.Int64("shipment_id", s.ShipmentID),
			zap.String("status", status.String()),
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return fmt.Errorf("shipment update failed with status %d", resp.StatusCode)
	}

	c.logger.Info("shipment update pushed",
		zap.Int64("shipment_id", s.ShipmentID),
		zap.String("status", status.String()),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}
