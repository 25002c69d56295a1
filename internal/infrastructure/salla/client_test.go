package salla

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shipments/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, apiURL string) *Client {
	t.Helper()
	now := time.Now()

	repo := newFakeTokenRepo()
	token, err := merchant.NewToken(42, "access-token", "refresh", now.Add(time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), token))

	cfg := &config.SallaConfig{
		APIBaseURL:      apiURL,
		AccountsBaseURL: "http://unreachable.invalid",
		APIKey:          "client-id",
		APISecret:       "client-secret",
		Timeout:         5 * time.Second,
		ShippingCost:    "19",
	}
	return NewClient(cfg, NewTokenStore(repo, cfg, zap.NewNop()), zap.NewNop())
}

func testShipment() *shipment.Shipment {
	return &shipment.Shipment{
		ShipmentID:     1001,
		Merchant:       42,
		ShippingNumber: "000004052024",
		Label:          shipment.Attrs{"url": "https://labels/1001.pdf"},
	}
}

func TestClient_SyncShipmentStatus(t *testing.T) {
	t.Run("puts the stable payload shape", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/admin/v2/shipments/1001", r.URL.Path)
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		err := client.SyncShipmentStatus(context.Background(), testShipment(), shipment.StatusDelivering)
		require.NoError(t, err)

		assert.Equal(t, "000004052024", captured["shipment_number"])
		assert.Equal(t, "delivering", captured["status"])
		assert.Equal(t, "https://labels/1001.pdf", captured["pdf_label"])
		assert.Equal(t, "19", captured["cost"])
	})

	t.Run("non-200 response is reported", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		err := client.SyncShipmentStatus(context.Background(), testShipment(), shipment.StatusDelivered)
		assert.Error(t, err)
	})

	t.Run("missing merchant token blocks the sync", func(t *testing.T) {
		client := newTestClient(t, "http://unreachable.invalid")
		s := testShipment()
		s.Merchant = 999

		err := client.SyncShipmentStatus(context.Background(), s, shipment.StatusDelivered)
		assert.Error(t, err)
	})
}
