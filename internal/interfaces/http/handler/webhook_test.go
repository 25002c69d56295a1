package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	webhookapp "github.com/shipments/backend/internal/application/webhook"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLabelService struct {
	url string
	err error
}

func (f *fakeLabelService) Generate(ctx context.Context, s *shipment.Shipment) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) NotifyStatusChange(ctx context.Context, s *shipment.Shipment, status shipment.Status) error {
	f.calls++
	return nil
}

type fakePlatformSyncer struct {
	calls int
}

func (f *fakePlatformSyncer) SyncShipmentStatus(ctx context.Context, s *shipment.Shipment, status shipment.Status) error {
	f.calls++
	return nil
}

func newWebhookEngine(shipments *fakeShipmentRepo, tokens *fakeTokenRepo) *gin.Engine {
	svc := webhookapp.NewService(shipments, tokens,
		&fakeLabelService{url: "http://localhost:8080/api/v1/shipments/1001/label"},
		&fakeNotifier{}, &fakePlatformSyncer{}, zap.NewNop())

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	h := NewWebhookHandler(svc, zap.NewNop())
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postWebhook(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/salla", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookMalformedJSON(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{"event": "shipment.creating"`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "Invalid webhook payload")
}

func TestWebhookMissingRequiredFields(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	// Merchant is required by binding
	w := postWebhook(engine, `{"event": "app.installed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownEvent(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{"event": "order.created", "merchant": 42}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestWebhookAppInstalled(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{"event": "app.installed", "merchant": 42}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "app installed", resp["message"])
}

func TestWebhookStoreAuthorize(t *testing.T) {
	tokens := newFakeTokenRepo()
	engine := newWebhookEngine(newFakeShipmentRepo(), tokens)

	w := postWebhook(engine, `{
		"event": "app.store.authorize",
		"merchant": 42,
		"data": {
			"access_token": "token-abc",
			"refresh_token": "refresh-xyz",
			"expires": 1760000000
		}
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	stored, err := tokens.FindByMerchant(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", stored.AccessToken)
	assert.Equal(t, "refresh-xyz", stored.RefreshToken)
}

func TestWebhookStoreAuthorizeMissingCredentials(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "app.store.authorize",
		"merchant": 42,
		"data": {"access_token": "token-abc"}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAppUninstalled(t *testing.T) {
	tokens := newFakeTokenRepo()
	tokens.tokens[42] = merchantTokenFixture(42)
	engine := newWebhookEngine(newFakeShipmentRepo(), tokens)

	w := postWebhook(engine, `{"event": "app.uninstalled", "merchant": 42}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, tokens.tokens)
}

func TestWebhookAppUninstalledUnknownMerchant(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{"event": "app.uninstalled", "merchant": 999}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookShipmentCreating(t *testing.T) {
	shipments := newFakeShipmentRepo()
	engine := newWebhookEngine(shipments, newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "shipment.creating",
		"merchant": 42,
		"created_at": "Wed Oct 13 2021 07:53:00 GMT+0000",
		"data": {
			"id": 1001,
			"shipping_number": "000004052024",
			"type": "shipment",
			"courier_name": "DHL"
		}
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "shipment created", resp["message"])
	assert.Equal(t, "http://localhost:8080/api/v1/shipments/1001/label", resp["pdf_label"])

	stored, err := shipments.FindByID(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "000004052024", stored.ShippingNumber)
	assert.Equal(t, "http://localhost:8080/api/v1/shipments/1001/label", stored.LabelURL())

	history := shipments.statuses[1001]
	require.Len(t, history, 1)
	assert.Equal(t, shipment.StatusCreated, history[0].Status)
}

func TestWebhookShipmentCreatingMissingCreatedAt(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "shipment.creating",
		"merchant": 42,
		"data": {"id": 1001}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookShipmentCreatingExisting(t *testing.T) {
	shipments := newFakeShipmentRepo()
	require.NoError(t, shipments.Create(context.Background(), newTestShipment(1001, "000004052024")))
	engine := newWebhookEngine(shipments, newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "shipment.creating",
		"merchant": 42,
		"created_at": "Wed Oct 13 2021 07:53:00 GMT+0000",
		"data": {"id": 1001, "status": "delivering"}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "status updated", resp["message"])

	history := shipments.statuses[1001]
	require.Len(t, history, 1)
	assert.Equal(t, shipment.StatusDelivering, history[0].Status)
}

func TestWebhookShipmentCancelled(t *testing.T) {
	shipments := newFakeShipmentRepo()
	require.NoError(t, shipments.Create(context.Background(), newTestShipment(1001, "000004052024")))
	engine := newWebhookEngine(shipments, newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "shipment.cancelled",
		"merchant": 42,
		"data": {"id": 1001}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)

	history := shipments.statuses[1001]
	require.Len(t, history, 1)
	assert.Equal(t, shipment.StatusCancelled, history[0].Status)
}

func TestWebhookShipmentCancelledUnknown(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := postWebhook(engine, `{
		"event": "shipment.cancelled",
		"merchant": 42,
		"data": {"id": 9999}
	}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	engine := newWebhookEngine(newFakeShipmentRepo(), newFakeTokenRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/salla", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Method not allowed", resp["error"])
}
