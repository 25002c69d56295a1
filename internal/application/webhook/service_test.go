package webhook

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceMocks struct {
	shipments *MockShipmentRepository
	tokens    *MockTokenRepository
	labels    *MockLabelService
	notifier  *MockNotifier
	syncer    *MockPlatformSyncer
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		shipments: new(MockShipmentRepository),
		tokens:    new(MockTokenRepository),
		labels:    new(MockLabelService),
		notifier:  new(MockNotifier),
		syncer:    new(MockPlatformSyncer),
	}
	svc := NewService(m.shipments, m.tokens, m.labels, m.notifier, m.syncer, zap.NewNop())
	return svc, m
}

func creatingEnvelope(shipmentID int64) *EventEnvelope {
	return &EventEnvelope{
		Event:     EventShipmentCreating,
		Merchant:  42,
		CreatedAt: "Wed Oct 13 2021 07:53:00 GMT+0000",
		Data: map[string]any{
			"id":              float64(shipmentID),
			"type":            "shipment",
			"courier_name":    "aramex",
			"shipping_number": "000004052024",
			"tracking_number": "TRK-1",
			"total":           map[string]any{"amount": 125.5, "currency": "SAR"},
			"ship_from":       map[string]any{"city": "Riyadh"},
			"ship_to":         map[string]any{"city": "Jeddah"},
		},
	}
}

func TestService_Dispatch_UnknownEvent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Dispatch(context.Background(), &EventEnvelope{Event: "order.created", Merchant: 1})
	assert.ErrorIs(t, err, shared.ErrUnknownEvent)
}

func TestService_Dispatch_Authorize(t *testing.T) {
	t.Run("upserts token from payload", func(t *testing.T) {
		svc, m := newTestService(t)
		m.tokens.On("Upsert", mock.Anything, mock.MatchedBy(func(tok *merchant.Token) bool {
			return tok.MerchantID == 42 && tok.AccessToken == "acc" && tok.RefreshToken == "ref"
		})).Return(nil)

		result, err := svc.Dispatch(context.Background(), &EventEnvelope{
			Event:    EventStoreAuthorize,
			Merchant: 42,
			Data: map[string]any{
				"access_token":  "acc",
				"refresh_token": "ref",
				"expires":       float64(1893456000),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)
		m.tokens.AssertExpectations(t)
	})

	t.Run("missing credentials", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Dispatch(context.Background(), &EventEnvelope{
			Event:    EventStoreAuthorize,
			Merchant: 42,
			Data:     map[string]any{"access_token": "acc"},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestService_Dispatch_Uninstall(t *testing.T) {
	t.Run("deletes the stored token", func(t *testing.T) {
		svc, m := newTestService(t)
		token, _ := merchant.NewToken(42, "acc", "ref", 1893456000)
		m.tokens.On("FindByMerchant", mock.Anything, int64(42)).Return(token, nil)
		m.tokens.On("Delete", mock.Anything, int64(42)).Return(nil)

		result, err := svc.Dispatch(context.Background(), &EventEnvelope{Event: EventAppUninstalled, Merchant: 42})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		m.tokens.AssertExpectations(t)
	})

	t.Run("unknown merchant reports not found", func(t *testing.T) {
		svc, m := newTestService(t)
		m.tokens.On("FindByMerchant", mock.Anything, int64(42)).Return(nil, shared.ErrNotFound)

		_, err := svc.Dispatch(context.Background(), &EventEnvelope{Event: EventAppUninstalled, Merchant: 42})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.tokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_Dispatch_ShipmentCreating_New(t *testing.T) {
	svc, m := newTestService(t)
	env := creatingEnvelope(1001)

	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(nil, shared.ErrNotFound).Once()
	m.shipments.On("Create", mock.Anything, mock.MatchedBy(func(s *shipment.Shipment) bool {
		return s.ShipmentID == 1001 && s.ShippingNumber == "000004052024"
	})).Return(nil)
	m.labels.On("Generate", mock.Anything, mock.Anything).Return("https://labels/1001.pdf", nil)
	m.shipments.On("Save", mock.Anything, mock.MatchedBy(func(s *shipment.Shipment) bool {
		return s.LabelURL() == "https://labels/1001.pdf"
	})).Return(nil)
	m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCreated).
		Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCreated}, nil)
	m.notifier.On("NotifyStatusChange", mock.Anything, mock.Anything, shipment.StatusCreated).Return(nil)

	result, err := svc.Dispatch(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.Status)
	assert.Equal(t, "https://labels/1001.pdf", result.PDFLabel)

	m.shipments.AssertExpectations(t)
	m.labels.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
	m.syncer.AssertNotCalled(t, "SyncShipmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Dispatch_ShipmentCreating_Existing(t *testing.T) {
	svc, m := newTestService(t)
	env := creatingEnvelope(1001)

	existing := &shipment.Shipment{ShipmentID: 1001, Type: "shipment", ShippingNumber: "000004052024"}
	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil)
	m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCreated).
		Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCreated}, nil)
	m.syncer.On("SyncShipmentStatus", mock.Anything, existing, shipment.StatusCreated).Return(nil)

	result, err := svc.Dispatch(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)

	// No duplicate row, no second label
	m.shipments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.labels.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	m.syncer.AssertExpectations(t)
}

func TestService_Dispatch_ShipmentCreating_Return(t *testing.T) {
	svc, m := newTestService(t)
	env := creatingEnvelope(1001)
	env.Data["type"] = "return"

	existing := &shipment.Shipment{
		ShipmentID:     1001,
		Type:           shipment.TypeReturn,
		ShippingNumber: "ORIGINAL-SN",
		Label:          shipment.Attrs{"url": "https://labels/original.pdf"},
	}
	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil)
	m.shipments.On("Save", mock.Anything, mock.MatchedBy(func(s *shipment.Shipment) bool {
		// Overwritten payload, but number and label survive
		return s.ShippingNumber == "ORIGINAL-SN" &&
			s.LabelURL() == "https://labels/original.pdf" &&
			s.CourierName == "aramex"
	})).Return(nil)
	m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCreated).
		Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCreated}, nil)
	m.syncer.On("SyncShipmentStatus", mock.Anything, mock.Anything, shipment.StatusCreated).Return(nil)

	result, err := svc.Dispatch(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)

	m.shipments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.shipments.AssertExpectations(t)
	m.syncer.AssertExpectations(t)
}

// Two deliveries can both miss the existence check; the loser of the insert
// race must land on the status-append path instead of erroring out.
func TestService_Dispatch_ShipmentCreating_InsertRace(t *testing.T) {
	svc, m := newTestService(t)
	env := creatingEnvelope(1001)

	existing := &shipment.Shipment{ShipmentID: 1001, Type: "shipment", ShippingNumber: "000004052024"}
	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(nil, shared.ErrNotFound).Once()
	m.shipments.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)
	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil).Once()
	m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCreated).
		Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCreated}, nil)
	m.syncer.On("SyncShipmentStatus", mock.Anything, existing, shipment.StatusCreated).Return(nil)

	result, err := svc.Dispatch(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	m.labels.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestService_Dispatch_ShipmentCreating_LabelFailure(t *testing.T) {
	svc, m := newTestService(t)
	env := creatingEnvelope(1001)

	m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(nil, shared.ErrNotFound)
	m.shipments.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.labels.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("render failed"))

	_, err := svc.Dispatch(context.Background(), env)
	require.Error(t, err)
	m.shipments.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Dispatch_ShipmentCreating_InvalidPayload(t *testing.T) {
	t.Run("missing created_at", func(t *testing.T) {
		svc, _ := newTestService(t)
		env := creatingEnvelope(1001)
		env.CreatedAt = ""

		_, err := svc.Dispatch(context.Background(), env)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("unparseable created_at", func(t *testing.T) {
		svc, _ := newTestService(t)
		env := creatingEnvelope(1001)
		env.CreatedAt = "2021-10-13T07:53:00Z"

		_, err := svc.Dispatch(context.Background(), env)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("missing shipment id", func(t *testing.T) {
		svc, _ := newTestService(t)
		env := creatingEnvelope(1001)
		delete(env.Data, "id")

		_, err := svc.Dispatch(context.Background(), env)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestService_Dispatch_ShipmentCancelled(t *testing.T) {
	t.Run("appends cancelled status without platform sync", func(t *testing.T) {
		svc, m := newTestService(t)

		existing := &shipment.Shipment{ShipmentID: 1001, ShippingNumber: "SN-1"}
		m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil)
		m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCancelled).
			Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCancelled}, nil)
		m.notifier.On("NotifyStatusChange", mock.Anything, existing, shipment.StatusCancelled).Return(nil)

		result, err := svc.Dispatch(context.Background(), &EventEnvelope{
			Event:    EventShipmentCancelled,
			Merchant: 42,
			Data:     map[string]any{"id": float64(1001)},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)

		m.syncer.AssertNumberOfCalls(t, "SyncShipmentStatus", 0)
		m.notifier.AssertExpectations(t)
	})

	t.Run("unknown shipment creates no records", func(t *testing.T) {
		svc, m := newTestService(t)
		m.shipments.On("FindByID", mock.Anything, int64(9999)).Return(nil, shared.ErrNotFound)

		_, err := svc.Dispatch(context.Background(), &EventEnvelope{
			Event:    EventShipmentCancelled,
			Merchant: 42,
			Data:     map[string]any{"id": float64(9999)},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.shipments.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Side-effect failures are logged, never surfaced.
func TestService_Dispatch_SideEffectFailuresDoNotPropagate(t *testing.T) {
	t.Run("sync failure after status append", func(t *testing.T) {
		svc, m := newTestService(t)
		env := creatingEnvelope(1001)

		existing := &shipment.Shipment{ShipmentID: 1001, Type: "shipment"}
		m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil)
		m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCreated).
			Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCreated}, nil)
		m.syncer.On("SyncShipmentStatus", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("remote down"))

		result, err := svc.Dispatch(context.Background(), env)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
	})

	t.Run("notification failure after cancellation", func(t *testing.T) {
		svc, m := newTestService(t)

		existing := &shipment.Shipment{ShipmentID: 1001}
		m.shipments.On("FindByID", mock.Anything, int64(1001)).Return(existing, nil)
		m.shipments.On("AppendStatus", mock.Anything, int64(1001), shipment.StatusCancelled).
			Return(&shipment.StatusEntry{ShipmentID: 1001, Status: shipment.StatusCancelled}, nil)
		m.notifier.On("NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))

		result, err := svc.Dispatch(context.Background(), &EventEnvelope{
			Event:    EventShipmentCancelled,
			Merchant: 42,
			Data:     map[string]any{"id": float64(1001)},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
	})
}
