package webhook

import (
	"context"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/stretchr/testify/mock"
)

// MockShipmentRepository is a mock implementation of shipment.Repository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, shipmentID int64) (*shipment.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Delete(ctx context.Context, shipmentID int64) error {
	args := m.Called(ctx, shipmentID)
	return args.Error(0)
}

func (m *MockShipmentRepository) List(ctx context.Context, limit, offset int) ([]shipment.Shipment, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]shipment.Shipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockShipmentRepository) Search(ctx context.Context, query string) ([]shipment.Shipment, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) DeleteDuplicates(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentRepository) AppendStatus(ctx context.Context, shipmentID int64, status shipment.Status) (*shipment.StatusEntry, error) {
	args := m.Called(ctx, shipmentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.StatusEntry), args.Error(1)
}

func (m *MockShipmentRepository) LatestStatus(ctx context.Context, shipmentID int64) (*shipment.StatusEntry, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.StatusEntry), args.Error(1)
}

func (m *MockShipmentRepository) ListStatuses(ctx context.Context, shipmentID int64) ([]shipment.StatusEntry, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).([]shipment.StatusEntry), args.Error(1)
}

// MockTokenRepository is a mock implementation of merchant.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *merchant.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByMerchant(ctx context.Context, merchantID int64) (*merchant.Token, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Token), args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, merchantID int64) error {
	args := m.Called(ctx, merchantID)
	return args.Error(0)
}

// MockLabelService is a mock implementation of LabelService
type MockLabelService struct {
	mock.Mock
}

func (m *MockLabelService) Generate(ctx context.Context, s *shipment.Shipment) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, s *shipment.Shipment, status shipment.Status) error {
	args := m.Called(ctx, s, status)
	return args.Error(0)
}

// MockPlatformSyncer is a mock implementation of PlatformSyncer
type MockPlatformSyncer struct {
	mock.Mock
}

func (m *MockPlatformSyncer) SyncShipmentStatus(ctx context.Context, s *shipment.Shipment, status shipment.Status) error {
	args := m.Called(ctx, s, status)
	return args.Error(0)
}
