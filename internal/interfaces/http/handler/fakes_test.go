package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeShipmentRepo is an in-memory shipment.Repository for handler tests
type fakeShipmentRepo struct {
	shipments  map[int64]*shipment.Shipment
	statuses   map[int64][]shipment.StatusEntry
	duplicates int64
	nextEntry  int64
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{
		shipments: make(map[int64]*shipment.Shipment),
		statuses:  make(map[int64][]shipment.StatusEntry),
	}
}

func (f *fakeShipmentRepo) Create(ctx context.Context, s *shipment.Shipment) error {
	if _, ok := f.shipments[s.ShipmentID]; ok {
		return shared.ErrAlreadyExists
	}
	copied := *s
	f.shipments[s.ShipmentID] = &copied
	return nil
}

func (f *fakeShipmentRepo) FindByID(ctx context.Context, shipmentID int64) (*shipment.Shipment, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeShipmentRepo) Save(ctx context.Context, s *shipment.Shipment) error {
	if _, ok := f.shipments[s.ShipmentID]; !ok {
		return shared.ErrNotFound
	}
	copied := *s
	f.shipments[s.ShipmentID] = &copied
	return nil
}

func (f *fakeShipmentRepo) Delete(ctx context.Context, shipmentID int64) error {
	if _, ok := f.shipments[shipmentID]; !ok {
		return shared.ErrNotFound
	}
	delete(f.shipments, shipmentID)
	delete(f.statuses, shipmentID)
	return nil
}

func (f *fakeShipmentRepo) List(ctx context.Context, limit, offset int) ([]shipment.Shipment, int64, error) {
	all := make([]shipment.Shipment, 0, len(f.shipments))
	for _, s := range f.shipments {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []shipment.Shipment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeShipmentRepo) Search(ctx context.Context, query string) ([]shipment.Shipment, error) {
	q := strings.ToLower(query)
	matches := make([]shipment.Shipment, 0)
	for _, s := range f.shipments {
		if strings.Contains(strings.ToLower(s.ShippingNumber), q) ||
			strings.Contains(strings.ToLower(s.TrackingNumber), q) {
			matches = append(matches, *s)
		}
	}
	return matches, nil
}

func (f *fakeShipmentRepo) DeleteDuplicates(ctx context.Context) (int64, error) {
	return f.duplicates, nil
}

func (f *fakeShipmentRepo) AppendStatus(ctx context.Context, shipmentID int64, status shipment.Status) (*shipment.StatusEntry, error) {
	if _, ok := f.shipments[shipmentID]; !ok {
		return nil, shared.ErrNotFound
	}
	f.nextEntry++
	entry := shipment.StatusEntry{
		ID:         f.nextEntry,
		ShipmentID: shipmentID,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	f.statuses[shipmentID] = append(f.statuses[shipmentID], entry)
	return &entry, nil
}

func (f *fakeShipmentRepo) LatestStatus(ctx context.Context, shipmentID int64) (*shipment.StatusEntry, error) {
	entries := f.statuses[shipmentID]
	if len(entries) == 0 {
		return nil, nil
	}
	entry := entries[len(entries)-1]
	return &entry, nil
}

func (f *fakeShipmentRepo) ListStatuses(ctx context.Context, shipmentID int64) ([]shipment.StatusEntry, error) {
	return f.statuses[shipmentID], nil
}

// fakeTokenRepo is an in-memory merchant.TokenRepository
type fakeTokenRepo struct {
	tokens map[int64]merchant.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[int64]merchant.Token)}
}

func (f *fakeTokenRepo) Upsert(ctx context.Context, token *merchant.Token) error {
	f.tokens[token.MerchantID] = *token
	return nil
}

func (f *fakeTokenRepo) FindByMerchant(ctx context.Context, merchantID int64) (*merchant.Token, error) {
	token, ok := f.tokens[merchantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &token, nil
}

func (f *fakeTokenRepo) Delete(ctx context.Context, merchantID int64) error {
	delete(f.tokens, merchantID)
	return nil
}

func merchantTokenFixture(merchantID int64) merchant.Token {
	return merchant.Token{
		MerchantID:   merchantID,
		AccessToken:  "token-abc",
		RefreshToken: "refresh-xyz",
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
	}
}

func newTestShipment(shipmentID int64, shippingNumber string) *shipment.Shipment {
	s, err := shipment.NewShipment(shipmentID, 42, "shipment.creating",
		time.Date(2021, 10, 13, 7, 53, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	s.ShippingNumber = shippingNumber
	s.CourierName = "DHL"
	s.TrackingNumber = "TRK-" + shippingNumber
	s.Total = shipment.Attrs{"amount": 100.0, "currency": "SAR"}
	s.TotalWeight = shipment.Attrs{"value": 2.5, "units": "kg"}
	s.ShipFrom = shipment.Attrs{"name": "Warehouse", "city": "Riyadh"}
	s.ShipTo = shipment.Attrs{"name": "Customer", "city": "Jeddah"}
	return s
}
