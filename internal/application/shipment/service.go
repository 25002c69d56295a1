package shipment

import (
	"context"

	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ShipmentDetails couples a shipment with its derived current status and
// full history. There is no stored current-status column; the latest
// history entry wins.
type ShipmentDetails struct {
	Shipment *shipment.Shipment
	Current  *shipment.StatusEntry
	History  []shipment.StatusEntry
}

// ShipmentList is one page of shipments plus the total row count
type ShipmentList struct {
	Items []shipment.Shipment
	Total int64
}

// Service exposes read and maintenance operations over stored shipments
type Service struct {
	shipments shipment.Repository
	logger    *zap.Logger
}

// NewService creates a new shipment query service
func NewService(shipments shipment.Repository, logger *zap.Logger) *Service {
	return &Service{
		shipments: shipments,
		logger:    logger.Named("shipment"),
	}
}

// List returns one page of shipments, newest first
func (s *Service) List(ctx context.Context, limit, offset int) (*ShipmentList, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.shipments.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ShipmentList{Items: items, Total: total}, nil
}

// Get loads one shipment with its status history
func (s *Service) Get(ctx context.Context, shipmentID int64) (*ShipmentDetails, error) {
	sh, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	current, err := s.shipments.LatestStatus(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	history, err := s.shipments.ListStatuses(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	return &ShipmentDetails{Shipment: sh, Current: current, History: history}, nil
}

// Search finds shipments by shipping or tracking number substring. The query
// must be textual; anything else is rejected as invalid input rather than
// silently coerced.
func (s *Service) Search(ctx context.Context, query any) ([]shipment.Shipment, error) {
	text, ok := query.(string)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "search query must be a string")
	}
	if text == "" {
		return []shipment.Shipment{}, nil
	}
	return s.shipments.Search(ctx, text)
}

// AppendStatus records a manual status change for a shipment
func (s *Service) AppendStatus(ctx context.Context, shipmentID int64, status shipment.Status) (*shipment.StatusEntry, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown status value")
	}

	entry, err := s.shipments.AppendStatus(ctx, shipmentID, status.Normalize())
	if err != nil {
		return nil, err
	}

	s.logger.Info("status appended manually",
		zap.Int64("shipment_id", shipmentID),
		zap.String("status", status.String()))
	return entry, nil
}

// Delete removes a shipment and its history
func (s *Service) Delete(ctx context.Context, shipmentID int64) error {
	if err := s.shipments.Delete(ctx, shipmentID); err != nil {
		return err
	}
	s.logger.Info("shipment deleted", zap.Int64("shipment_id", shipmentID))
	return nil
}

// Cleanup removes shipments that share a shipping number with a newer row.
// Duplicates predate the unique shipping-number constraint; the newest row
// per number survives.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.shipments.DeleteDuplicates(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("duplicate shipments removed", zap.Int64("count", removed))
	}
	return removed, nil
}
