package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

// LabelService renders a shipping label PDF and returns a URL where the
// stored document can be fetched.
type LabelService interface {
	Generate(ctx context.Context, s *shipment.Shipment) (string, error)
}

// Notifier delivers a status-change notification to staff. Implementations
// are best-effort; the dispatcher logs failures and moves on.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, s *shipment.Shipment, status shipment.Status) error
}

// PlatformSyncer pushes a local status change back to the platform.
// Like Notifier, failures never abort the local write.
type PlatformSyncer interface {
	SyncShipmentStatus(ctx context.Context, s *shipment.Shipment, status shipment.Status) error
}

// Service classifies inbound webhook events and drives repository updates,
// label generation, notifications and platform synchronization.
type Service struct {
	shipments shipment.Repository
	tokens    merchant.TokenRepository
	labels    LabelService
	notifier  Notifier
	syncer    PlatformSyncer
	logger    *zap.Logger
}

// NewService creates a new webhook dispatch service
func NewService(
	shipments shipment.Repository,
	tokens merchant.TokenRepository,
	labels LabelService,
	notifier Notifier,
	syncer PlatformSyncer,
	logger *zap.Logger,
) *Service {
	return &Service{
		shipments: shipments,
		tokens:    tokens,
		labels:    labels,
		notifier:  notifier,
		syncer:    syncer,
		logger:    logger.Named("webhook"),
	}
}

// Dispatch handles one decoded event envelope. Classification failures and
// missing resources come back as domain errors; downstream side effects
// (mail, platform sync) are fire-and-forget and never fail the dispatch.
func (s *Service) Dispatch(ctx context.Context, env *EventEnvelope) (*DispatchResult, error) {
	switch env.Event {
	case EventStoreAuthorize:
		return s.handleAuthorize(ctx, env)
	case EventAppInstalled:
		s.logger.Info("app installed", zap.Int64("merchant", env.Merchant))
		return &DispatchResult{Status: http.StatusCreated, Message: "app installed"}, nil
	case EventAppUninstalled:
		return s.handleUninstall(ctx, env)
	case EventShipmentCreating:
		return s.handleShipmentCreating(ctx, env)
	case EventShipmentCancelled:
		return s.handleShipmentCancelled(ctx, env)
	default:
		s.logger.Warn("unknown event type", zap.String("event", env.Event))
		return nil, shared.ErrUnknownEvent
	}
}

func (s *Service) handleAuthorize(ctx context.Context, env *EventEnvelope) (*DispatchResult, error) {
	accessToken := asString(env.Data["access_token"])
	refreshToken := asString(env.Data["refresh_token"])
	expires, _ := asInt64(env.Data["expires"])

	token, err := merchant.NewToken(env.Merchant, accessToken, refreshToken, expires)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Info("merchant authorized", zap.Int64("merchant", env.Merchant))
	return &DispatchResult{Status: http.StatusCreated, Message: "app authorized"}, nil
}

func (s *Service) handleUninstall(ctx context.Context, env *EventEnvelope) (*DispatchResult, error) {
	if _, err := s.tokens.FindByMerchant(ctx, env.Merchant); err != nil {
		return nil, err
	}
	if err := s.tokens.Delete(ctx, env.Merchant); err != nil {
		return nil, err
	}

	s.logger.Info("merchant uninstalled", zap.Int64("merchant", env.Merchant))
	return &DispatchResult{Status: http.StatusOK, Message: "app uninstalled"}, nil
}

func (s *Service) handleShipmentCreating(ctx context.Context, env *EventEnvelope) (*DispatchResult, error) {
	incoming, err := parseShipment(env)
	if err != nil {
		return nil, err
	}

	existing, err := s.shipments.FindByID(ctx, incoming.ShipmentID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return s.createShipment(ctx, env, incoming)
	case err != nil:
		return nil, err
	}

	if existing.IsReturn() {
		return s.updateReturnShipment(ctx, existing, incoming)
	}
	return s.appendAndSync(ctx, existing, eventStatus(env))
}

// createShipment inserts a new shipment, renders its label, records the
// created status and notifies staff. The insert is atomic: when a concurrent
// delivery wins the race, this one falls back to the status-append path
// instead of producing a duplicate row.
func (s *Service) createShipment(ctx context.Context, env *EventEnvelope, incoming *shipment.Shipment) (*DispatchResult, error) {
	if err := s.shipments.Create(ctx, incoming); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.shipments.FindByID(ctx, incoming.ShipmentID)
			if findErr != nil {
				return nil, findErr
			}
			return s.appendAndSync(ctx, existing, eventStatus(env))
		}
		return nil, err
	}

	labelURL, err := s.labels.Generate(ctx, incoming)
	if err != nil {
		return nil, err
	}
	if err := incoming.AssignLabel(labelURL); err != nil {
		return nil, err
	}
	if err := s.shipments.Save(ctx, incoming); err != nil {
		return nil, err
	}

	if _, err := s.shipments.AppendStatus(ctx, incoming.ShipmentID, shipment.StatusCreated); err != nil {
		return nil, err
	}
	s.notify(ctx, incoming, shipment.StatusCreated)

	s.logger.Info("shipment created",
		zap.Int64("shipment_id", incoming.ShipmentID),
		zap.String("shipping_number", incoming.ShippingNumber))
	return &DispatchResult{
		Status:   http.StatusCreated,
		Message:  "shipment created",
		PDFLabel: labelURL,
	}, nil
}

// updateReturnShipment overwrites an existing return shipment with the
// incoming payload. Shipping number and label survive the overwrite: both
// are assigned once and never replaced.
func (s *Service) updateReturnShipment(ctx context.Context, existing, incoming *shipment.Shipment) (*DispatchResult, error) {
	incoming.ShippingNumber = existing.ShippingNumber
	incoming.Label = existing.Label
	if err := s.shipments.Save(ctx, incoming); err != nil {
		return nil, err
	}

	if _, err := s.shipments.AppendStatus(ctx, incoming.ShipmentID, shipment.StatusCreated); err != nil {
		return nil, err
	}
	s.sync(ctx, incoming, shipment.StatusCreated)

	s.logger.Info("return shipment updated", zap.Int64("shipment_id", incoming.ShipmentID))
	return &DispatchResult{Status: http.StatusOK, Message: "shipment updated"}, nil
}

func (s *Service) appendAndSync(ctx context.Context, existing *shipment.Shipment, status shipment.Status) (*DispatchResult, error) {
	if _, err := s.shipments.AppendStatus(ctx, existing.ShipmentID, status); err != nil {
		return nil, err
	}
	s.sync(ctx, existing, status)

	s.logger.Info("shipment status appended",
		zap.Int64("shipment_id", existing.ShipmentID),
		zap.String("status", status.String()))
	return &DispatchResult{Status: http.StatusOK, Message: "status updated"}, nil
}

func (s *Service) handleShipmentCancelled(ctx context.Context, env *EventEnvelope) (*DispatchResult, error) {
	shipmentID, ok := asInt64(env.Data["id"])
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid shipment data")
	}

	existing, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.shipments.AppendStatus(ctx, shipmentID, shipment.StatusCancelled); err != nil {
		return nil, err
	}

	// Cancellations are local-only: staff get notified, the platform does not.
	s.notify(ctx, existing, shipment.StatusCancelled)

	s.logger.Info("shipment cancelled", zap.Int64("shipment_id", shipmentID))
	return &DispatchResult{Status: http.StatusOK, Message: "shipment cancelled"}, nil
}

func (s *Service) notify(ctx context.Context, sh *shipment.Shipment, status shipment.Status) {
	if err := s.notifier.NotifyStatusChange(ctx, sh, status); err != nil {
		s.logger.Error("notification failed",
			zap.Int64("shipment_id", sh.ShipmentID),
			zap.String("status", status.String()),
			zap.Error(err))
	}
}

func (s *Service) sync(ctx context.Context, sh *shipment.Shipment, status shipment.Status) {
	if err := s.syncer.SyncShipmentStatus(ctx, sh, status); err != nil {
		s.logger.Error("platform sync failed",
			zap.Int64("shipment_id", sh.ShipmentID),
			zap.String("status", status.String()),
			zap.Error(err))
	}
}
