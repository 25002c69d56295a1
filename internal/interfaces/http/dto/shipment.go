package dto

import (
	"time"

	"github.com/shipments/backend/internal/domain/shipment"
)

// ShipmentResponse is the wire representation of a shipment
type ShipmentResponse struct {
	ShipmentID     int64          `json:"shipment_id"`
	Event          string         `json:"event"`
	Merchant       int64          `json:"merchant"`
	CreatedAt      time.Time      `json:"created_at"`
	Type           string         `json:"type,omitempty"`
	ShippingNumber string         `json:"shipping_number"`
	CourierName    string         `json:"courier_name,omitempty"`
	CourierLogo    string         `json:"courier_logo,omitempty"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	TrackingLink   string         `json:"tracking_link,omitempty"`
	PaymentMethod  string         `json:"payment_method,omitempty"`
	Total          shipment.Attrs `json:"total,omitempty"`
	CashOnDelivery shipment.Attrs `json:"cash_on_delivery,omitempty"`
	Label          shipment.Attrs `json:"label,omitempty"`
	TotalWeight    shipment.Attrs `json:"total_weight,omitempty"`
	Packages       shipment.Attrs `json:"packages,omitempty"`
	ShipFrom       shipment.Attrs `json:"ship_from,omitempty"`
	ShipTo         shipment.Attrs `json:"ship_to,omitempty"`
	Meta           shipment.Attrs `json:"meta,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// StatusEntryResponse is the wire representation of one status history entry
type StatusEntryResponse struct {
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ShipmentDetailsResponse couples a shipment with its derived current status
// and full history
type ShipmentDetailsResponse struct {
	ShipmentResponse
	CurrentStatus string                `json:"current_status,omitempty"`
	History       []StatusEntryResponse `json:"history"`
}

// ShipmentFromDomain converts a domain shipment to its wire representation
func ShipmentFromDomain(s *shipment.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ShipmentID:     s.ShipmentID,
		Event:          s.Event,
		Merchant:       s.Merchant,
		CreatedAt:      s.CreatedAt,
		Type:           s.Type,
		ShippingNumber: s.ShippingNumber,
		CourierName:    s.CourierName,
		CourierLogo:    s.CourierLogo,
		TrackingNumber: s.TrackingNumber,
		TrackingLink:   s.TrackingLink,
		PaymentMethod:  s.PaymentMethod,
		Total:          s.Total,
		CashOnDelivery: s.CashOnDelivery,
		Label:          s.Label,
		TotalWeight:    s.TotalWeight,
		Packages:       s.Packages,
		ShipFrom:       s.ShipFrom,
		ShipTo:         s.ShipTo,
		Meta:           s.Meta,
		UpdatedAt:      s.UpdatedAt,
	}
}

// StatusEntryFromDomain converts a domain status entry to its wire representation
func StatusEntryFromDomain(e *shipment.StatusEntry) StatusEntryResponse {
	return StatusEntryResponse{
		Status:    e.Status.String(),
		CreatedAt: e.CreatedAt,
	}
}

// ListShipmentsRequest carries pagination parameters for the list endpoint
type ListShipmentsRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// SearchShipmentsRequest carries the search query
type SearchShipmentsRequest struct {
	Query string `form:"q" binding:"required"`
}

// AppendStatusRequest carries a manual status change
type AppendStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CleanupResponse reports how many duplicate rows were removed
type CleanupResponse struct {
	Removed int64 `json:"removed"`
}
