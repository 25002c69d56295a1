package models

import (
	"time"

	"github.com/shipments/backend/internal/domain/shipment"
)

// ShipmentModel is the persistence mapping for shipment.Shipment.
// The primary key is the platform-assigned shipment ID; the shipping number
// carries a unique constraint so it can never be reassigned.
type ShipmentModel struct {
	ShipmentID     int64     `gorm:"column:shipment_id;primaryKey"`
	Event          string    `gorm:"index"`
	Merchant       int64     `gorm:"index"`
	CreatedAt      time.Time `gorm:"index"`
	Type           string
	ShippingNumber string `gorm:"uniqueIndex;not null"`
	CourierName    string
	CourierLogo    string
	TrackingNumber string `gorm:"index"`
	TrackingLink   string
	PaymentMethod  string

	Total            shipment.Attrs `gorm:"type:jsonb"`
	CashOnDelivery   shipment.Attrs `gorm:"type:jsonb"`
	Label            shipment.Attrs `gorm:"type:jsonb"`
	TotalWeight      shipment.Attrs `gorm:"type:jsonb"`
	CreatedAtDetails shipment.Attrs `gorm:"column:created_at_details;type:jsonb"`
	Packages         shipment.Attrs `gorm:"type:jsonb"`
	ShipFrom         shipment.Attrs `gorm:"type:jsonb"`
	ShipTo           shipment.Attrs `gorm:"type:jsonb"`
	Meta             shipment.Attrs `gorm:"type:jsonb"`

	UpdatedAt time.Time
}

// TableName returns the table name for ShipmentModel
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts ShipmentModel to the domain entity
func (m *ShipmentModel) ToDomain() *shipment.Shipment {
	return &shipment.Shipment{
		ShipmentID:       m.ShipmentID,
		Event:            m.Event,
		Merchant:         m.Merchant,
		CreatedAt:        m.CreatedAt,
		Type:             m.Type,
		ShippingNumber:   m.ShippingNumber,
		CourierName:      m.CourierName,
		CourierLogo:      m.CourierLogo,
		TrackingNumber:   m.TrackingNumber,
		TrackingLink:     m.TrackingLink,
		PaymentMethod:    m.PaymentMethod,
		Total:            m.Total,
		CashOnDelivery:   m.CashOnDelivery,
		Label:            m.Label,
		TotalWeight:      m.TotalWeight,
		CreatedAtDetails: m.CreatedAtDetails,
		Packages:         m.Packages,
		ShipFrom:         m.ShipFrom,
		ShipTo:           m.ShipTo,
		Meta:             m.Meta,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ShipmentModelFromDomain converts the domain entity to ShipmentModel
func ShipmentModelFromDomain(s *shipment.Shipment) *ShipmentModel {
	return &ShipmentModel{
		ShipmentID:       s.ShipmentID,
		Event:            s.Event,
		Merchant:         s.Merchant,
		CreatedAt:        s.CreatedAt,
		Type:             s.Type,
		ShippingNumber:   s.ShippingNumber,
		CourierName:      s.CourierName,
		CourierLogo:      s.CourierLogo,
		TrackingNumber:   s.TrackingNumber,
		TrackingLink:     s.TrackingLink,
		PaymentMethod:    s.PaymentMethod,
		Total:            s.Total,
		CashOnDelivery:   s.CashOnDelivery,
		Label:            s.Label,
		TotalWeight:      s.TotalWeight,
		CreatedAtDetails: s.CreatedAtDetails,
		Packages:         s.Packages,
		ShipFrom:         s.ShipFrom,
		ShipTo:           s.ShipTo,
		Meta:             s.Meta,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ShipmentStatusModel is the persistence mapping for one status history entry
type ShipmentStatusModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	ShipmentID int64  `gorm:"index;not null"`
	Status     string `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for ShipmentStatusModel
func (ShipmentStatusModel) TableName() string {
	return "shipment_statuses"
}

// ToDomain converts ShipmentStatusModel to the domain entry
func (m *ShipmentStatusModel) ToDomain() *shipment.StatusEntry {
	return &shipment.StatusEntry{
		ID:         m.ID,
		ShipmentID: m.ShipmentID,
		Status:     shipment.Status(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}
