package shipment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingShipmentID indicates a shipment without a platform-assigned ID
	ErrMissingShipmentID = errors.New("shipment: missing shipment ID")
	// ErrMissingMerchant indicates a shipment without an owning merchant
	ErrMissingMerchant = errors.New("shipment: missing merchant ID")
	// ErrLabelAlreadySet indicates an attempt to overwrite the label URL
	ErrLabelAlreadySet = errors.New("shipment: label already assigned")
)

// TypeReturn marks a shipment flowing back from the customer to the merchant.
// Any other type value is treated as a standard forward shipment.
const TypeReturn = "return"

// Attrs holds a semi-structured JSON sub-object from the platform payload
// (addresses, money amounts, package dimensions). The internal shape is never
// validated locally, only passed through.
type Attrs map[string]any

// Value implements driver.Valuer for JSON column storage
func (a Attrs) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSON column storage
func (a *Attrs) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("shipment: cannot scan %T into Attrs", value)
	}
}

// GetString returns a string attribute, or "" when absent or non-textual
func (a Attrs) GetString(key string) string {
	if a == nil {
		return ""
	}
	s, _ := a[key].(string)
	return s
}

// Shipment is one parcel record tracked through its lifecycle. It is keyed by
// the platform-assigned shipment ID; the shipping number is the externally
// visible identifier and never changes once assigned.
type Shipment struct {
	ShipmentID     int64
	Event          string
	Merchant       int64
	CreatedAt      time.Time
	Type           string
	ShippingNumber string
	CourierName    string
	CourierLogo    string
	TrackingNumber string
	TrackingLink   string
	PaymentMethod  string

	Total            Attrs
	CashOnDelivery   Attrs
	Label            Attrs
	TotalWeight      Attrs
	CreatedAtDetails Attrs
	Packages         Attrs
	ShipFrom         Attrs
	ShipTo           Attrs
	Meta             Attrs

	UpdatedAt time.Time
}

// NewShipment builds a shipment from parsed webhook fields. A shipping number
// is generated when the payload does not carry one, since the field is unique
// and required downstream.
func NewShipment(shipmentID, merchant int64, event string, createdAt time.Time) (*Shipment, error) {
	if shipmentID == 0 {
		return nil, ErrMissingShipmentID
	}
	if merchant == 0 {
		return nil, ErrMissingMerchant
	}
	return &Shipment{
		ShipmentID:     shipmentID,
		Merchant:       merchant,
		Event:          event,
		CreatedAt:      createdAt,
		ShippingNumber: uuid.NewString(),
	}, nil
}

// IsReturn reports whether this shipment is a customer return
func (s *Shipment) IsReturn() bool {
	return strings.EqualFold(s.Type, TypeReturn)
}

// AssignLabel records the rendered PDF label URL. The label is written exactly
// once after creation.
func (s *Shipment) AssignLabel(url string) error {
	if len(s.Label) > 0 {
		return ErrLabelAlreadySet
	}
	s.Label = Attrs{"url": url}
	return nil
}

// LabelURL returns the stored label URL, or "" when no label was generated
func (s *Shipment) LabelURL() string {
	return s.Label.GetString("url")
}

// StatusEntry is one append-only history record. The current status of a
// shipment is the entry with the latest creation time; there is no dedicated
// current-status column.
type StatusEntry struct {
	ID         int64
	ShipmentID int64
	Status     Status
	CreatedAt  time.Time
}
