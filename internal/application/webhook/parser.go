package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
)

// createdAtLayout is the fixed literal timestamp format the platform sends,
// e.g. "Wed Oct 13 2021 07:53:00 GMT+0000".
const createdAtLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

// parseShipment flattens an envelope into a shipment entity. The envelope's
// created_at must be present and match the platform's literal format; the
// payload must carry a shipment id. Sub-objects (addresses, money, weights,
// packages) pass through opaquely without shape validation.
func parseShipment(env *EventEnvelope) (*shipment.Shipment, error) {
	if env.CreatedAt == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "created_at is required")
	}
	createdAt, err := time.Parse(createdAtLayout, env.CreatedAt)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("cannot parse created_at %q", env.CreatedAt))
	}

	shipmentID, ok := asInt64(env.Data["id"])
	if !ok || env.Event == "" || env.Merchant == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid shipment data")
	}

	s, err := shipment.NewShipment(shipmentID, env.Merchant, env.Event, createdAt.UTC())
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	s.Type = asString(env.Data["type"])
	if number := asString(env.Data["shipping_number"]); number != "" {
		s.ShippingNumber = number
	}
	s.CourierName = asString(env.Data["courier_name"])
	s.CourierLogo = asString(env.Data["courier_logo"])
	s.TrackingNumber = asString(env.Data["tracking_number"])
	s.TrackingLink = asString(env.Data["tracking_link"])
	s.PaymentMethod = asString(env.Data["payment_method"])
	s.Total = asAttrs(env.Data["total"])
	s.CashOnDelivery = asAttrs(env.Data["cash_on_delivery"])
	s.TotalWeight = asAttrs(env.Data["total_weight"])
	s.CreatedAtDetails = asAttrs(env.Data["created_at"])
	s.Packages = asAttrs(env.Data["packages"])
	s.ShipFrom = asAttrs(env.Data["ship_from"])
	s.ShipTo = asAttrs(env.Data["ship_to"])
	s.Meta = asAttrs(env.Data["meta"])

	return s, nil
}

// eventStatus extracts the nominal status the payload carries, falling back
// to the event tag's suffix. "creating" is reported as "created".
func eventStatus(env *EventEnvelope) shipment.Status {
	if raw, ok := env.Data["status"]; ok {
		if slug := asString(raw); slug != "" {
			return shipment.Status(slug).Normalize()
		}
		if attrs := asAttrs(raw); attrs != nil {
			if slug := attrs.GetString("slug"); slug != "" {
				return shipment.Status(slug).Normalize()
			}
		}
	}
	if len(env.Event) > len("shipment.") && env.Event[:len("shipment.")] == "shipment." {
		return shipment.Status(env.Event[len("shipment."):]).Normalize()
	}
	return shipment.StatusCreated
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asAttrs(v any) shipment.Attrs {
	switch m := v.(type) {
	case map[string]any:
		return shipment.Attrs(m)
	case shipment.Attrs:
		return m
	default:
		return nil
	}
}
