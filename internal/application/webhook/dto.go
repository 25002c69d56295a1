package webhook

// Event tags pushed by the platform. Anything else is rejected.
const (
	EventStoreAuthorize    = "app.store.authorize"
	EventAppInstalled      = "app.installed"
	EventAppUninstalled    = "app.uninstalled"
	EventShipmentCreating  = "shipment.creating"
	EventShipmentCancelled = "shipment.cancelled"
)

// EventEnvelope is one decoded webhook delivery. Data carries the
// event-specific payload and is not validated beyond the fields the
// dispatcher itself needs.
type EventEnvelope struct {
	Event     string         `json:"event" binding:"required"`
	Merchant  int64          `json:"merchant" binding:"required"`
	CreatedAt string         `json:"created_at"`
	Data      map[string]any `json:"data"`
}

// DispatchResult reports the outcome of a successfully handled event.
// Failures travel as errors and are mapped to HTTP statuses at the edge.
// PDFLabel is set only when a creation rendered a new label.
type DispatchResult struct {
	Status   int    `json:"-"`
	Message  string `json:"message"`
	PDFLabel string `json:"pdf_label,omitempty"`
}
