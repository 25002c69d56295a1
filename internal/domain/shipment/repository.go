package shipment

import "context"

// Repository defines persistence operations for shipments and their
// append-only status history. Implementations live in the infrastructure
// layer.
type Repository interface {
	// Create inserts a new shipment. Returns shared.ErrAlreadyExists when a
	// row with the same shipment ID is already present, so concurrent
	// deliveries of the same creation event cannot produce duplicates.
	Create(ctx context.Context, s *Shipment) error

	// FindByID loads a shipment by its platform-assigned ID.
	// Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, shipmentID int64) (*Shipment, error)

	// Save overwrites every column of an existing shipment. Nested JSON
	// sub-objects are replaced wholesale, never merged.
	Save(ctx context.Context, s *Shipment) error

	// Delete removes a shipment and cascades to its status history.
	Delete(ctx context.Context, shipmentID int64) error

	// List returns shipments ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]Shipment, int64, error)

	// Search returns shipments whose shipping number or tracking number
	// contains the query as a case-insensitive substring.
	Search(ctx context.Context, query string) ([]Shipment, error)

	// DeleteDuplicates removes older rows that share a shipping number,
	// keeping the most recently created one. Returns the number of rows
	// removed.
	DeleteDuplicates(ctx context.Context) (int64, error)

	// AppendStatus adds a history entry for the shipment.
	// Returns shared.ErrNotFound when the shipment does not exist.
	AppendStatus(ctx context.Context, shipmentID int64, status Status) (*StatusEntry, error)

	// LatestStatus returns the most recent history entry, or nil when the
	// shipment has no history yet.
	LatestStatus(ctx context.Context, shipmentID int64) (*StatusEntry, error)

	// ListStatuses returns the full history for a shipment, oldest first.
	ListStatuses(ctx context.Context, shipmentID int64) ([]StatusEntry, error)
}
