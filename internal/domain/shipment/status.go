package shipment

// Status represents a shipment lifecycle status reported by the platform
// or assigned locally when an event is processed.
type Status string

const (
	// StatusCreating indicates the platform is still assembling the shipment
	StatusCreating Status = "creating"
	// StatusCreated indicates the shipment record has been created
	StatusCreated Status = "created"
	// StatusPending indicates the shipment is awaiting courier pickup
	StatusPending Status = "pending"
	// StatusDelivering indicates the shipment is in transit
	StatusDelivering Status = "delivering"
	// StatusDelivered indicates the shipment reached the recipient
	StatusDelivered Status = "delivered"
	// StatusReturned indicates the shipment was returned to the sender
	StatusReturned Status = "returned"
	// StatusInProgress indicates intermediate courier handling
	StatusInProgress Status = "in_progress"
	// StatusCancelled indicates the shipment was cancelled
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is part of the fixed enumeration
func (s Status) IsValid() bool {
	switch s {
	case StatusCreating, StatusCreated, StatusPending, StatusDelivering,
		StatusDelivered, StatusReturned, StatusInProgress, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Normalize maps transient platform statuses to their persisted form.
// The platform reports "creating" while the local record is already created,
// so history entries store "created" instead.
func (s Status) Normalize() Status {
	if s == StatusCreating {
		return StatusCreated
	}
	return s
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}
