package domain

import "time"

// AssignmentStatus is the persisted status of an order's partner search.
type AssignmentStatus string

// List of assignment statuses. Only searching is non-terminal.
const (
	AssignmentSearching AssignmentStatus = "searching"
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentExhausted AssignmentStatus = "exhausted"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s AssignmentStatus) Terminal() bool {
	return s != AssignmentSearching
}

// Assignment is the stored state of one order's assignment flow.
type Assignment struct {
	OrderID   string
	Status    AssignmentStatus
	PartnerID string
	Rounds    int
	Retries   int
	UpdatedAt time.Time
}

// Attempt is one assignment request for a paid order.
type Attempt struct {
	OrderID string
	Origin  Point
}

// Validate checks the order id and the origin point.
func (a Attempt) Validate() (Attempt, error) {
	id, err := NormalizeID(a.OrderID)
	if err != nil {
		return Attempt{}, err
	}
	if err := a.Origin.Validate(); err != nil {
		return Attempt{}, err
	}
	return Attempt{OrderID: id, Origin: a.Origin}, nil
}

// State is a step of the orchestrator state machine.
type State string

// Orchestrator states.
const (
	StateSearching          State = "searching"
	StateNotifying          State = "notifying"
	StateAwaitingAcceptance State = "awaiting_acceptance"
	StateRetrying           State = "retrying"
	StateAssigned           State = "assigned"
	StateExhausted          State = "exhausted"
	StateCancelled          State = "cancelled"
)

// Outcome is the terminal result of Orchestrator.Assign.
type Outcome struct {
	OrderID   string
	State     State
	PartnerID string
	Rounds    int
	Retries   int
	Refunded  bool
}
