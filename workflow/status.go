package workflow

import "fmt"

// Order statuses
const (
	StatusPending        = "pending"
	StatusDesigning      = "designing"
	StatusApproved       = "approved"
	StatusProduction     = "production"
	StatusQualityControl = "quality_control"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// validTransitions defines which status transitions are allowed.
// completed has no outgoing transitions; cancelled may only be revived
// back to pending.
var validTransitions = map[string][]string{
	StatusPending:        {StatusDesigning, StatusCancelled},
	StatusDesigning:      {StatusApproved, StatusPending, StatusCancelled},
	StatusApproved:       {StatusProduction, StatusDesigning, StatusCancelled},
	StatusProduction:     {StatusQualityControl, StatusApproved, StatusCancelled},
	StatusQualityControl: {StatusCompleted, StatusProduction, StatusCancelled},
	StatusCompleted:      {},
	StatusCancelled:      {StatusPending},
}

// TransitionError reports a rejected status transition.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %s to %s", e.From, e.To)
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to string) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Validate returns a TransitionError if from→to is not allowed.
func Validate(from, to string) error {
	if !IsValidTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal returns true if the status has no outgoing transitions.
func IsTerminal(status string) bool {
	return len(validTransitions[status]) == 0 && IsValidStatus(status)
}
