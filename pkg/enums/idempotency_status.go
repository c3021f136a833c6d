package enums

import "fmt"

// IdempotencyStatus tracks the lifecycle of a stored idempotent request.
type IdempotencyStatus string

const (
	IdempotencyStatusPending   IdempotencyStatus = "pending"
	IdempotencyStatusCompleted IdempotencyStatus = "completed"
	IdempotencyStatusFailed    IdempotencyStatus = "failed"
)

var validIdempotencyStatuses = []IdempotencyStatus{
	IdempotencyStatusPending,
	IdempotencyStatusCompleted,
	IdempotencyStatusFailed,
}

// String implements fmt.Stringer.
func (s IdempotencyStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s IdempotencyStatus) IsValid() bool {
	for _, candidate := range validIdempotencyStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the record can no longer change.
func (s IdempotencyStatus) IsTerminal() bool {
	return s == IdempotencyStatusCompleted || s == IdempotencyStatusFailed
}

// ParseIdempotencyStatus converts raw input into an IdempotencyStatus.
func ParseIdempotencyStatus(value string) (IdempotencyStatus, error) {
	for _, candidate := range validIdempotencyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid idempotency status %q", value)
}
