package enums

import "fmt"

// ItineraryStatus is the closed set of itinerary lifecycle states.
type ItineraryStatus string

const (
	ItineraryStatusDraft     ItineraryStatus = "draft"
	ItineraryStatusConfirmed ItineraryStatus = "confirmed"
	ItineraryStatusCancelled ItineraryStatus = "cancelled"
)

var validItineraryStatuses = []ItineraryStatus{
	ItineraryStatusDraft,
	ItineraryStatusConfirmed,
	ItineraryStatusCancelled,
}

// legalItineraryTransitions enumerates the allowed status changes so illegal
// states are unrepresentable at the service layer.
var legalItineraryTransitions = map[ItineraryStatus][]ItineraryStatus{
	ItineraryStatusDraft:     {ItineraryStatusConfirmed, ItineraryStatusCancelled},
	ItineraryStatusConfirmed: {ItineraryStatusCancelled},
	ItineraryStatusCancelled: {},
}

// String implements fmt.Stringer.
func (s ItineraryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ItineraryStatus) IsValid() bool {
	for _, candidate := range validItineraryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving to target is a legal state change.
func (s ItineraryStatus) CanTransitionTo(target ItineraryStatus) bool {
	for _, candidate := range legalItineraryTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseItineraryStatus converts raw input into an ItineraryStatus.
func ParseItineraryStatus(value string) (ItineraryStatus, error) {
	for _, candidate := range validItineraryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid itinerary status %q", value)
}
