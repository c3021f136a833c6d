package itineraries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/pagination"
)

// CreateItineraryInput is the payload for creating a draft itinerary.
type CreateItineraryInput struct {
	Title      string
	LeadID     *uuid.UUID
	TotalPrice decimal.Decimal
	Currency   string
}

// UpdateItineraryInput carries the mutable itinerary fields. Nil pointers
// leave the current value untouched.
type UpdateItineraryInput struct {
	Title      *string
	LeadID     *uuid.UUID
	TotalPrice *decimal.Decimal
	Currency   *string
}

// DayInput describes one day in a bulk replace.
type DayInput struct {
	DayNumber int
	Date      *time.Time
	Title     string
	Notes     *string
}

// ItemInput is the payload for creating or updating a line item.
type ItemInput struct {
	DayID       *uuid.UUID
	ItemType    string
	Title       string
	Description *string
	Price       decimal.Decimal
	SortOrder   int
}

// ListInput configures an itinerary list call.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

// ItineraryDetail is an itinerary with its days and items attached.
type ItineraryDetail struct {
	Itinerary models.Itinerary
	Days      []models.ItineraryDay
	Items     []models.ItineraryItem
}

// ListResult is one page of itineraries plus the cursor for the next page.
type ListResult struct {
	Itineraries []models.Itinerary
	NextCursor  *pagination.Cursor
}
