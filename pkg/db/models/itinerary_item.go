package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItineraryItem is a bookable component (hotel, transfer, activity) attached
// to a day of an itinerary.
type ItineraryItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItineraryID uuid.UUID       `gorm:"column:itinerary_id;type:uuid;not null;index"`
	DayID       *uuid.UUID      `gorm:"column:day_id;type:uuid;index"`
	ItemType    string          `gorm:"column:item_type;not null"`
	Title       string          `gorm:"column:title;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	SortOrder   int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
