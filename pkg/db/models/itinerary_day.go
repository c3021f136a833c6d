package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryDay is one dated entry in an itinerary's day-by-day plan.
type ItineraryDay struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItineraryID uuid.UUID  `gorm:"column:itinerary_id;type:uuid;not null;index"`
	DayNumber   int        `gorm:"column:day_number;not null"`
	Date        *time.Time `gorm:"column:date;type:date"`
	Title       string     `gorm:"column:title;not null"`
	Notes       *string    `gorm:"column:notes"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
