package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// Itinerary is a priced, day-structured travel plan owned by an agent.
// Foreign keys to agents/leads are soft: the identity provider owns those ids.
type Itinerary struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID     uuid.UUID             `gorm:"column:agent_id;type:uuid;not null;index"`
	LeadID      *uuid.UUID            `gorm:"column:lead_id;type:uuid"`
	Title       string                `gorm:"column:title;not null"`
	TotalPrice  decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	Currency    string                `gorm:"column:currency;not null;default:'USD'"`
	Status      enums.ItineraryStatus `gorm:"column:status;type:itinerary_status;not null;default:'draft'"`
	ConfirmedAt *time.Time            `gorm:"column:confirmed_at"`
	ConfirmedBy *uuid.UUID            `gorm:"column:confirmed_by;type:uuid"`
	IsLocked    bool                  `gorm:"column:is_locked;not null;default:false"`
	LockedAt    *time.Time            `gorm:"column:locked_at"`
	LockedBy    *uuid.UUID            `gorm:"column:locked_by;type:uuid"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
