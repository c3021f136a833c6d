package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// ItineraryPayment records money received (or refunded) against an itinerary.
// Rows are append-only: no code path updates or deletes them.
type ItineraryPayment struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItineraryID      uuid.UUID         `gorm:"column:itinerary_id;type:uuid;not null;index"`
	Amount           decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentType      enums.PaymentType `gorm:"column:payment_type;type:payment_type;not null"`
	PaymentMethod    *string           `gorm:"column:payment_method"`
	PaymentReference *string           `gorm:"column:payment_reference"`
	ReceivedAt       time.Time         `gorm:"column:received_at;not null"`
	ReceivedBy       uuid.UUID         `gorm:"column:received_by;type:uuid;not null"`
	Notes            *string           `gorm:"column:notes"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
