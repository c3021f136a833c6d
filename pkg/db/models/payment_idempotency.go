package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// PaymentIdempotency stores one idempotent request per caller-supplied key.
// The unique constraint on idempotency_key is the serialization point for
// concurrent duplicate submissions.
type PaymentIdempotency struct {
	ID             uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IdempotencyKey string                  `gorm:"column:idempotency_key;not null;unique"`
	UserID         uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	RequestHash    string                  `gorm:"column:request_hash;not null"`
	PaymentID      *uuid.UUID              `gorm:"column:payment_id;type:uuid"`
	ResponseStatus enums.IdempotencyStatus `gorm:"column:response_status;type:idempotency_status;not null;default:'pending'"`
	ResponseData   json.RawMessage         `gorm:"column:response_data;type:jsonb"`
	Metadata       json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt      time.Time               `gorm:"column:expires_at;not null;index"`
}

// TableName keeps the singular table name used by the migrations.
func (PaymentIdempotency) TableName() string {
	return "payment_idempotency"
}

// Expired reports whether the record should be treated as absent.
func (p PaymentIdempotency) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}
