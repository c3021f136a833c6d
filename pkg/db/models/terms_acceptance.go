package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// TermsAcceptance is a versioned consent record. Re-accepting the same
// version upserts in place rather than appending history rows.
type TermsAcceptance struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_terms_user_version_type"`
	TermsVersion string          `gorm:"column:terms_version;not null;uniqueIndex:idx_terms_user_version_type"`
	TermsType    enums.TermsType `gorm:"column:terms_type;type:terms_type;not null;uniqueIndex:idx_terms_user_version_type"`
	Accepted     bool            `gorm:"column:accepted;not null;default:false"`
	AcceptedAt   *time.Time      `gorm:"column:accepted_at"`
	IPAddress    *string         `gorm:"column:ip_address"`
	UserAgent    *string         `gorm:"column:user_agent"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table name used by the migrations.
func (TermsAcceptance) TableName() string {
	return "terms_acceptance"
}
