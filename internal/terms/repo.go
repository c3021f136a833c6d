package terms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

// Repository handles terms acceptance persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, record *models.TermsAcceptance) error
	Find(ctx context.Context, userID uuid.UUID, termsType enums.TermsType, version string) (*models.TermsAcceptance, error)
	FindLatest(ctx context.Context, userID uuid.UUID, termsType enums.TermsType) (*models.TermsAcceptance, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TermsAcceptance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a terms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert writes the acceptance, updating in place when the user already has
// a row for this version and type.
func (r *repository) Upsert(ctx context.Context, record *models.TermsAcceptance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "terms_version"},
				{Name: "terms_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"accepted", "accepted_at", "ip_address", "user_agent", "updated_at",
			}),
		}).
		Create(record).Error
}

func (r *repository) Find(ctx context.Context, userID uuid.UUID, termsType enums.TermsType, version string) (*models.TermsAcceptance, error) {
	var record models.TermsAcceptance
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND terms_type = ? AND terms_version = ?", userID, termsType, version).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindLatest(ctx context.Context, userID uuid.UUID, termsType enums.TermsType) (*models.TermsAcceptance, error) {
	var record models.TermsAcceptance
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND terms_type = ?", userID, termsType).
		Order("created_at DESC").
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TermsAcceptance, error) {
	var records []models.TermsAcceptance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
