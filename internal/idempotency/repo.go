package idempotency

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
)

// Repository handles idempotency record persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKey(ctx context.Context, key string) (*models.PaymentIdempotency, error)
	Insert(ctx context.Context, record *models.PaymentIdempotency) (bool, error)
	Update(ctx context.Context, record *models.PaymentIdempotency) error
	DeleteByKey(ctx context.Context, key string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an idempotency repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByKey(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
	var record models.PaymentIdempotency
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Insert claims the key. Returns false without error when another request
// holds it already; the unique constraint is the arbiter under concurrency.
func (r *repository) Insert(ctx context.Context, record *models.PaymentIdempotency) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Update(ctx context.Context, record *models.PaymentIdempotency) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) DeleteByKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentIdempotency{}, "idempotency_key = ?", key).Error
}

func (r *repository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.PaymentIdempotency{}, "expires_at < ?", cutoff)
	return result.RowsAffected, result.Error
}
