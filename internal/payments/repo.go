package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
)

// Repository handles payment persistence. Payments are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.ItineraryPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ItineraryPayment, error)
	ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryPayment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.ItineraryPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ItineraryPayment, error) {
	var payment models.ItineraryPayment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryPayment, error) {
	var payments []models.ItineraryPayment
	if err := r.db.WithContext(ctx).
		Where("itinerary_id = ?", itineraryID).
		Order("received_at DESC, created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
