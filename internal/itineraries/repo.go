package itineraries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/pagination"
)

// Repository handles itinerary persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, itinerary *models.Itinerary) error
	Update(ctx context.Context, itinerary *models.Itinerary) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Itinerary, error)
	List(ctx context.Context, params ListQuery) ([]models.Itinerary, *pagination.Cursor, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to enums.ItineraryStatus) (bool, error)
	SetLock(ctx context.Context, id uuid.UUID, lockedBy uuid.UUID, now time.Time) (bool, error)
	ClearLock(ctx context.Context, id uuid.UUID) (bool, error)
	ConfirmAndLock(ctx context.Context, id uuid.UUID, confirmedBy uuid.UUID, now time.Time) (bool, error)
	ReplaceDays(ctx context.Context, itineraryID uuid.UUID, days []models.ItineraryDay) error
	ListDays(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryDay, error)
	CreateItem(ctx context.Context, item *models.ItineraryItem) error
	UpdateItem(ctx context.Context, item *models.ItineraryItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.ItineraryItem, error)
	ListItems(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryItem, error)
}

type repository struct {
	db *gorm.DB
}

// ListQuery configures itinerary list queries.
type ListQuery struct {
	AgentID *uuid.UUID
	Status  *enums.ItineraryStatus
	Limit   int
	Cursor  *pagination.Cursor
}

// NewRepository returns an itinerary repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, itinerary *models.Itinerary) error {
	return r.db.WithContext(ctx).Create(itinerary).Error
}

func (r *repository) Update(ctx context.Context, itinerary *models.Itinerary) error {
	return r.db.WithContext(ctx).Save(itinerary).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Itinerary{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Itinerary, error) {
	var itinerary models.Itinerary
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&itinerary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &itinerary, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Itinerary, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Itinerary{})
	if params.AgentID != nil {
		query = query.Where("agent_id = ?", *params.AgentID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var itineraries []models.Itinerary
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&itineraries).Error; err != nil {
		return nil, nil, err
	}

	if len(itineraries) > limit {
		itineraries = itineraries[:limit]
		last := itineraries[limit-1]
		return itineraries, &pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}, nil
	}

	return itineraries, nil, nil
}

// SetStatus transitions status only when the row is still in the expected
// state. Returns false when another writer got there first.
func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from, to enums.ItineraryStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Itinerary{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetLock(ctx context.Context, id uuid.UUID, lockedBy uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Itinerary{}).
		Where("id = ? AND is_locked = false", id).
		Updates(map[string]any{
			"is_locked": true,
			"locked_at": now,
			"locked_by": lockedBy,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ClearLock(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Itinerary{}).
		Where("id = ? AND is_locked = true", id).
		Updates(map[string]any{
			"is_locked": false,
			"locked_at": nil,
			"locked_by": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ConfirmAndLock performs the confirmation as one conditional update so two
// concurrent payments cannot both claim the transition. The guard columns
// (is_locked, confirmed_at) make replays a zero-row no-op.
func (r *repository) ConfirmAndLock(ctx context.Context, id uuid.UUID, confirmedBy uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Itinerary{}).
		Where("id = ? AND is_locked = false AND confirmed_at IS NULL", id).
		Updates(map[string]any{
			"status":       enums.ItineraryStatusConfirmed,
			"confirmed_at": now,
			"confirmed_by": confirmedBy,
			"is_locked":    true,
			"locked_at":    now,
			"locked_by":    confirmedBy,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReplaceDays swaps the full day list for an itinerary. Callers run this
// inside a transaction via WithTx.
func (r *repository) ReplaceDays(ctx context.Context, itineraryID uuid.UUID, days []models.ItineraryDay) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Delete(&models.ItineraryDay{}, "itinerary_id = ?", itineraryID).Error; err != nil {
		return err
	}
	if len(days) == 0 {
		return nil
	}
	return tx.Create(&days).Error
}

func (r *repository) ListDays(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryDay, error) {
	var days []models.ItineraryDay
	if err := r.db.WithContext(ctx).
		Where("itinerary_id = ?", itineraryID).
		Order("day_number ASC").
		Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.ItineraryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItem(ctx context.Context, item *models.ItineraryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ItineraryItem{}, "id = ?", id).Error
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.ItineraryItem, error) {
	var item models.ItineraryItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryItem, error) {
	var items []models.ItineraryItem
	if err := r.db.WithContext(ctx).
		Where("itinerary_id = ?", itineraryID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
