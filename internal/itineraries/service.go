package itineraries

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/auth"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/pagination"
)

const defaultCurrency = "USD"

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var _ txRunner = (*db.Client)(nil)

// ServiceParams groups dependencies for the itinerary service.
type ServiceParams struct {
	Repo   Repository
	DB     txRunner
	Logger *logger.Logger
	Now    func() time.Time
}

// Service orchestrates itinerary lifecycle operations.
type Service struct {
	repo Repository
	db   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds an itinerary service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.DB == nil {
		return nil, stdErrors.New("db is required")
	}
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo: params.Repo,
		db:   params.DB,
		logg: params.Logger,
		now:  now,
	}, nil
}

// Create opens a new draft itinerary owned by the actor.
func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateItineraryInput) (*models.Itinerary, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.New(errors.CodeValidation, "title is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if input.TotalPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "total price cannot be negative")
	}

	itinerary := &models.Itinerary{
		AgentID:    actor.UserID,
		LeadID:     input.LeadID,
		Title:      title,
		TotalPrice: input.TotalPrice,
		Currency:   currency,
		Status:     enums.ItineraryStatusDraft,
	}
	if err := s.repo.Create(ctx, itinerary); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating itinerary")
	}

	s.logg.Info(s.logg.WithItineraryID(ctx, itinerary.ID.String()), "itinerary created")
	return itinerary, nil
}

// Get loads an itinerary with its days and items.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*ItineraryDetail, error) {
	itinerary, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	days, err := s.repo.ListDays(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing itinerary days")
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing itinerary items")
	}

	return &ItineraryDetail{
		Itinerary: *itinerary,
		Days:      days,
		Items:     items,
	}, nil
}

// List returns the actor's itineraries, newest first. Admins see all tenants.
func (s *Service) List(ctx context.Context, actor auth.Actor, input ListInput) (*ListResult, error) {
	query := ListQuery{Limit: input.Limit}
	if !actor.IsAdmin() {
		agentID := actor.UserID
		query.AgentID = &agentID
	}
	if input.Status != "" {
		status, err := enums.ParseItineraryStatus(input.Status)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, err.Error())
		}
		query.Status = &status
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, "invalid cursor")
		}
		query.Cursor = cursor
	}

	itineraries, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing itineraries")
	}
	return &ListResult{Itineraries: itineraries, NextCursor: next}, nil
}

// Update mutates draft fields. Locked itineraries reject all field changes.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateItineraryInput) (*models.Itinerary, error) {
	itinerary, err := s.authorizeMutable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, errors.New(errors.CodeValidation, "title cannot be empty")
		}
		itinerary.Title = title
	}
	if input.LeadID != nil {
		itinerary.LeadID = input.LeadID
	}
	if input.TotalPrice != nil {
		if input.TotalPrice.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "total price cannot be negative")
		}
		itinerary.TotalPrice = *input.TotalPrice
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if currency == "" {
			return nil, errors.New(errors.CodeValidation, "currency cannot be empty")
		}
		itinerary.Currency = currency
	}

	if err := s.repo.Update(ctx, itinerary); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating itinerary")
	}
	return itinerary, nil
}

// Delete removes a draft itinerary and its days and items.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	itinerary, err := s.authorizeMutable(ctx, actor, id)
	if err != nil {
		return err
	}
	if itinerary.Status != enums.ItineraryStatusDraft {
		return errors.New(errors.CodeStateConflict, "only draft itineraries can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting itinerary")
	}
	s.logg.Info(s.logg.WithItineraryID(ctx, id.String()), "itinerary deleted")
	return nil
}

// ReplaceDays swaps the full day plan in one transaction.
func (s *Service) ReplaceDays(ctx context.Context, actor auth.Actor, id uuid.UUID, inputs []DayInput) ([]models.ItineraryDay, error) {
	if _, err := s.authorizeMutable(ctx, actor, id); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(inputs))
	days := make([]models.ItineraryDay, 0, len(inputs))
	for _, input := range inputs {
		if input.DayNumber <= 0 {
			return nil, errors.New(errors.CodeValidation, "day numbers start at 1")
		}
		if seen[input.DayNumber] {
			return nil, errors.New(errors.CodeValidation, "duplicate day number")
		}
		seen[input.DayNumber] = true
		days = append(days, models.ItineraryDay{
			ItineraryID: id,
			DayNumber:   input.DayNumber,
			Date:        input.Date,
			Title:       strings.TrimSpace(input.Title),
			Notes:       input.Notes,
		})
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceDays(ctx, id, days)
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "replacing itinerary days")
	}

	return s.repo.ListDays(ctx, id)
}

// CreateItem appends a line item to the itinerary.
func (s *Service) CreateItem(ctx context.Context, actor auth.Actor, id uuid.UUID, input ItemInput) (*models.ItineraryItem, error) {
	if _, err := s.authorizeMutable(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item := &models.ItineraryItem{
		ItineraryID: id,
		DayID:       input.DayID,
		ItemType:    strings.TrimSpace(input.ItemType),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating itinerary item")
	}
	return item, nil
}

// UpdateItem rewrites a line item in place.
func (s *Service) UpdateItem(ctx context.Context, actor auth.Actor, id, itemID uuid.UUID, input ItemInput) (*models.ItineraryItem, error) {
	if _, err := s.authorizeMutable(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading itinerary item")
	}
	if item == nil || item.ItineraryID != id {
		return nil, errors.New(errors.CodeNotFound, "itinerary item not found")
	}

	item.DayID = input.DayID
	item.ItemType = strings.TrimSpace(input.ItemType)
	item.Title = strings.TrimSpace(input.Title)
	item.Description = input.Description
	item.Price = input.Price
	item.SortOrder = input.SortOrder
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating itinerary item")
	}
	return item, nil
}

// DeleteItem removes a line item.
func (s *Service) DeleteItem(ctx context.Context, actor auth.Actor, id, itemID uuid.UUID) error {
	if _, err := s.authorizeMutable(ctx, actor, id); err != nil {
		return err
	}

	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "loading itinerary item")
	}
	if item == nil || item.ItineraryID != id {
		return errors.New(errors.CodeNotFound, "itinerary item not found")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting itinerary item")
	}
	return nil
}

// Lock freezes the itinerary against further edits.
func (s *Service) Lock(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Itinerary, error) {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	locked, err := s.repo.SetLock(ctx, id, actor.UserID, s.now())
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "locking itinerary")
	}
	if !locked {
		return nil, errors.New(errors.CodeStateConflict, "itinerary is already locked")
	}

	s.logg.Info(s.logg.WithItineraryID(ctx, id.String()), "itinerary locked")
	return s.repo.FindByID(ctx, id)
}

// Unlock releases a locked itinerary so edits can resume.
func (s *Service) Unlock(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Itinerary, error) {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	unlocked, err := s.repo.ClearLock(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "unlocking itinerary")
	}
	if !unlocked {
		return nil, errors.New(errors.CodeStateConflict, "itinerary is not locked")
	}

	s.logg.Info(s.logg.WithItineraryID(ctx, id.String()), "itinerary unlocked")
	return s.repo.FindByID(ctx, id)
}

// Cancel transitions the itinerary to cancelled.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Itinerary, error) {
	itinerary, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !itinerary.Status.CanTransitionTo(enums.ItineraryStatusCancelled) {
		return nil, errors.New(errors.CodeStateConflict, "itinerary cannot be cancelled from its current status")
	}

	changed, err := s.repo.SetStatus(ctx, id, itinerary.Status, enums.ItineraryStatusCancelled)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "cancelling itinerary")
	}
	if !changed {
		return nil, errors.New(errors.CodeStateConflict, "itinerary status changed concurrently")
	}

	s.logg.Info(s.logg.WithItineraryID(ctx, id.String()), "itinerary cancelled")
	return s.repo.FindByID(ctx, id)
}

// authorize loads the itinerary and verifies the actor may see it.
func (s *Service) authorize(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Itinerary, error) {
	itinerary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading itinerary")
	}
	if itinerary == nil {
		return nil, errors.New(errors.CodeNotFound, "itinerary not found")
	}
	if !actor.IsAdmin() && itinerary.AgentID != actor.UserID {
		return nil, errors.New(errors.CodeForbidden, "itinerary belongs to another agent")
	}
	return itinerary, nil
}

// authorizeMutable additionally rejects locked itineraries.
func (s *Service) authorizeMutable(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Itinerary, error) {
	itinerary, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if itinerary.IsLocked {
		return nil, errors.New(errors.CodeStateConflict, "itinerary is locked")
	}
	return itinerary, nil
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.ItemType) == "" {
		return errors.New(errors.CodeValidation, "item type is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return errors.New(errors.CodeValidation, "item title is required")
	}
	if input.Price.IsNegative() {
		return errors.New(errors.CodeValidation, "item price cannot be negative")
	}
	return nil
}
