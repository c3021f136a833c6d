package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tarunagarwal1981/travelhub-backend/api/middleware"
	"github.com/tarunagarwal1981/travelhub-backend/api/responses"
	"github.com/tarunagarwal1981/travelhub-backend/api/validators"
	itinerarysvc "github.com/tarunagarwal1981/travelhub-backend/internal/itineraries"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/auth"
	pkgerrors "github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/pagination"
)

const itineraryIDParam = "itineraryId"

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (auth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return auth.Actor{}, false
	}
	return actor, true
}

func itineraryIDFromURL(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, itineraryIDParam))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itinerary id"))
		return uuid.Nil, false
	}
	return id, true
}

// ItineraryCreate opens a new draft itinerary.
func ItineraryCreate(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload createItineraryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itinerary, err := svc.Create(r.Context(), actor, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, itinerary)
	}
}

// ItineraryList returns the actor's itineraries with cursor pagination.
func ItineraryList(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		input := itinerarysvc.ListInput{
			Status: r.URL.Query().Get("status"),
			Cursor: r.URL.Query().Get("cursor"),
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := parsePositiveInt(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			input.Limit = limit
		}

		result, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"itineraries": result.Itineraries}
		if result.NextCursor != nil {
			payload["nextCursor"] = pagination.EncodeCursor(*result.NextCursor)
		}
		responses.WriteSuccess(w, payload)
	}
}

// ItineraryDetail returns one itinerary with its days and items.
func ItineraryDetail(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		detail, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ItineraryUpdate mutates draft fields.
func ItineraryUpdate(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		var payload updateItineraryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itinerary, err := svc.Update(r.Context(), actor, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, itinerary)
	}
}

// ItineraryDelete removes a draft itinerary.
func ItineraryDelete(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ItineraryDaysBulk replaces the whole day plan.
func ItineraryDaysBulk(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		var payload bulkDaysRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := svc.ReplaceDays(r.Context(), actor, id, payload.toInputs())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"days": days})
	}
}

// ItineraryItemCreate appends a line item.
func ItineraryItemCreate(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), actor, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItineraryItemUpdate rewrites a line item.
func ItineraryItemUpdate(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), actor, id, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItineraryItemDelete removes a line item.
func ItineraryItemDelete(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		if err := svc.DeleteItem(r.Context(), actor, id, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ItineraryLock freezes the itinerary against edits.
func ItineraryLock(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		itinerary, err := svc.Lock(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, itinerary)
	}
}

// ItineraryUnlock releases the lock.
func ItineraryUnlock(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		itinerary, err := svc.Unlock(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, itinerary)
	}
}

// ItineraryCancel transitions the itinerary to cancelled.
func ItineraryCancel(svc *itinerarysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		itinerary, err := svc.Cancel(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, itinerary)
	}
}

type createItineraryRequest struct {
	Title      string           `json:"title" validate:"required"`
	LeadID     *uuid.UUID       `json:"leadId,omitempty"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	Currency   string           `json:"currency,omitempty" validate:"omitempty,len=3"`
}

func (req createItineraryRequest) toInput() itinerarysvc.CreateItineraryInput {
	return itinerarysvc.CreateItineraryInput{
		Title:      req.Title,
		LeadID:     req.LeadID,
		TotalPrice: req.TotalPrice,
		Currency:   req.Currency,
	}
}

type updateItineraryRequest struct {
	Title      *string          `json:"title,omitempty"`
	LeadID     *uuid.UUID       `json:"leadId,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
	Currency   *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
}

func (req updateItineraryRequest) toInput() itinerarysvc.UpdateItineraryInput {
	return itinerarysvc.UpdateItineraryInput{
		Title:      req.Title,
		LeadID:     req.LeadID,
		TotalPrice: req.TotalPrice,
		Currency:   req.Currency,
	}
}

type bulkDaysRequest struct {
	Days []dayRequest `json:"days" validate:"required,dive"`
}

type dayRequest struct {
	DayNumber int        `json:"dayNumber" validate:"required,min=1"`
	Date      *time.Time `json:"date,omitempty"`
	Title     string     `json:"title,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

func (req bulkDaysRequest) toInputs() []itinerarysvc.DayInput {
	inputs := make([]itinerarysvc.DayInput, 0, len(req.Days))
	for _, day := range req.Days {
		inputs = append(inputs, itinerarysvc.DayInput{
			DayNumber: day.DayNumber,
			Date:      day.Date,
			Title:     day.Title,
			Notes:     day.Notes,
		})
	}
	return inputs
}

type itemRequest struct {
	DayID       *uuid.UUID      `json:"dayId,omitempty"`
	ItemType    string          `json:"itemType" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	SortOrder   int             `json:"sortOrder"`
}

func (req itemRequest) toInput() itinerarysvc.ItemInput {
	return itinerarysvc.ItemInput{
		DayID:       req.DayID,
		ItemType:    req.ItemType,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SortOrder:   req.SortOrder,
	}
}

func parsePositiveInt(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "must be a positive integer")
	}
	return value, nil
}
