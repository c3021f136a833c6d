package payments

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/internal/idempotency"
	"github.com/tarunagarwal1981/travelhub-backend/internal/itineraries"
	"github.com/tarunagarwal1981/travelhub-backend/internal/terms"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/auth"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var _ txRunner = (*db.Client)(nil)

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo        Repository
	Itineraries itineraries.Repository
	Idempotency *idempotency.Service
	Terms       *terms.Service
	DB          txRunner
	Logger      *logger.Logger
	Now         func() time.Time
}

// Service records payments against itineraries. The first payment of any
// type confirms and locks the itinerary in the same transaction.
type Service struct {
	repo        Repository
	itineraries itineraries.Repository
	idem        *idempotency.Service
	terms       *terms.Service
	db          txRunner
	logg        *logger.Logger
	now         func() time.Time
}

// RecordPaymentInput is the payload for recording a payment.
type RecordPaymentInput struct {
	Amount           decimal.Decimal
	PaymentType      enums.PaymentType
	PaymentMethod    *string
	PaymentReference *string
	ReceivedAt       *time.Time
	Notes            *string
}

// RecordPaymentResult carries the outcome of a record call.
type RecordPaymentResult struct {
	Payment   *models.ItineraryPayment `json:"payment"`
	Itinerary *models.Itinerary        `json:"itinerary"`
	Confirmed bool                     `json:"confirmed"`

	// Replayed is true when the response was served from the idempotency
	// store; Payment and Itinerary are nil and StoredResponse holds the
	// original body.
	Replayed       bool            `json:"-"`
	StoredResponse json.RawMessage `json:"-"`
}

// ListResult is the payment history plus running totals.
type ListResult struct {
	Payments      []models.ItineraryPayment `json:"payments"`
	TotalReceived decimal.Decimal           `json:"totalReceived"`
	TotalRefunded decimal.Decimal           `json:"totalRefunded"`
	NetReceived   decimal.Decimal           `json:"netReceived"`
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.Itineraries == nil {
		return nil, stdErrors.New("itineraries repo is required")
	}
	if params.Idempotency == nil {
		return nil, stdErrors.New("idempotency service is required")
	}
	if params.Terms == nil {
		return nil, stdErrors.New("terms service is required")
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
		repo:        params.Repo,
		itineraries: params.Itineraries,
		idem:        params.Idempotency,
		terms:       params.Terms,
		db:          params.DB,
		logg:        params.Logger,
		now:         now,
	}, nil
}

// RecordPayment appends a payment row and, if the itinerary is still an
// unconfirmed draft, confirms and locks it atomically. When idempotencyKey is
// non-empty the request is guarded by the durable idempotency store.
func (s *Service) RecordPayment(ctx context.Context, actor auth.Actor, itineraryID uuid.UUID, idempotencyKey, requestHash string, input RecordPaymentInput) (*RecordPaymentResult, error) {
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		check, err := s.idem.Check(ctx, idempotencyKey, actor.UserID, requestHash)
		if err != nil {
			return nil, err
		}
		if check.Replay {
			return &RecordPaymentResult{
				Replayed:       true,
				StoredResponse: check.StoredResponse,
			}, nil
		}
	}

	itinerary, err := s.authorize(ctx, actor, itineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary.Status == enums.ItineraryStatusCancelled {
		return nil, errors.New(errors.CodeStateConflict, "cannot record payments on a cancelled itinerary")
	}

	accepted, err := s.terms.HasAcceptedAllRequiredTerms(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, errors.New(errors.CodeForbidden, "current terms must be accepted before recording payments").
			WithDetails(map[string]any{"requiredTerms": enums.RequiredTermsTypes})
	}

	var claim *models.PaymentIdempotency
	if idempotencyKey != "" {
		claim, err = s.idem.Begin(ctx, idempotencyKey, actor.UserID, requestHash)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.recordTx(ctx, actor, itinerary, input)
	if idempotencyKey != "" && claim != nil {
		if err != nil {
			if failErr := s.idem.Fail(ctx, claim); failErr != nil {
				s.logg.Error(ctx, "marking idempotency record failed", failErr)
			}
			return nil, err
		}
		body, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return nil, errors.Wrap(errors.CodeInternal, marshalErr, "encoding payment response")
		}
		if err := s.idem.Complete(ctx, claim, result.Payment.ID, body); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) recordTx(ctx context.Context, actor auth.Actor, itinerary *models.Itinerary, input RecordPaymentInput) (*RecordPaymentResult, error) {
	now := s.now()
	receivedAt := now
	if input.ReceivedAt != nil {
		receivedAt = *input.ReceivedAt
	}

	payment := &models.ItineraryPayment{
		ItineraryID:      itinerary.ID,
		Amount:           input.Amount,
		PaymentType:      input.PaymentType,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		ReceivedAt:       receivedAt,
		ReceivedBy:       actor.UserID,
		Notes:            input.Notes,
	}

	var confirmed bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}

		// Zero rows affected means a concurrent payment already confirmed
		// the itinerary. That is success, not an error.
		changed, err := s.itineraries.WithTx(tx).ConfirmAndLock(ctx, itinerary.ID, actor.UserID, now)
		if err != nil {
			return err
		}
		confirmed = changed
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "recording payment")
	}

	fresh, err := s.itineraries.FindByID(ctx, itinerary.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "reloading itinerary")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"itinerary_id": itinerary.ID.String(),
		"payment_id":   payment.ID.String(),
		"payment_type": payment.PaymentType.String(),
		"confirmed":    confirmed,
	})
	s.logg.Info(ctx, "payment recorded")

	return &RecordPaymentResult{
		Payment:   payment,
		Itinerary: fresh,
		Confirmed: confirmed,
	}, nil
}

// ListPayments returns the itinerary's payment history, newest first.
func (s *Service) ListPayments(ctx context.Context, actor auth.Actor, itineraryID uuid.UUID) (*ListResult, error) {
	if _, err := s.authorize(ctx, actor, itineraryID); err != nil {
		return nil, err
	}

	payments, err := s.repo.ListByItinerary(ctx, itineraryID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing payments")
	}

	totalReceived := decimal.Zero
	totalRefunded := decimal.Zero
	for _, payment := range payments {
		if payment.PaymentType == enums.PaymentTypeRefund {
			totalRefunded = totalRefunded.Add(payment.Amount)
			continue
		}
		totalReceived = totalReceived.Add(payment.Amount)
	}

	return &ListResult{
		Payments:      payments,
		TotalReceived: totalReceived,
		TotalRefunded: totalRefunded,
		NetReceived:   totalReceived.Sub(totalRefunded),
	}, nil
}

func (s *Service) authorize(ctx context.Context, actor auth.Actor, itineraryID uuid.UUID) (*models.Itinerary, error) {
	itinerary, err := s.itineraries.FindByID(ctx, itineraryID)
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

func validateRecordInput(input RecordPaymentInput) error {
	if !input.PaymentType.IsValid() {
		return errors.New(errors.CodeValidation, "unknown payment type")
	}
	if !input.Amount.IsPositive() {
		return errors.New(errors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}
