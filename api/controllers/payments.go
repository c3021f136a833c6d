package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tarunagarwal1981/travelhub-backend/api/responses"
	"github.com/tarunagarwal1981/travelhub-backend/api/validators"
	"github.com/tarunagarwal1981/travelhub-backend/internal/idempotency"
	paymentsvc "github.com/tarunagarwal1981/travelhub-backend/internal/payments"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	pkgerrors "github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

const idempotencyKeyHeader = "Idempotency-Key"

// PaymentRecord records a payment against an itinerary. The first payment
// confirms and locks it. An Idempotency-Key header makes the call safely
// retryable.
func PaymentRecord(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		var payload recordPaymentRequest
		raw, err := validators.DecodeJSONBodyWithRaw(r, &payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
		if key == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
			return
		}
		requestHash, err := idempotency.HashRequest(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hashing request body"))
			return
		}

		result, err := svc.RecordPayment(r.Context(), actor, id, key, requestHash, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Replayed {
			w.Header().Set("Idempotency-Replay", "true")
			responses.WriteRawSuccess(w, http.StatusCreated, result.StoredResponse)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PaymentList returns the itinerary's payment history with totals.
func PaymentList(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := itineraryIDFromURL(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.ListPayments(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type recordPaymentRequest struct {
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	PaymentType      string          `json:"paymentType" validate:"required"`
	PaymentMethod    *string         `json:"paymentMethod,omitempty"`
	PaymentReference *string         `json:"paymentReference,omitempty"`
	ReceivedAt       *time.Time      `json:"receivedAt,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

func (req recordPaymentRequest) toInput() (paymentsvc.RecordPaymentInput, error) {
	paymentType, err := enums.ParsePaymentType(req.PaymentType)
	if err != nil {
		return paymentsvc.RecordPaymentInput{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return paymentsvc.RecordPaymentInput{
		Amount:           req.Amount,
		PaymentType:      paymentType,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ReceivedAt:       req.ReceivedAt,
		Notes:            req.Notes,
	}, nil
}
