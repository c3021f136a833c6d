package idempotency

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

// ServiceParams groups dependencies for the idempotency service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	TTL    time.Duration
	Now    func() time.Time
}

// Service implements the durable request guard for payment submissions.
// Records live in Postgres so replays survive process restarts.
type Service struct {
	repo Repository
	logg *logger.Logger
	ttl  time.Duration
	now  func() time.Time
}

// CheckResult is the outcome of looking up an idempotency key.
type CheckResult struct {
	// Replay is true when a completed record matched and StoredResponse
	// holds the original response body.
	Replay         bool
	StoredResponse json.RawMessage
}

// NewService builds an idempotency service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo: params.Repo,
		logg: params.Logger,
		ttl:  ttl,
		now:  now,
	}, nil
}

// WithTx returns a copy of the service bound to the transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	return &clone
}

// Check resolves the key against stored records. Outcomes:
//   - no record, expired record, or failed record: proceed as a fresh request
//   - completed record with matching hash: replay the stored response
//   - completed or pending record with a different hash: key reuse conflict
//   - pending record with matching hash: a duplicate is still in flight
func (s *Service) Check(ctx context.Context, key string, userID uuid.UUID, requestHash string) (*CheckResult, error) {
	record, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading idempotency record")
	}
	if record == nil {
		return &CheckResult{}, nil
	}

	now := s.now()
	if record.Expired(now) {
		if err := s.repo.DeleteByKey(ctx, key); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "deleting expired idempotency record")
		}
		return &CheckResult{}, nil
	}

	if record.UserID != userID || record.RequestHash != requestHash {
		return nil, errors.New(errors.CodeIdempotency, "idempotency key was already used with a different request")
	}

	switch record.ResponseStatus {
	case enums.IdempotencyStatusCompleted:
		return &CheckResult{
			Replay:         true,
			StoredResponse: record.ResponseData,
		}, nil
	case enums.IdempotencyStatusFailed:
		// The earlier attempt failed terminally; let the caller retry
		// under the same key.
		if err := s.repo.DeleteByKey(ctx, key); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "deleting failed idempotency record")
		}
		return &CheckResult{}, nil
	default:
		return nil, errors.New(errors.CodeConflict, "a request with this idempotency key is still in progress")
	}
}

// Begin claims the key for the current request by inserting a pending record.
func (s *Service) Begin(ctx context.Context, key string, userID uuid.UUID, requestHash string) (*models.PaymentIdempotency, error) {
	now := s.now()
	record := &models.PaymentIdempotency{
		IdempotencyKey: key,
		UserID:         userID,
		RequestHash:    requestHash,
		ResponseStatus: enums.IdempotencyStatusPending,
		ExpiresAt:      now.Add(s.ttl),
	}

	inserted, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "claiming idempotency key")
	}
	if !inserted {
		// Lost the insert race to a concurrent duplicate.
		return nil, errors.New(errors.CodeConflict, "a request with this idempotency key is still in progress")
	}
	return record, nil
}

// Complete stores the final response so future replays can serve it.
func (s *Service) Complete(ctx context.Context, record *models.PaymentIdempotency, paymentID uuid.UUID, response json.RawMessage) error {
	record.PaymentID = &paymentID
	record.ResponseStatus = enums.IdempotencyStatusCompleted
	record.ResponseData = response
	if err := s.repo.Update(ctx, record); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "completing idempotency record")
	}
	return nil
}

// Fail marks the record terminally failed so a later retry starts fresh.
func (s *Service) Fail(ctx context.Context, record *models.PaymentIdempotency) error {
	record.ResponseStatus = enums.IdempotencyStatusFailed
	if err := s.repo.Update(ctx, record); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failing idempotency record")
	}
	return nil
}

// CleanupExpired deletes records that expired before now minus retention.
// The retention window keeps recently expired rows around for support queries.
func (s *Service) CleanupExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now()
	if retention > 0 {
		cutoff = cutoff.Add(-retention)
	}
	deleted, err := s.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "cleaning up idempotency records")
	}
	if deleted > 0 {
		s.logg.Info(s.logg.WithField(ctx, "deleted", deleted), "expired idempotency records removed")
	}
	return deleted, nil
}
