package idempotency

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	pkgerrors "github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

type stubRepo struct {
	findFn          func(ctx context.Context, key string) (*models.PaymentIdempotency, error)
	insertFn        func(ctx context.Context, record *models.PaymentIdempotency) (bool, error)
	updateFn        func(ctx context.Context, record *models.PaymentIdempotency) error
	deleteExpiredFn func(ctx context.Context, cutoff time.Time) (int64, error)
	deleted         []string
	deleteErr       error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) FindByKey(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
	if s.findFn != nil {
		return s.findFn(ctx, key)
	}
	return nil, nil
}
func (s *stubRepo) Insert(ctx context.Context, record *models.PaymentIdempotency) (bool, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, record)
	}
	return true, nil
}
func (s *stubRepo) Update(ctx context.Context, record *models.PaymentIdempotency) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, record)
	}
	return nil
}
func (s *stubRepo) DeleteByKey(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.deleteErr
}
func (s *stubRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.deleteExpiredFn != nil {
		return s.deleteExpiredFn(ctx, cutoff)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func newTestService(t *testing.T, repo Repository, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: testLogger(),
		TTL:    24 * time.Hour,
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCheckMissWhenNoRecord(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, time.Now())

	result, err := svc.Check(context.Background(), "key-1", uuid.New(), "hash")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Replay {
		t.Fatal("expected a miss for unknown key")
	}
}

func TestCheckReplaysCompletedRecord(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	stored := json.RawMessage(`{"payment":{"id":"abc"}}`)
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         userID,
				RequestHash:    "hash",
				ResponseStatus: enums.IdempotencyStatusCompleted,
				ResponseData:   stored,
				ExpiresAt:      now.Add(time.Hour),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	result, err := svc.Check(context.Background(), "key-1", userID, "hash")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Replay {
		t.Fatal("expected replay for completed record")
	}
	if string(result.StoredResponse) != string(stored) {
		t.Fatalf("expected stored response %s, got %s", stored, result.StoredResponse)
	}
}

func TestCheckRejectsHashMismatch(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         userID,
				RequestHash:    "original-hash",
				ResponseStatus: enums.IdempotencyStatusCompleted,
				ExpiresAt:      now.Add(time.Hour),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	_, err := svc.Check(context.Background(), "key-1", userID, "different-hash")
	if err == nil {
		t.Fatal("expected key reuse error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeIdempotency {
		t.Fatalf("expected idempotency code, got %v", err)
	}
}

func TestCheckRejectsDifferentUser(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         uuid.New(),
				RequestHash:    "hash",
				ResponseStatus: enums.IdempotencyStatusCompleted,
				ExpiresAt:      now.Add(time.Hour),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	_, err := svc.Check(context.Background(), "key-1", uuid.New(), "hash")
	if err == nil {
		t.Fatal("expected key reuse error for different user")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeIdempotency {
		t.Fatalf("expected idempotency code, got %v", err)
	}
}

func TestCheckTreatsExpiredAsAbsent(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         userID,
				RequestHash:    "stale-hash",
				ResponseStatus: enums.IdempotencyStatusCompleted,
				ExpiresAt:      now.Add(-time.Minute),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	// Expired record must not trigger a hash mismatch even though the
	// stored hash differs.
	result, err := svc.Check(context.Background(), "key-1", userID, "new-hash")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Replay {
		t.Fatal("expired record must be treated as absent")
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "key-1" {
		t.Fatalf("expected expired record deletion, got %v", repo.deleted)
	}
}

func TestCheckPendingConflicts(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         userID,
				RequestHash:    "hash",
				ResponseStatus: enums.IdempotencyStatusPending,
				ExpiresAt:      now.Add(time.Hour),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	_, err := svc.Check(context.Background(), "key-1", userID, "hash")
	if err == nil {
		t.Fatal("expected conflict for in-flight duplicate")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestCheckFailedAllowsRetry(t *testing.T) {
	now := time.Now()
	userID := uuid.New()
	repo := &stubRepo{
		findFn: func(ctx context.Context, key string) (*models.PaymentIdempotency, error) {
			return &models.PaymentIdempotency{
				IdempotencyKey: key,
				UserID:         userID,
				RequestHash:    "hash",
				ResponseStatus: enums.IdempotencyStatusFailed,
				ExpiresAt:      now.Add(time.Hour),
			}, nil
		},
	}
	svc := newTestService(t, repo, now)

	result, err := svc.Check(context.Background(), "key-1", userID, "hash")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Replay {
		t.Fatal("failed record must allow a fresh attempt")
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected failed record deletion, got %v", repo.deleted)
	}
}

func TestBeginClaimsKeyWithTTL(t *testing.T) {
	now := time.Now()
	var inserted *models.PaymentIdempotency
	repo := &stubRepo{
		insertFn: func(ctx context.Context, record *models.PaymentIdempotency) (bool, error) {
			inserted = record
			return true, nil
		},
	}
	svc := newTestService(t, repo, now)

	record, err := svc.Begin(context.Background(), "key-1", uuid.New(), "hash")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if record.ResponseStatus != enums.IdempotencyStatusPending {
		t.Fatalf("expected pending status, got %s", record.ResponseStatus)
	}
	want := now.Add(24 * time.Hour)
	if !inserted.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, inserted.ExpiresAt)
	}
}

func TestBeginLostRaceConflicts(t *testing.T) {
	repo := &stubRepo{
		insertFn: func(ctx context.Context, record *models.PaymentIdempotency) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, time.Now())

	_, err := svc.Begin(context.Background(), "key-1", uuid.New(), "hash")
	if err == nil {
		t.Fatal("expected conflict when insert loses the race")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestCleanupExpiredAppliesRetentionBuffer(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expiries := []time.Time{
		now.Add(-time.Hour),      // expired, still inside the retention buffer
		now.Add(-25 * time.Hour), // past retention, eligible for deletion
	}

	var gotCutoff time.Time
	repo := &stubRepo{
		deleteExpiredFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			var n int64
			for _, expiry := range expiries {
				if expiry.Before(cutoff) {
					n++
				}
			}
			return n, nil
		},
	}
	svc := newTestService(t, repo, now)

	deleted, err := svc.CleanupExpired(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if want := now.Add(-24 * time.Hour); !gotCutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, gotCutoff)
	}
	if deleted != 1 {
		t.Fatalf("expected only the record past retention deleted, got %d", deleted)
	}
}

func TestCleanupExpiredZeroRetentionUsesNow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	repo := &stubRepo{
		deleteExpiredFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 0, nil
		},
	}
	svc := newTestService(t, repo, now)

	if _, err := svc.CleanupExpired(context.Background(), 0); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if !gotCutoff.Equal(now) {
		t.Fatalf("expected cutoff %v, got %v", now, gotCutoff)
	}
}

func TestCompleteStoresResponse(t *testing.T) {
	var updated *models.PaymentIdempotency
	repo := &stubRepo{
		updateFn: func(ctx context.Context, record *models.PaymentIdempotency) error {
			updated = record
			return nil
		},
	}
	svc := newTestService(t, repo, time.Now())

	record := &models.PaymentIdempotency{ResponseStatus: enums.IdempotencyStatusPending}
	paymentID := uuid.New()
	body := json.RawMessage(`{"ok":true}`)
	if err := svc.Complete(context.Background(), record, paymentID, body); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.ResponseStatus != enums.IdempotencyStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.ResponseStatus)
	}
	if updated.PaymentID == nil || *updated.PaymentID != paymentID {
		t.Fatal("expected payment id recorded")
	}
	if string(updated.ResponseData) != `{"ok":true}` {
		t.Fatalf("unexpected response data %s", updated.ResponseData)
	}
}
