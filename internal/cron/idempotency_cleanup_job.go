package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

const defaultCleanupRetention = 24 * time.Hour

type idempotencyCleaner interface {
	CleanupExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// IdempotencyCleanupJobParams configure the cleanup job.
type IdempotencyCleanupJobParams struct {
	Logger    *logger.Logger
	Cleaner   idempotencyCleaner
	Retention time.Duration
}

// NewIdempotencyCleanupJob builds the job that purges expired idempotency
// records past their retention window.
func NewIdempotencyCleanupJob(params IdempotencyCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cleaner == nil {
		return nil, fmt.Errorf("cleaner required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultCleanupRetention
	}
	return &idempotencyCleanupJob{
		logg:      params.Logger,
		cleaner:   params.Cleaner,
		retention: retention,
	}, nil
}

type idempotencyCleanupJob struct {
	logg      *logger.Logger
	cleaner   idempotencyCleaner
	retention time.Duration
}

func (j *idempotencyCleanupJob) Name() string { return "idempotency-cleanup" }

func (j *idempotencyCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.cleaner.CleanupExpired(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("idempotency cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "idempotency cleanup complete")
	return nil
}
