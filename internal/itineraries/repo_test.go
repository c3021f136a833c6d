package itineraries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
)

func setupItinerariesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	itineraries := `
CREATE TABLE IF NOT EXISTS itineraries (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  lead_id TEXT,
  title TEXT NOT NULL,
  total_price TEXT NOT NULL DEFAULT '0',
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'draft',
  confirmed_at DATETIME,
  confirmed_by TEXT,
  is_locked INTEGER NOT NULL DEFAULT 0,
  locked_at DATETIME,
  locked_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	days := `
CREATE TABLE IF NOT EXISTS itinerary_days (
  id TEXT PRIMARY KEY,
  itinerary_id TEXT NOT NULL,
  day_number INTEGER NOT NULL,
  date DATETIME,
  title TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS itinerary_items (
  id TEXT PRIMARY KEY,
  itinerary_id TEXT NOT NULL,
  day_id TEXT,
  item_type TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  price TEXT NOT NULL DEFAULT '0',
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(itineraries).Error)
	require.NoError(t, db.Exec(days).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func createItineraryRow(t *testing.T, repo Repository, agentID uuid.UUID, createdAt time.Time) *models.Itinerary {
	t.Helper()

	itinerary := &models.Itinerary{
		ID:        uuid.New(),
		AgentID:   agentID,
		Title:     "Test trip",
		Currency:  "USD",
		Status:    enums.ItineraryStatusDraft,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), itinerary))
	return itinerary
}

func TestRepositoryConfirmAndLockOnce(t *testing.T) {
	db := setupItinerariesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itinerary := createItineraryRow(t, repo, uuid.New(), time.Now().UTC())
	confirmedBy := uuid.New()
	now := time.Now().UTC()

	changed, err := repo.ConfirmAndLock(ctx, itinerary.ID, confirmedBy, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ConfirmAndLock(ctx, itinerary.ID, uuid.New(), now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, changed, "second confirmation must be a zero-row no-op")

	fresh, err := repo.FindByID(ctx, itinerary.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, enums.ItineraryStatusConfirmed, fresh.Status)
	assert.True(t, fresh.IsLocked)
	require.NotNil(t, fresh.ConfirmedBy)
	assert.Equal(t, confirmedBy, *fresh.ConfirmedBy)
}

func TestRepositoryLockRoundTrip(t *testing.T) {
	db := setupItinerariesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itinerary := createItineraryRow(t, repo, uuid.New(), time.Now().UTC())
	lockedBy := uuid.New()

	locked, err := repo.SetLock(ctx, itinerary.ID, lockedBy, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = repo.SetLock(ctx, itinerary.ID, uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, locked, "locking a locked row must be a no-op")

	unlocked, err := repo.ClearLock(ctx, itinerary.ID)
	require.NoError(t, err)
	assert.True(t, unlocked)

	unlocked, err = repo.ClearLock(ctx, itinerary.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupItinerariesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	agentID := uuid.New()
	now := time.Now().UTC()

	oldest := createItineraryRow(t, repo, agentID, now.Add(-2*time.Hour))
	middle := createItineraryRow(t, repo, agentID, now.Add(-time.Hour))
	newest := createItineraryRow(t, repo, agentID, now)

	page, cursor, err := repo.List(ctx, ListQuery{AgentID: &agentID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)

	second, next, err := repo.List(ctx, ListQuery{AgentID: &agentID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryListStatusFilter(t *testing.T) {
	db := setupItinerariesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	agentID := uuid.New()

	draft := createItineraryRow(t, repo, agentID, time.Now().UTC())
	confirmed := createItineraryRow(t, repo, agentID, time.Now().UTC())
	_, err := repo.ConfirmAndLock(ctx, confirmed.ID, uuid.New(), time.Now().UTC())
	require.NoError(t, err)

	status := enums.ItineraryStatusDraft
	page, _, err := repo.List(ctx, ListQuery{AgentID: &agentID, Status: &status})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, draft.ID, page[0].ID)
}

func TestRepositoryReplaceDays(t *testing.T) {
	db := setupItinerariesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	itinerary := createItineraryRow(t, repo, uuid.New(), time.Now().UTC())

	first := []models.ItineraryDay{
		{ID: uuid.New(), ItineraryID: itinerary.ID, DayNumber: 1, Title: "Arrival"},
		{ID: uuid.New(), ItineraryID: itinerary.ID, DayNumber: 2, Title: "Old city"},
	}
	require.NoError(t, repo.ReplaceDays(ctx, itinerary.ID, first))

	replacement := []models.ItineraryDay{
		{ID: uuid.New(), ItineraryID: itinerary.ID, DayNumber: 1, Title: "Beach"},
	}
	require.NoError(t, repo.ReplaceDays(ctx, itinerary.ID, replacement))

	days, err := repo.ListDays(ctx, itinerary.ID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "Beach", days[0].Title)
}
