package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"datasprint/leaderboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func createTestEvent(t *testing.T, db *Database, active bool) *models.Event {
	event := &models.Event{
		Name:      uniqueSlug("event"),
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  active,
	}
	err := db.Events.Create(context.Background(), event)
	require.NoError(t, err, "Should create event")
	return event
}

func createTestCompetition(t *testing.T, db *Database, eventID int) *models.Competition {
	comp := &models.Competition{
		Slug:           uniqueSlug("comp"),
		Title:          "Test Competition",
		EventID:        eventID,
		HigherIsBetter: true,
	}
	err := db.Competitions.Create(context.Background(), comp)
	require.NoError(t, err, "Should create competition")
	return comp
}

func TestCompetitionRepository_CreateAppliesDefaults(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	event := createTestEvent(t, db, true)
	comp := createTestCompetition(t, db, event.ID)
	defer db.Competitions.Delete(ctx, comp.ID)

	assert.NotZero(t, comp.ID, "Create should populate the ID")
	assert.Equal(t, 1.0, comp.MetricMaxValue, "Metric range defaults to [0,1]")
	assert.Equal(t, 100.0, comp.PointsForPerfectScore)
	assert.Equal(t, 1.0, comp.RatingWeight)
	assert.Equal(t, models.SyncPending, comp.SyncStatus)

	retrieved, err := db.Competitions.GetBySlug(ctx, comp.Slug)
	require.NoError(t, err)
	assert.Equal(t, comp.ID, retrieved.ID)
	assert.False(t, retrieved.IsFinalized)
}

func TestCompetitionRepository_SyncStatusTransitions(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	event := createTestEvent(t, db, true)
	comp := createTestCompetition(t, db, event.ID)
	defer db.Competitions.Delete(ctx, comp.ID)

	err := db.Competitions.UpdateSyncStatus(ctx, comp.ID, models.SyncSyncing, "")
	require.NoError(t, err)

	retrieved, err := db.Competitions.GetByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSyncing, retrieved.SyncStatus)
	assert.False(t, retrieved.SyncError.Valid, "Empty message clears the stored error")

	err = db.Competitions.UpdateSyncStatus(ctx, comp.ID, models.SyncError, "command timed out")
	require.NoError(t, err)

	retrieved, err = db.Competitions.GetByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncError, retrieved.SyncStatus)
	assert.Equal(t, "command timed out", retrieved.SyncError.String)
}

func TestCompetitionRepository_ReplaceLeaderboard(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	event := createTestEvent(t, db, true)
	comp := createTestCompetition(t, db, event.ID)
	defer db.Competitions.Delete(ctx, comp.ID)

	first := []models.LeaderboardEntry{
		{CompetitionID: comp.ID, Rank: 1, DisplayName: "Alice", RawScore: 0.9, NormalizedScore: 90},
		{CompetitionID: comp.ID, Rank: 2, DisplayName: "Bob", RawScore: 0.8, NormalizedScore: 80},
	}
	require.NoError(t, db.Competitions.ReplaceLeaderboard(ctx, comp.ID, first))

	entries, err := db.Competitions.GetLeaderboard(ctx, comp.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].DisplayName, "Leaderboard comes back ordered by rank")

	retrieved, err := db.Competitions.GetByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSuccess, retrieved.SyncStatus, "Replace marks the sync successful")
	assert.True(t, retrieved.LastSyncedAt.Valid)

	// Replace fully swaps the old rows.
	second := []models.LeaderboardEntry{
		{CompetitionID: comp.ID, Rank: 1, DisplayName: "Carol", RawScore: 0.95, NormalizedScore: 95},
	}
	require.NoError(t, db.Competitions.ReplaceLeaderboard(ctx, comp.ID, second))

	entries, err = db.Competitions.GetLeaderboard(ctx, comp.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "Old rows must not survive a replace")
	assert.Equal(t, "Carol", entries[0].DisplayName)
}

func TestCompetitionRepository_ListSyncable(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	activeEvent := createTestEvent(t, db, true)
	inactiveEvent := createTestEvent(t, db, false)

	syncable := createTestCompetition(t, db, activeEvent.ID)
	defer db.Competitions.Delete(ctx, syncable.ID)

	finalized := createTestCompetition(t, db, activeEvent.ID)
	defer db.Competitions.Delete(ctx, finalized.ID)
	require.NoError(t, db.Competitions.MarkFinalized(ctx, finalized.ID))

	dormant := createTestCompetition(t, db, inactiveEvent.ID)
	defer db.Competitions.Delete(ctx, dormant.ID)

	comps, err := db.Competitions.ListSyncable(ctx)
	require.NoError(t, err)

	ids := make(map[int]bool, len(comps))
	for _, c := range comps {
		ids[c.ID] = true
	}
	assert.True(t, ids[syncable.ID], "Active event's competition is syncable")
	assert.False(t, ids[finalized.ID], "Finalized competitions are excluded")
	assert.False(t, ids[dormant.ID], "Inactive event's competitions are excluded")
}

func TestCompetitionRepository_MatchedAccountPersists(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	event := createTestEvent(t, db, true)
	comp := createTestCompetition(t, db, event.ID)
	defer db.Competitions.Delete(ctx, comp.ID)

	account := &models.Account{ExternalUsername: uniqueSlug("user")}
	require.NoError(t, db.Accounts.Create(ctx, account))

	entries := []models.LeaderboardEntry{{
		CompetitionID:    comp.ID,
		Rank:             1,
		DisplayName:      "Matched",
		MatchedAccountID: sql.NullInt64{Int64: int64(account.ID), Valid: true},
	}}
	require.NoError(t, db.Competitions.ReplaceLeaderboard(ctx, comp.ID, entries))

	stored, err := db.Competitions.GetLeaderboard(ctx, comp.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.True(t, stored[0].MatchedAccountID.Valid)
	assert.EqualValues(t, account.ID, stored[0].MatchedAccountID.Int64)
}
