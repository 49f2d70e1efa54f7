package repository

import (
	"database/sql"
	"testing"

	"datasprint/leaderboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateWithDefaultRating(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	account := &models.Account{
		ExternalUsername:    uniqueSlug("user"),
		ExternalDisplayName: sql.NullString{String: "Test User", Valid: true},
	}

	err := db.Accounts.Create(ctx, account)
	require.NoError(t, err, "Should create account")

	assert.NotZero(t, account.ID)
	assert.Equal(t, float64(models.DefaultRating), account.Rating, "New accounts get the default rating")
	assert.Zero(t, account.RatedCompetitionCount)

	retrieved, err := db.Accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ExternalUsername, retrieved.ExternalUsername)
	assert.Equal(t, "Test User", retrieved.ExternalDisplayName.String)
}

func TestAccountRepository_UpdateRating(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	account := &models.Account{ExternalUsername: uniqueSlug("user")}
	require.NoError(t, db.Accounts.Create(ctx, account))

	err := db.Accounts.UpdateRating(ctx, account.ID, 1217)
	require.NoError(t, err)

	retrieved, err := db.Accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1217.0, retrieved.Rating)
	assert.Equal(t, 1, retrieved.RatedCompetitionCount, "Rating update increments the competition counter")
}

func TestAccountRepository_UpdateRatingMissingAccount(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Accounts.UpdateRating(ctx, -1, 1300)
	assert.Error(t, err, "Updating a missing account should fail")
}

func TestAccountRepository_ListOrderedByID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	first := &models.Account{ExternalUsername: uniqueSlug("first")}
	second := &models.Account{ExternalUsername: uniqueSlug("second")}
	require.NoError(t, db.Accounts.Create(ctx, first))
	require.NoError(t, db.Accounts.Create(ctx, second))

	accounts, err := db.Accounts.List(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(accounts), 2)

	for i := 1; i < len(accounts); i++ {
		assert.Greater(t, accounts[i].ID, accounts[i-1].ID, "List must be ordered by ID")
	}
}
