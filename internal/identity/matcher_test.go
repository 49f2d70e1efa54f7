package identity

import (
	"database/sql"
	"testing"

	"datasprint/leaderboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func testAccounts() []models.Account {
	return []models.Account{
		{ID: 1, ExternalUsername: "jdoe", ExternalDisplayName: nullStr("Jane Doe")},
		{ID: 2, ExternalUsername: "xyz", ExternalDisplayName: sql.NullString{}},
		{ID: 3, ExternalUsername: "ml_wizard", ExternalDisplayName: nullStr("ML Wizard")},
	}
}

func TestMatcher_ExactDisplayName(t *testing.T) {
	m := NewMatcher(testAccounts())

	id, ok := m.Resolve("Jane Doe")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	m := NewMatcher(testAccounts())

	id, ok := m.Resolve("jane doe")
	require.True(t, ok, "Display name matching ignores case")
	assert.Equal(t, 1, id)

	id, ok = m.Resolve("XYZ")
	require.True(t, ok, "Username matching ignores case")
	assert.Equal(t, 2, id)
}

func TestMatcher_NormalizedFallback(t *testing.T) {
	m := NewMatcher(testAccounts())

	// Separators stripped: "JaneDoe" should still reach Jane's account.
	id, ok := m.Resolve("JaneDoe")
	require.True(t, ok, "Normalized display name strips separators")
	assert.Equal(t, 1, id)

	id, ok = m.Resolve("ml-wizard")
	require.True(t, ok, "Hyphen and underscore normalize to the same key")
	assert.Equal(t, 3, id)
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher(testAccounts())

	_, ok := m.Resolve("nomatch")
	assert.False(t, ok)

	_, ok = m.Resolve("")
	assert.False(t, ok, "Empty name never matches")
}

func TestMatcher_ExactBeatsNormalized(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, ExternalUsername: "janedoe"},
		{ID: 2, ExternalUsername: "other", ExternalDisplayName: nullStr("Jane Doe")},
	}
	m := NewMatcher(accounts)

	// "janedoe" is an exact username for account 1 and a normalized display
	// name for account 2; exact lookups run first.
	id, ok := m.Resolve("janedoe")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestMatcher_CollisionLowestIDWins(t *testing.T) {
	accounts := []models.Account{
		{ID: 7, ExternalUsername: "dup", ExternalDisplayName: nullStr("Duplicate")},
		{ID: 3, ExternalUsername: "dup2", ExternalDisplayName: nullStr("Duplicate")},
		{ID: 5, ExternalUsername: "dup3", ExternalDisplayName: nullStr("Duplicate")},
	}
	m := NewMatcher(accounts)

	id, ok := m.Resolve("Duplicate")
	require.True(t, ok)
	assert.Equal(t, 3, id, "Colliding keys resolve to the lowest account ID regardless of input order")
}

func TestMatcher_BlankDisplayNameIgnored(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, ExternalUsername: "real", ExternalDisplayName: nullStr("")},
	}
	m := NewMatcher(accounts)

	_, ok := m.Resolve("")
	assert.False(t, ok, "Blank display names must not create lookup keys")

	id, ok := m.Resolve("real")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}
