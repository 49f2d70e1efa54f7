package models

import (
	"database/sql"
	"time"
)

// SyncStatus tracks where a competition is in the leaderboard sync state machine.
// Both success and error are re-enterable: the next sync cycle moves the
// competition back to syncing.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSyncing SyncStatus = "syncing"
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// Competition represents a tracked external contest.
type Competition struct {
	ID          int            `db:"id"`
	Slug        string         `db:"slug"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	URL         sql.NullString `db:"url"`
	EventID     int            `db:"event_id"`

	// Scoring configuration, administrative edits only.
	HigherIsBetter        bool    `db:"higher_is_better"`
	MetricMinValue        float64 `db:"metric_min_value"`
	MetricMaxValue        float64 `db:"metric_max_value"`
	PointsForPerfectScore float64 `db:"points_for_perfect_score"`
	RatingWeight          float64 `db:"rating_weight"`

	SyncStatus   SyncStatus     `db:"sync_status"`
	SyncError    sql.NullString `db:"sync_error"`
	LastSyncedAt sql.NullTime   `db:"last_synced_at"`
	IsFinalized  bool           `db:"is_finalized"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LeaderboardEntry is a snapshot row owned by its competition. The whole
// leaderboard is replaced as a unit on every successful sync; entries are never
// patched individually.
type LeaderboardEntry struct {
	CompetitionID    int          `db:"competition_id"`
	Rank             int          `db:"rank"`
	DisplayName      string       `db:"display_name"`
	TeamName         string       `db:"team_name"`
	RawScore         float64      `db:"raw_score"`
	NormalizedScore  float64      `db:"normalized_score"`
	SubmissionCount  int          `db:"submission_count"`
	LastSubmissionAt sql.NullTime `db:"last_submission_at"`

	// MatchedAccountID is a point-in-time snapshot from the identity matcher,
	// set iff a unique resolution existed at sync time. Weak reference: the
	// account may be deleted later without cascading here.
	MatchedAccountID sql.NullInt64 `db:"matched_account_id"`
}
