package repository

import (
	"context"
	"database/sql"
	"fmt"

	"datasprint/leaderboard/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// CompetitionRepository handles competition database operations
type CompetitionRepository struct {
	db *Database
}

const competitionColumns = `
	id, slug, title, description, url, event_id,
	higher_is_better, metric_min_value, metric_max_value,
	points_for_perfect_score, rating_weight,
	sync_status, sync_error, last_synced_at, is_finalized,
	created_at, updated_at
`

func scanCompetition(row pgx.Row) (*models.Competition, error) {
	var c models.Competition
	err := row.Scan(
		&c.ID, &c.Slug, &c.Title, &c.Description, &c.URL, &c.EventID,
		&c.HigherIsBetter, &c.MetricMinValue, &c.MetricMaxValue,
		&c.PointsForPerfectScore, &c.RatingWeight,
		&c.SyncStatus, &c.SyncError, &c.LastSyncedAt, &c.IsFinalized,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new competition with default scoring configuration unless
// the caller has set one
func (r *CompetitionRepository) Create(ctx context.Context, comp *models.Competition) error {
	if comp.MetricMaxValue == 0 && comp.MetricMinValue == 0 {
		comp.MetricMaxValue = 1.0
	}
	if comp.PointsForPerfectScore == 0 {
		comp.PointsForPerfectScore = 100.0
	}
	if comp.RatingWeight == 0 {
		comp.RatingWeight = 1.0
	}
	if comp.SyncStatus == "" {
		comp.SyncStatus = models.SyncPending
	}

	query := `
		INSERT INTO competitions (
			slug, title, description, url, event_id,
			higher_is_better, metric_min_value, metric_max_value,
			points_for_perfect_score, rating_weight, sync_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		comp.Slug, comp.Title, comp.Description, comp.URL, comp.EventID,
		comp.HigherIsBetter, comp.MetricMinValue, comp.MetricMaxValue,
		comp.PointsForPerfectScore, comp.RatingWeight, comp.SyncStatus,
	).Scan(&comp.ID, &comp.CreatedAt, &comp.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}

	log.Debug().
		Int("id", comp.ID).
		Str("slug", comp.Slug).
		Msg("Competition created")

	return nil
}

// GetByID retrieves a competition by its database ID
func (r *CompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`

	comp, err := scanCompetition(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("competition not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return comp, nil
}

// GetBySlug retrieves a competition by its external slug
func (r *CompetitionRepository) GetBySlug(ctx context.Context, slug string) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE slug = $1`

	comp, err := scanCompetition(r.db.Pool.QueryRow(ctx, query, slug))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("competition not found: slug=%s", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return comp, nil
}

// ListSyncable retrieves the non-finalized competitions of active events, the
// population one batch sync operates on
func (r *CompetitionRepository) ListSyncable(ctx context.Context) ([]*models.Competition, error) {
	query := `
		SELECT c.id, c.slug, c.title, c.description, c.url, c.event_id,
		       c.higher_is_better, c.metric_min_value, c.metric_max_value,
		       c.points_for_perfect_score, c.rating_weight,
		       c.sync_status, c.sync_error, c.last_synced_at, c.is_finalized,
		       c.created_at, c.updated_at
		FROM competitions c
		JOIN events e ON e.id = c.event_id
		WHERE e.is_active AND NOT c.is_finalized
		ORDER BY c.id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable competitions: %w", err)
	}
	defer rows.Close()

	var comps []*models.Competition
	for rows.Next() {
		comp, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		comps = append(comps, comp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitions: %w", err)
	}

	return comps, nil
}

// UpdateSyncStatus records a sync state transition. An empty message clears
// the stored error
func (r *CompetitionRepository) UpdateSyncStatus(ctx context.Context, id int, status models.SyncStatus, message string) error {
	var syncErr sql.NullString
	if message != "" {
		syncErr = sql.NullString{String: message, Valid: true}
	}

	query := `
		UPDATE competitions SET
			sync_status = $1,
			sync_error = $2,
			updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.Pool.Exec(ctx, query, status, syncErr, id)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("competition not found: id=%d", id)
	}

	return nil
}

// ReplaceLeaderboard swaps in a freshly synced leaderboard in one transaction:
// the old rows are deleted, the new rows inserted, and the competition marked
// success with a new last_synced_at. A reader never observes a success status
// paired with a stale leaderboard
func (r *CompetitionRepository) ReplaceLeaderboard(ctx context.Context, id int, entries []models.LeaderboardEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries WHERE competition_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}

	insert := `
		INSERT INTO leaderboard_entries (
			competition_id, rank, display_name, team_name,
			raw_score, normalized_score, submission_count,
			last_submission_at, matched_account_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insert,
			id, e.Rank, e.DisplayName, e.TeamName,
			e.RawScore, e.NormalizedScore, e.SubmissionCount,
			e.LastSubmissionAt, e.MatchedAccountID,
		); err != nil {
			return fmt.Errorf("failed to insert leaderboard entry: %w", err)
		}
	}

	update := `
		UPDATE competitions SET
			sync_status = 'success',
			sync_error = NULL,
			last_synced_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, update, id); err != nil {
		return fmt.Errorf("failed to mark sync success: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leaderboard replace: %w", err)
	}

	log.Debug().
		Int("competition_id", id).
		Int("entries", len(entries)).
		Msg("Leaderboard replaced")

	return nil
}

// GetLeaderboard retrieves a competition's current leaderboard ordered by rank
func (r *CompetitionRepository) GetLeaderboard(ctx context.Context, id int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT competition_id, rank, display_name, team_name,
		       raw_score, normalized_score, submission_count,
		       last_submission_at, matched_account_id
		FROM leaderboard_entries
		WHERE competition_id = $1
		ORDER BY rank
	`

	rows, err := r.db.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.CompetitionID, &e.Rank, &e.DisplayName, &e.TeamName,
			&e.RawScore, &e.NormalizedScore, &e.SubmissionCount,
			&e.LastSubmissionAt, &e.MatchedAccountID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard entries: %w", err)
	}

	return entries, nil
}

// MarkFinalized marks a competition as finalized, excluding it from future
// sync batches
func (r *CompetitionRepository) MarkFinalized(ctx context.Context, id int) error {
	query := `UPDATE competitions SET is_finalized = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark competition finalized: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("competition not found: id=%d", id)
	}

	log.Debug().Int("id", id).Msg("Competition finalized")
	return nil
}

// Delete deletes a competition and, through the schema's cascade, its
// leaderboard
func (r *CompetitionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete competition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("competition not found: id=%d", id)
	}

	log.Debug().Int("id", id).Msg("Competition deleted")
	return nil
}
