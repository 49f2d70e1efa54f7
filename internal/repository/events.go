package repository

import (
	"context"
	"fmt"

	"datasprint/leaderboard/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// EventRepository handles event database operations
type EventRepository struct {
	db *Database
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		event.Name, event.StartDate, event.EndDate, event.IsActive,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	log.Debug().Int("id", event.ID).Str("name", event.Name).Msg("Event created")
	return nil
}

// GetByID retrieves an event by its database ID
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, name, start_date, end_date, is_active, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event models.Event
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.StartDate, &event.EndDate,
		&event.IsActive, &event.CreatedAt, &event.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("event not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// AllCompetitionsFinalized reports whether every competition of an event has
// been finalized. Events with no competitions count as finalized
func (r *EventRepository) AllCompetitionsFinalized(ctx context.Context, eventID int) (bool, error) {
	query := `
		SELECT COALESCE(bool_and(is_finalized), TRUE)
		FROM competitions
		WHERE event_id = $1
	`

	var allFinalized bool
	if err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(&allFinalized); err != nil {
		return false, fmt.Errorf("failed to check event finalization: %w", err)
	}

	return allFinalized, nil
}

// Deactivate marks an event inactive, removing its competitions from the sync
// population
func (r *EventRepository) Deactivate(ctx context.Context, id int) error {
	query := `UPDATE events SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found: id=%d", id)
	}

	log.Debug().Int("id", id).Msg("Event deactivated")
	return nil
}
