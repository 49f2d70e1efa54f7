package models

import (
	"database/sql"
	"time"
)

// DefaultRating is the rating assigned to new accounts.
const DefaultRating = 1000

// Account represents an internal participant. Rating and
// RatedCompetitionCount are mutated exclusively by the rating engine.
type Account struct {
	ID                    int            `db:"id"`
	ExternalUsername      string         `db:"external_username"`
	ExternalDisplayName   sql.NullString `db:"external_display_name"`
	Rating                float64        `db:"rating"`
	RatedCompetitionCount int            `db:"rated_competition_count"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}
