package models

import "time"

// Event groups competitions. Only competitions belonging to active events are
// eligible for leaderboard sync.
type Event struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasEnded reports whether the event's end date has passed at the given time.
func (e *Event) HasEnded(now time.Time) bool {
	return now.After(e.EndDate)
}
