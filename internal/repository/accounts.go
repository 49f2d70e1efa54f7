package repository

import (
	"context"
	"fmt"

	"datasprint/leaderboard/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// AccountRepository handles account database operations
type AccountRepository struct {
	db *Database
}

// Create inserts a new account with the default rating
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Rating == 0 {
		account.Rating = models.DefaultRating
	}

	query := `
		INSERT INTO accounts (external_username, external_display_name, rating)
		VALUES ($1, $2, $3)
		RETURNING id, rated_competition_count, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		account.ExternalUsername, account.ExternalDisplayName, account.Rating,
	).Scan(&account.ID, &account.RatedCompetitionCount, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	log.Debug().
		Int("id", account.ID).
		Str("username", account.ExternalUsername).
		Msg("Account created")

	return nil
}

// GetByID retrieves an account by its database ID
func (r *AccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	query := `
		SELECT id, external_username, external_display_name,
		       rating, rated_competition_count, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.ExternalUsername, &account.ExternalDisplayName,
		&account.Rating, &account.RatedCompetitionCount,
		&account.CreatedAt, &account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("account not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// List retrieves the full account population, ordered by ID so the identity
// matcher's lowest-ID collision policy is deterministic
func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT id, external_username, external_display_name,
		       rating, rated_competition_count, created_at, updated_at
		FROM accounts
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.ID, &account.ExternalUsername, &account.ExternalDisplayName,
			&account.Rating, &account.RatedCompetitionCount,
			&account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateRating sets an account's rating and increments its rated-competition
// counter in one statement
func (r *AccountRepository) UpdateRating(ctx context.Context, id int, rating float64) error {
	query := `
		UPDATE accounts SET
			rating = $1,
			rated_competition_count = rated_competition_count + 1,
			updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query, rating, id)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account not found: id=%d", id)
	}

	return nil
}
