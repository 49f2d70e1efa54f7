// Package rating updates participant ratings from finalized competition
// leaderboards using a logistic expected-score model.
package rating

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"datasprint/leaderboard/internal/metrics"
	"datasprint/leaderboard/internal/models"
)

const (
	// baselineRating is the fixed logistic baseline opponent. Leaderboard
	// rank alone does not encode pairwise comparisons, so every participant
	// is scored against this single baseline rather than each other.
	baselineRating = 1200

	baseKFactor = 32
	ratingScale = 400
)

// NewRating computes a participant's updated rating from their rank in a
// competition. This formula is the platform's documented scoring contract:
//
//	k        = 32 * weight * log10(participants + 1)
//	actual   = (participants - rank) / (participants - 1)   (1.0 when alone)
//	expected = 1 / (1 + 10^((1200 - current) / 400))
//	new      = round(current + k * (actual - expected))
func NewRating(current float64, rank, participants int, weight float64) int {
	kFactor := baseKFactor * weight * math.Log10(float64(participants)+1)

	actual := 1.0
	if participants > 1 {
		actual = float64(participants-rank) / float64(participants-1)
	}

	expected := 1 / (1 + math.Pow(10, (baselineRating-current)/ratingScale))

	return int(math.Round(current + kFactor*(actual-expected)))
}

// AccountStore is the persistence surface the engine needs.
type AccountStore interface {
	GetByID(ctx context.Context, id int) (*models.Account, error)
	UpdateRating(ctx context.Context, id int, rating float64) error
}

// Update records one account's rating change.
type Update struct {
	AccountID int `json:"accountId"`
	OldRating int `json:"oldRating"`
	NewRating int `json:"newRating"`
	Change    int `json:"change"`
}

// Summary reports the outcome of processing one competition.
type Summary struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Updates   []Update `json:"updates"`
}

// Engine applies rating updates for whole competitions.
type Engine struct {
	accounts AccountStore
}

// NewEngine creates a rating engine backed by the given account store.
func NewEngine(accounts AccountStore) *Engine {
	return &Engine{accounts: accounts}
}

// ProcessCompetition updates the rating of every matched participant on the
// competition's leaderboard. An empty leaderboard is skipped with an empty
// summary. Each row is isolated: one account's load or persist failure is
// counted and logged, and processing continues with the remaining rows.
func (e *Engine) ProcessCompetition(ctx context.Context, comp *models.Competition, entries []models.LeaderboardEntry) (*Summary, error) {
	summary := &Summary{}

	if len(entries) == 0 {
		log.Debug().Str("slug", comp.Slug).Msg("No leaderboard entries, skipping rating update")
		return summary, nil
	}

	weight := comp.RatingWeight
	if weight == 0 {
		weight = 1.0
	}
	participants := len(entries)

	for _, entry := range entries {
		if !entry.MatchedAccountID.Valid {
			continue
		}
		accountID := int(entry.MatchedAccountID.Int64)

		account, err := e.accounts.GetByID(ctx, accountID)
		if err != nil {
			log.Warn().
				Err(err).
				Int("account_id", accountID).
				Str("slug", comp.Slug).
				Msg("Failed to load account for rating update")
			metrics.RecordRatingUpdate("error")
			summary.Failed++
			continue
		}

		oldRating := int(math.Round(account.Rating))
		newRating := NewRating(account.Rating, entry.Rank, participants, weight)

		if err := e.accounts.UpdateRating(ctx, accountID, float64(newRating)); err != nil {
			log.Warn().
				Err(err).
				Int("account_id", accountID).
				Str("slug", comp.Slug).
				Msg("Failed to persist rating update")
			metrics.RecordRatingUpdate("error")
			summary.Failed++
			continue
		}

		metrics.RecordRatingUpdate("success")
		summary.Updates = append(summary.Updates, Update{
			AccountID: accountID,
			OldRating: oldRating,
			NewRating: newRating,
			Change:    newRating - oldRating,
		})

		log.Debug().
			Int("account_id", accountID).
			Int("old_rating", oldRating).
			Int("new_rating", newRating).
			Int("rank", entry.Rank).
			Msg("Rating updated")
	}

	summary.Processed = len(summary.Updates)
	return summary, nil
}
