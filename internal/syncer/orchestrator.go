// Package syncer drives the leaderboard synchronization pipeline: fetch,
// parse, normalize, match, persist, and, for ended events, rating
// finalization.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"datasprint/leaderboard/internal/identity"
	"datasprint/leaderboard/internal/leaderboard"
	"datasprint/leaderboard/internal/metrics"
	"datasprint/leaderboard/internal/models"
	"datasprint/leaderboard/internal/rating"
)

// ErrNoData indicates the external tool returned nothing parseable. An empty
// result is indistinguishable from a transient outage, so it is an explicit
// failure: the previously stored leaderboard must not be erased.
var ErrNoData = errors.New("no leaderboard data received")

// Fetcher produces raw leaderboard text for a competition slug.
type Fetcher interface {
	FetchLeaderboard(ctx context.Context, slug string) (string, error)
}

// CompetitionStore is the competition persistence surface the orchestrator
// needs.
type CompetitionStore interface {
	ListSyncable(ctx context.Context) ([]*models.Competition, error)
	UpdateSyncStatus(ctx context.Context, id int, status models.SyncStatus, message string) error
	ReplaceLeaderboard(ctx context.Context, id int, entries []models.LeaderboardEntry) error
	GetLeaderboard(ctx context.Context, id int) ([]models.LeaderboardEntry, error)
	MarkFinalized(ctx context.Context, id int) error
}

// AccountStore supplies the account population for identity matching.
type AccountStore interface {
	List(ctx context.Context) ([]models.Account, error)
}

// EventStore resolves a competition's event for finalization decisions.
type EventStore interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
	AllCompetitionsFinalized(ctx context.Context, eventID int) (bool, error)
	Deactivate(ctx context.Context, id int) error
}

// Notifier receives fire-and-forget batch completion summaries.
type Notifier interface {
	PublishBatchResult(ctx context.Context, result BatchResult)
}

// Result is the outcome of syncing one competition.
type Result struct {
	Competition string    `json:"competition"`
	Entries     int       `json:"entriesCount,omitempty"`
	Matched     int       `json:"matchedAccounts,omitempty"`
	SyncedAt    time.Time `json:"syncedAt,omitempty"`
	Finalized   bool      `json:"finalized,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BatchResult aggregates one batch run. A failed item never aborts its
// siblings; the batch always reports every attempt.
type BatchResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Details []Result `json:"details"`
}

// Orchestrator runs single-competition syncs and sequential batches.
type Orchestrator struct {
	fetcher      Fetcher
	competitions CompetitionStore
	accounts     AccountStore
	events       EventStore
	engine       *rating.Engine
	limiter      Limiter
	notifier     Notifier
}

// New creates an orchestrator. notifier may be nil.
func New(
	fetcher Fetcher,
	competitions CompetitionStore,
	accounts AccountStore,
	events EventStore,
	engine *rating.Engine,
	limiter Limiter,
	notifier Notifier,
) *Orchestrator {
	if limiter == nil {
		limiter = NopLimiter()
	}
	return &Orchestrator{
		fetcher:      fetcher,
		competitions: competitions,
		accounts:     accounts,
		events:       events,
		engine:       engine,
		limiter:      limiter,
		notifier:     notifier,
	}
}

// SyncCompetition runs the pipeline for one competition and drives its status
// state machine: pending/success/error -> syncing -> success|error.
//
// The syncing status is persisted before any blocking work so concurrent
// readers observe the in-flight state. On any failure the error status and
// message are persisted before the error propagates: callers must not assume
// a returned error implies no state change.
func (o *Orchestrator) SyncCompetition(ctx context.Context, comp *models.Competition) (Result, error) {
	start := time.Now()

	log.Info().Str("slug", comp.Slug).Msg("Syncing leaderboard")

	if err := o.competitions.UpdateSyncStatus(ctx, comp.ID, models.SyncSyncing, ""); err != nil {
		metrics.RecordSync("competition", "error", time.Since(start).Seconds())
		return Result{Competition: comp.Slug}, err
	}

	raw, err := o.fetcher.FetchLeaderboard(ctx, comp.Slug)
	if err != nil {
		return o.failSync(ctx, comp, start, err)
	}

	rows := leaderboard.Parse(raw)
	if len(rows) == 0 {
		return o.failSync(ctx, comp, start, ErrNoData)
	}

	accounts, err := o.accounts.List(ctx)
	if err != nil {
		return o.failSync(ctx, comp, start, err)
	}
	matcher := identity.NewMatcher(accounts)

	cfg := leaderboard.ScoringConfig{
		HigherIsBetter: comp.HigherIsBetter,
		MetricMin:      comp.MetricMinValue,
		MetricMax:      comp.MetricMaxValue,
		PerfectPoints:  comp.PointsForPerfectScore,
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	matched := 0
	defaulted := 0
	for _, row := range rows {
		entry := models.LeaderboardEntry{
			CompetitionID:   comp.ID,
			Rank:            row.Rank,
			DisplayName:     row.DisplayName,
			TeamName:        row.TeamName,
			RawScore:        row.RawScore,
			NormalizedScore: leaderboard.Normalize(row.RawScore, cfg),
			SubmissionCount: row.SubmissionCount,
		}
		if row.LastSubmissionAt != nil {
			entry.LastSubmissionAt = sql.NullTime{Time: *row.LastSubmissionAt, Valid: true}
		}
		if id, ok := matcher.Resolve(row.DisplayName); ok {
			entry.MatchedAccountID = sql.NullInt64{Int64: int64(id), Valid: true}
			matched++
		}
		defaulted += row.DefaultedFields
		entries = append(entries, entry)
	}

	if defaulted > 0 {
		log.Warn().
			Str("slug", comp.Slug).
			Int("defaulted_fields", defaulted).
			Msg("Some leaderboard fields were defaulted due to malformed data")
	}
	metrics.RecordParsedRows(len(entries), defaulted, matched)

	if err := o.competitions.ReplaceLeaderboard(ctx, comp.ID, entries); err != nil {
		return o.failSync(ctx, comp, start, err)
	}

	syncedAt := time.Now()
	metrics.RecordSync("competition", "success", time.Since(start).Seconds())

	log.Info().
		Str("slug", comp.Slug).
		Int("entries", len(entries)).
		Int("matched", matched).
		Msg("Leaderboard synced")

	return Result{
		Competition: comp.Slug,
		Entries:     len(entries),
		Matched:     matched,
		SyncedAt:    syncedAt,
	}, nil
}

// failSync records the error status before propagating, so the persisted
// syncStatus/syncError fields stay readable regardless of how the caller
// handles the returned error. The stored leaderboard is left untouched.
func (o *Orchestrator) failSync(ctx context.Context, comp *models.Competition, start time.Time, cause error) (Result, error) {
	log.Error().Err(cause).Str("slug", comp.Slug).Msg("Leaderboard sync failed")

	if err := o.competitions.UpdateSyncStatus(ctx, comp.ID, models.SyncError, cause.Error()); err != nil {
		log.Error().Err(err).Str("slug", comp.Slug).Msg("Failed to record sync error status")
		metrics.RecordError("syncer", "status_persist")
	}

	metrics.RecordSync("competition", "error", time.Since(start).Seconds())
	return Result{Competition: comp.Slug, Error: cause.Error()}, cause
}

// SyncAll syncs every non-finalized competition of active events, strictly
// sequentially with the limiter pacing calls to stay under the external
// tool's rate limits. Competitions whose event has ended are finalized after
// their sync: ratings processed, the competition marked finalized, and the
// event deactivated once all of its competitions are.
//
// The returned error is non-nil only when enumeration itself fails or the
// context is cancelled mid-batch; per-competition failures are reported in
// the BatchResult.
func (o *Orchestrator) SyncAll(ctx context.Context) (BatchResult, error) {
	start := time.Now()

	comps, err := o.competitions.ListSyncable(ctx)
	if err != nil {
		metrics.RecordSync("batch", "error", time.Since(start).Seconds())
		return BatchResult{}, err
	}

	result := BatchResult{Total: len(comps)}
	now := time.Now()

	for i, comp := range comps {
		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				metrics.RecordSync("batch", "cancelled", time.Since(start).Seconds())
				return result, err
			}
		}

		itemResult, err := o.SyncCompetition(ctx, comp)
		if err != nil {
			result.Failed++
			result.Details = append(result.Details, itemResult)
			continue
		}

		if finalized, err := o.maybeFinalize(ctx, comp, now); err != nil {
			itemResult.Error = err.Error()
			result.Failed++
			result.Details = append(result.Details, itemResult)
			continue
		} else if finalized {
			itemResult.Finalized = true
		}

		result.Success++
		result.Details = append(result.Details, itemResult)
	}

	metrics.RecordSync("batch", "success", time.Since(start).Seconds())

	log.Info().
		Int("total", result.Total).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Batch sync complete")

	if o.notifier != nil {
		o.notifier.PublishBatchResult(ctx, result)
	}

	return result, nil
}

// maybeFinalize runs rating finalization for a competition whose event has
// ended. The leaderboard is reloaded so ratings see the rows the sync just
// persisted, not the snapshot the batch enumeration carried in.
func (o *Orchestrator) maybeFinalize(ctx context.Context, comp *models.Competition, now time.Time) (bool, error) {
	if comp.IsFinalized {
		return false, nil
	}

	event, err := o.events.GetByID(ctx, comp.EventID)
	if err != nil {
		return false, err
	}
	if !event.HasEnded(now) {
		return false, nil
	}

	log.Info().Str("slug", comp.Slug).Str("event", event.Name).Msg("Event ended, finalizing competition")

	entries, err := o.competitions.GetLeaderboard(ctx, comp.ID)
	if err != nil {
		return false, err
	}

	summary, err := o.engine.ProcessCompetition(ctx, comp, entries)
	if err != nil {
		return false, err
	}

	if err := o.competitions.MarkFinalized(ctx, comp.ID); err != nil {
		return false, err
	}
	metrics.RecordFinalization()

	log.Info().
		Str("slug", comp.Slug).
		Int("ratings_processed", summary.Processed).
		Int("ratings_failed", summary.Failed).
		Msg("Competition finalized")

	allDone, err := o.events.AllCompetitionsFinalized(ctx, comp.EventID)
	if err != nil {
		return true, err
	}
	if allDone {
		if err := o.events.Deactivate(ctx, comp.EventID); err != nil {
			return true, err
		}
		log.Info().Str("event", event.Name).Msg("All competitions finalized, event deactivated")
	}

	return true, nil
}
