// Command manualsync triggers a leaderboard sync outside the cron schedule.
// With no flags it runs the full batch; -slug syncs a single competition.
package main

import (
	"context"
	"flag"
	"fmt"

	"datasprint/leaderboard/internal/config"
	"datasprint/leaderboard/internal/kaggle"
	"datasprint/leaderboard/internal/rating"
	"datasprint/leaderboard/internal/repository"
	"datasprint/leaderboard/internal/syncer"

	"github.com/rs/zerolog/log"
)

func main() {
	slug := flag.String("slug", "", "sync only the competition with this slug")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	kaggleClient := kaggle.NewClient(
		cfg.KaggleCommand,
		cfg.KagglePageSize,
		cfg.KaggleTimeout,
		cfg.KaggleMaxOutputBytes,
	)

	orchestrator := syncer.New(
		kaggleClient,
		db.Competitions,
		db.Accounts,
		db.Events,
		rating.NewEngine(db.Accounts),
		syncer.FixedDelay(cfg.SyncDelay),
		nil,
	)

	if *slug != "" {
		comp, err := db.Competitions.GetBySlug(ctx, *slug)
		if err != nil {
			log.Fatal().Err(err).Str("slug", *slug).Msg("Competition not found")
		}

		result, err := orchestrator.SyncCompetition(ctx, comp)
		if err != nil {
			log.Fatal().Err(err).Str("slug", *slug).Msg("Sync failed")
		}

		log.Info().
			Str("slug", result.Competition).
			Int("entries", result.Entries).
			Int("matched", result.Matched).
			Msg("Manual sync complete")
		return
	}

	result, err := orchestrator.SyncAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Batch sync failed")
	}

	log.Info().
		Int("total", result.Total).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Msg("Manual batch sync complete")
}
