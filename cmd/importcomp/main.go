// Command importcomp registers a Kaggle competition under an event. It looks
// up the slug via the CLI's search listing and creates the competition with
// default scoring settings, ready for the next scheduled sync.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"datasprint/leaderboard/internal/config"
	"datasprint/leaderboard/internal/kaggle"
	"datasprint/leaderboard/internal/models"
	"datasprint/leaderboard/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	slug := flag.String("slug", "", "competition slug to import (required)")
	eventID := flag.Int("event", 0, "event ID to attach the competition to (required)")
	higherIsBetter := flag.Bool("higher-is-better", true, "whether larger raw scores rank better")
	flag.Parse()

	if *slug == "" || *eventID == 0 {
		flag.Usage()
		log.Fatal().Msg("Both -slug and -event are required")
	}

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

	event, err := db.Events.GetByID(ctx, *eventID)
	if err != nil {
		log.Fatal().Err(err).Int("event_id", *eventID).Msg("Event not found")
	}

	kaggleClient := kaggle.NewClient(
		cfg.KaggleCommand,
		cfg.KagglePageSize,
		cfg.KaggleTimeout,
		cfg.KaggleMaxOutputBytes,
	)

	log.Info().Str("slug", *slug).Msg("Looking up competition...")
	details, err := kaggleClient.LookupCompetition(ctx, *slug)
	if err != nil {
		log.Fatal().Err(err).Str("slug", *slug).Msg("Competition lookup failed")
	}

	comp := &models.Competition{
		Slug:           details.Slug,
		Title:          details.Title,
		EventID:        event.ID,
		HigherIsBetter: *higherIsBetter,
	}
	if details.URL != "" {
		comp.URL = sql.NullString{String: details.URL, Valid: true}
	}
	if details.Description != "" {
		comp.Description = sql.NullString{String: details.Description, Valid: true}
	}

	if err := db.Competitions.Create(ctx, comp); err != nil {
		log.Fatal().Err(err).Str("slug", details.Slug).Msg("Failed to create competition")
	}

	log.Info().
		Int("id", comp.ID).
		Str("slug", comp.Slug).
		Str("title", comp.Title).
		Str("event", event.Name).
		Msg("Competition imported")
}
