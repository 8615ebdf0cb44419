// Command analyze re-runs the nightly analysis for one stored date and
// prints the rendered report. It never scrapes; the date must already be in
// the score store. Useful for inspecting a past night or re-sending a report
// after a delivery failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"fhl/nightly/internal/analysis"
	"fhl/nightly/internal/archive"
	"fhl/nightly/internal/cache"
	"fhl/nightly/internal/config"
	"fhl/nightly/internal/deliver"
	"fhl/nightly/internal/models"
	"fhl/nightly/internal/narrative"
	"fhl/nightly/internal/report"
	"fhl/nightly/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	dateFlag := flag.String("date", "", "date to analyze (YYYY-MM-DD, default: most recent stored date)")
	save := flag.Bool("save", false, "overwrite the stored report for the date")
	send := flag.Bool("deliver", false, "post the rendered report to Slack")
	noArchive := flag.Bool("no-archive", false, "skip the historical archive tier")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := store.NewDatabase(ctx, store.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 1. Load the stored history and pick the run date
	history, err := db.Scores.LoadHistory(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load score history")
	}
	if len(history) == 0 {
		log.Fatal().Msg("Score store is empty, nothing to analyze")
	}

	var today *models.DailyRecord
	if *dateFlag == "" {
		today = &history[len(history)-1]
	} else {
		date, err := time.Parse(models.DateLayout, *dateFlag)
		if err != nil {
			log.Fatal().Err(err).Str("date", *dateFlag).Msg("Invalid date")
		}
		today, err = db.Scores.GetByDate(ctx, date)
		if err != nil {
			log.Fatal().Err(err).Msg("Date not found in score store")
		}
	}

	// 2. Period definitions and archive client
	periods, err := db.Periods.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load period definitions")
	}

	builder := analysis.NewBuilder(periods, archiveQuerier(cfg, *noArchive))

	// 3. Analyze and render
	out := builder.Build(ctx, *today, history)
	rendered := report.NewTextRenderer().Render(&out)
	fmt.Fprintln(os.Stdout, rendered)

	// 4. Optional side effects
	if *save {
		if err := db.Reports.Save(ctx, &out, rendered); err != nil {
			log.Fatal().Err(err).Msg("Failed to save report")
		}
		log.Info().Msg("Report saved")
	}
	if *send {
		if cfg.SlackToken == "" {
			log.Fatal().Msg("SLACK_TOKEN is not configured")
		}
		d := deliver.NewSlackDeliverer(cfg.SlackToken, cfg.SlackChannel)
		if err := d.Deliver(ctx, rendered); err != nil {
			log.Fatal().Err(err).Msg("Failed to deliver report")
		}
	}
}

// archiveQuerier wires the archive tier, or disables it on request. A Redis
// connection failure just means a cold fetch.
func archiveQuerier(cfg *config.Config, disabled bool) narrative.ArchiveQuerier {
	if disabled {
		return nil
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	}

	return archive.NewClient(cfg.ArchiveURL, cfg.ArchiveTimeout, redisCache, cfg.ArchiveCacheTTL)
}
