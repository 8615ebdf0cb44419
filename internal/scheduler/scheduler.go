// Package scheduler runs the nightly pipeline:
// scrape → store → load snapshot → analyze → save report → render → deliver.
// A failed run is logged and the date skipped; the next night proceeds on
// whatever history exists.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"fhl/nightly/internal/analysis"
	"fhl/nightly/internal/config"
	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"
	"fhl/nightly/internal/narrative"
	"fhl/nightly/internal/report"
	"fhl/nightly/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Fetcher fetches one date's scoreboard.
type Fetcher interface {
	FetchDay(ctx context.Context, date time.Time) (*models.DailyRecord, error)
}

// Deliverer sends a rendered report to its channel.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Pipeline is one nightly run, wired once at startup.
type Pipeline struct {
	db        *store.Database
	fetcher   Fetcher
	archive   narrative.ArchiveQuerier
	renderer  report.Renderer
	deliverer Deliverer // nil disables delivery
}

func NewPipeline(db *store.Database, fetcher Fetcher, archive narrative.ArchiveQuerier, renderer report.Renderer, deliverer Deliverer) *Pipeline {
	return &Pipeline{
		db:        db,
		fetcher:   fetcher,
		archive:   archive,
		renderer:  renderer,
		deliverer: deliverer,
	}
}

// RunDate executes the full pipeline for one date. Scrape, storage, and
// analysis failures abort the run; delivery failure does not, since the
// report is already stored.
func (p *Pipeline) RunDate(ctx context.Context, date time.Time) error {
	start := time.Now()
	log.Info().Str("date", date.Format(models.DateLayout)).Msg("Nightly run starting")

	periods, err := p.db.Periods.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load period definitions: %w", err)
	}

	rec, err := p.fetcher.FetchDay(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to scrape scoreboard: %w", err)
	}
	if def := periods.ByDate(date); def != nil {
		rec.Period = def.Number
	}

	if err := p.db.Scores.UpsertDay(ctx, rec); err != nil {
		return fmt.Errorf("failed to store daily scores: %w", err)
	}

	history, err := p.db.Scores.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load score history: %w", err)
	}

	builder := analysis.NewBuilder(periods, p.archive)
	out := builder.Build(ctx, *rec, history)

	rendered := p.renderer.Render(&out)

	if err := p.db.Reports.Save(ctx, &out, rendered); err != nil {
		return fmt.Errorf("failed to save nightly report: %w", err)
	}

	if p.deliverer != nil {
		if err := p.deliverer.Deliver(ctx, rendered); err != nil {
			log.Error().Err(err).
				Str("date", date.Format(models.DateLayout)).
				Msg("Report delivery failed, report remains stored")
		}
	}

	metrics.LastSuccessfulRun.SetToCurrentTime()
	log.Info().
		Str("date", date.Format(models.DateLayout)).
		Int("teams", len(out.Teams)).
		Dur("elapsed", time.Since(start)).
		Msg("Nightly run complete")

	return nil
}

// Scheduler fires the pipeline on the configured cron schedule.
type Scheduler struct {
	cfg      *config.Config
	pipeline *Pipeline
	cron     *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipeline *Pipeline) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipeline: pipeline,
		cron:     cron.New(),
	}
}

// Start registers the nightly job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRunCron, func() {
		date := today()
		if err := s.pipeline.RunDate(ctx, date); err != nil {
			// Log and skip the date; tomorrow's run proceeds regardless.
			log.Error().Err(err).
				Str("date", date.Format(models.DateLayout)).
				Msg("Nightly run failed, skipping date")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRunCron).
		Msg("Nightly run scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}

// today is the calendar date the nightly job reports on, truncated to UTC
// midnight to match the store's date keys.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
