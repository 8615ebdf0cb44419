package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ScoreRepository handles daily score record operations. One row per
// calendar date; rows are immutable after the night they are written, so
// upserts only matter for re-runs of the same date.
type ScoreRepository struct {
	db *Database
}

// UpsertDay inserts or replaces the scoring record for a date.
func (r *ScoreRepository) UpsertDay(ctx context.Context, rec *models.DailyRecord) error {
	teams, err := json.Marshal(rec.Teams)
	if err != nil {
		return fmt.Errorf("failed to marshal team lines: %w", err)
	}

	query := `
		INSERT INTO daily_scores (score_date, period, scraped_at, teams)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (score_date) DO UPDATE SET
			period = EXCLUDED.period,
			scraped_at = EXCLUDED.scraped_at,
			teams = EXCLUDED.teams,
			updated_at = NOW()
	`

	_, err = r.db.Pool.Exec(ctx, query, rec.Date, rec.Period, rec.ScrapedAt, teams)
	if err != nil {
		metrics.RecordDBQuery("upsert", "daily_scores", "error")
		return fmt.Errorf("failed to upsert daily scores: %w", err)
	}
	metrics.RecordDBQuery("upsert", "daily_scores", "success")

	log.Debug().
		Str("date", rec.Date.Format(models.DateLayout)).
		Int("period", rec.Period).
		Int("teams", len(rec.Teams)).
		Msg("Daily scores upserted")

	return nil
}

// GetByDate retrieves one date's record.
func (r *ScoreRepository) GetByDate(ctx context.Context, date time.Time) (*models.DailyRecord, error) {
	query := `
		SELECT score_date, period, scraped_at, teams
		FROM daily_scores
		WHERE score_date = $1
	`

	rec, err := r.scanRecord(r.db.Pool.QueryRow(ctx, query, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("daily scores not found: date=%s", date.Format(models.DateLayout))
	}
	if err != nil {
		metrics.RecordDBQuery("select", "daily_scores", "error")
		return nil, fmt.Errorf("failed to get daily scores: %w", err)
	}
	metrics.RecordDBQuery("select", "daily_scores", "success")

	return rec, nil
}

// HasDate reports whether a record exists for the date.
func (r *ScoreRepository) HasDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM daily_scores WHERE score_date = $1)`, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check daily scores: %w", err)
	}
	return exists, nil
}

// LoadHistory returns every stored record in ascending date order. Rows
// whose team payload fails to unmarshal are logged and skipped; the rest of
// the history still loads.
func (r *ScoreRepository) LoadHistory(ctx context.Context) ([]models.DailyRecord, error) {
	query := `
		SELECT score_date, period, scraped_at, teams
		FROM daily_scores
		ORDER BY score_date ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "daily_scores", "error")
		return nil, fmt.Errorf("failed to load score history: %w", err)
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping unreadable daily score row")
			continue
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBQuery("select", "daily_scores", "error")
		return nil, fmt.Errorf("failed to read score history: %w", err)
	}
	metrics.RecordDBQuery("select", "daily_scores", "success")

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ScoreRepository) scanRecord(row rowScanner) (*models.DailyRecord, error) {
	var rec models.DailyRecord
	var teams []byte
	if err := row.Scan(&rec.Date, &rec.Period, &rec.ScrapedAt, &teams); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(teams, &rec.Teams); err != nil {
		return nil, fmt.Errorf("corrupt team payload for %s: %w", rec.Date.Format(models.DateLayout), err)
	}
	return &rec, nil
}
