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

// ReportRepository persists finished analysis runs alongside their rendered
// report text, so a run can be re-delivered or inspected without recomputing.
type ReportRepository struct {
	db *Database
}

// Save stores one analysis run and its rendered report. Re-running a date
// replaces the stored report.
func (r *ReportRepository) Save(ctx context.Context, analysis *models.NightlyAnalysis, rendered string) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO nightly_reports (report_date, period, analysis, rendered)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (report_date) DO UPDATE SET
			period = EXCLUDED.period,
			analysis = EXCLUDED.analysis,
			rendered = EXCLUDED.rendered,
			updated_at = NOW()
	`

	_, err = r.db.Pool.Exec(ctx, query, analysis.Date, analysis.Period, payload, rendered)
	if err != nil {
		metrics.RecordDBQuery("upsert", "nightly_reports", "error")
		return fmt.Errorf("failed to save nightly report: %w", err)
	}
	metrics.RecordDBQuery("upsert", "nightly_reports", "success")

	log.Debug().
		Str("date", analysis.Date.Format(models.DateLayout)).
		Int("teams", len(analysis.Teams)).
		Msg("Nightly report saved")

	return nil
}

// GetByDate retrieves one date's stored analysis and rendered report.
func (r *ReportRepository) GetByDate(ctx context.Context, date time.Time) (*models.NightlyAnalysis, string, error) {
	query := `
		SELECT analysis, rendered
		FROM nightly_reports
		WHERE report_date = $1
	`

	var payload []byte
	var rendered string
	err := r.db.Pool.QueryRow(ctx, query, date).Scan(&payload, &rendered)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("nightly report not found: date=%s", date.Format(models.DateLayout))
	}
	if err != nil {
		metrics.RecordDBQuery("select", "nightly_reports", "error")
		return nil, "", fmt.Errorf("failed to get nightly report: %w", err)
	}
	metrics.RecordDBQuery("select", "nightly_reports", "success")

	var analysis models.NightlyAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, "", fmt.Errorf("corrupt analysis payload for %s: %w", date.Format(models.DateLayout), err)
	}

	return &analysis, rendered, nil
}
