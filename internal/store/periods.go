package store

import (
	"context"
	"fmt"

	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"

	"github.com/rs/zerolog/log"
)

// PeriodRepository handles the period-definition table: the season's
// partition into scoring periods, consulted for projection math.
type PeriodRepository struct {
	db *Database
}

// Upsert inserts or updates one period definition.
func (r *PeriodRepository) Upsert(ctx context.Context, def *models.PeriodDefinition) error {
	query := `
		INSERT INTO period_definitions (period_number, start_date, end_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (period_number) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query, def.Number, def.Start, def.End)
	if err != nil {
		metrics.RecordDBQuery("upsert", "period_definitions", "error")
		return fmt.Errorf("failed to upsert period definition: %w", err)
	}
	metrics.RecordDBQuery("upsert", "period_definitions", "success")

	log.Debug().
		Int("period", def.Number).
		Str("start", def.Start.Format(models.DateLayout)).
		Str("end", def.End.Format(models.DateLayout)).
		Msg("Period definition upserted")

	return nil
}

// List loads all period definitions in period order.
func (r *PeriodRepository) List(ctx context.Context) (*models.PeriodSet, error) {
	query := `
		SELECT period_number, start_date, end_date
		FROM period_definitions
		ORDER BY period_number ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "period_definitions", "error")
		return nil, fmt.Errorf("failed to load period definitions: %w", err)
	}
	defer rows.Close()

	var defs []models.PeriodDefinition
	for rows.Next() {
		var def models.PeriodDefinition
		if err := rows.Scan(&def.Number, &def.Start, &def.End); err != nil {
			return nil, fmt.Errorf("failed to scan period definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBQuery("select", "period_definitions", "error")
		return nil, fmt.Errorf("failed to read period definitions: %w", err)
	}
	metrics.RecordDBQuery("select", "period_definitions", "success")

	return models.NewPeriodSet(defs), nil
}
