// Package stats computes trailing and season scoring rates for one
// franchise from the daily score history.
package stats

import (
	"math"

	"fhl/nightly/internal/models"
)

// Engine computes rolling statistics over an immutable, ascending-by-date
// history snapshot. Zero-point ("no games") days are filtered at
// construction and never enter any aggregate.
type Engine struct {
	records []models.DailyRecord
	periods *models.PeriodSet
}

// NewEngine builds an engine over the given history. Records must be ordered
// ascending by date; days with no scoring are dropped.
func NewEngine(history []models.DailyRecord, periods *models.PeriodSet) *Engine {
	records := make([]models.DailyRecord, 0, len(history))
	for _, r := range history {
		if r.HasGames() {
			records = append(records, r)
		}
	}
	return &Engine{records: records, periods: periods}
}

// Records returns the filtered history snapshot.
func (e *Engine) Records() []models.DailyRecord {
	return e.records
}

// Periods returns the period table the engine was built with.
func (e *Engine) Periods() *models.PeriodSet {
	return e.periods
}

// RollingAvgPPG returns the franchise's points-per-game over its last n
// qualifying records. Days the franchise is absent are simply skipped, not
// zero-filled. When no games-played counts are available the average falls
// back to points per record. Returns nil if the franchise has no qualifying
// records.
func (e *Engine) RollingAvgPPG(franchise string, n int) *float64 {
	recs := e.franchiseRecords(franchise)
	if len(recs) == 0 {
		return nil
	}
	if len(recs) > n {
		recs = recs[len(recs)-n:]
	}
	return avgPPG(recs)
}

// SeasonPPG returns the franchise's points-per-game over its full history,
// or nil with no qualifying records. Agrees with RollingAvgPPG whenever n
// covers the whole history.
func (e *Engine) SeasonPPG(franchise string) *float64 {
	recs := e.franchiseRecords(franchise)
	if len(recs) == 0 {
		return nil
	}
	return avgPPG(recs)
}

// SeasonPts returns the franchise's cumulative season points.
func (e *Engine) SeasonPts(franchise string) float64 {
	var sum float64
	for _, line := range e.franchiseRecords(franchise) {
		sum += line.DayPts
	}
	return sum
}

// PeriodPts returns the franchise's points and days played within a period.
func (e *Engine) PeriodPts(franchise string, period int) (pts float64, daysPlayed int) {
	for _, r := range e.records {
		if r.Period != period {
			continue
		}
		if line, ok := r.TeamLine(franchise); ok {
			pts += line.DayPts
			daysPlayed++
		}
	}
	return pts, daysPlayed
}

// ProjectPeriodFinish linearly extrapolates the franchise's period total
// from its per-day rate so far. Returns nil if the period is unknown or the
// franchise has no records in it.
func (e *Engine) ProjectPeriodFinish(franchise string, period int) *models.PeriodProjection {
	def := e.periods.ByNumber(period)
	if def == nil {
		return nil
	}

	periodPts, daysPlayed := e.PeriodPts(franchise, period)
	if daysPlayed == 0 {
		return nil
	}

	totalDays := def.TotalDays()
	daysRemaining := totalDays - daysPlayed
	dailyAvg := periodPts / float64(daysPlayed)

	return &models.PeriodProjection{
		PeriodPts:     Round2(periodPts),
		Projected:     math.Round(periodPts + dailyAvg*float64(daysRemaining)),
		DaysPlayed:    daysPlayed,
		DaysRemaining: daysRemaining,
	}
}

// franchiseRecords returns the franchise's lines in history order.
func (e *Engine) franchiseRecords(franchise string) []models.TeamDay {
	var lines []models.TeamDay
	for _, r := range e.records {
		if line, ok := r.TeamLine(franchise); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// avgPPG sums points and games played across lines; with zero games played
// it falls back to points per record.
func avgPPG(lines []models.TeamDay) *float64 {
	var pts float64
	var gp int
	for _, l := range lines {
		pts += l.DayPts
		gp += l.GamesPlayed
	}

	var avg float64
	if gp > 0 {
		avg = pts / float64(gp)
	} else {
		avg = pts / float64(len(lines))
	}
	avg = Round2(avg)
	return &avg
}

// Round2 rounds to 2 decimals, the display precision used everywhere.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
