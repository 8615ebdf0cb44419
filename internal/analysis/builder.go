package analysis

import (
	"context"
	"sort"
	"sync"
	"time"

	"fhl/nightly/internal/franchise"
	"fhl/nightly/internal/metrics"
	"fhl/nightly/internal/models"
	"fhl/nightly/internal/narrative"
	"fhl/nightly/internal/stats"

	"github.com/rs/zerolog/log"
)

// Builder produces the complete nightly analysis for one date: per-franchise
// stats bundles, day and season rankings, and narratives. One Builder per
// process; Build itself is a pure function of its inputs.
type Builder struct {
	periods *models.PeriodSet
	archive narrative.ArchiveQuerier
}

func NewBuilder(periods *models.PeriodSet, archive narrative.ArchiveQuerier) *Builder {
	return &Builder{periods: periods, archive: archive}
}

// Build runs the full analysis for today's record against the historical
// snapshot. History must be ascending by date; it may or may not already
// contain today's record, and the result is identical either way.
//
// An empty team list yields a degenerate but valid analysis, never an error.
func (b *Builder) Build(ctx context.Context, today models.DailyRecord, history []models.DailyRecord) models.NightlyAnalysis {
	start := time.Now()

	full := history
	if !containsDate(history, today.Date) {
		full = make([]models.DailyRecord, 0, len(history)+1)
		full = append(full, history...)
		full = append(full, today)
	}

	st := stats.NewEngine(full, b.periods)
	sel := narrative.NewEngine(st, b.archive)

	teams := make([]models.TeamNightlyStats, 0, len(today.Teams))
	for _, line := range today.Teams {
		fr, ok := franchise.Resolve(line.Franchise)
		if !ok {
			// Keep the raw name so the mismatch is visible downstream
			// instead of attributing the points to the wrong franchise.
			metrics.UnresolvedTeamNames.Inc()
			log.Warn().
				Str("raw_name", line.Franchise).
				Str("date", today.Date.Format(models.DateLayout)).
				Msg("Unresolved team name in daily record")
			fr = line.Franchise
		}

		ts := models.TeamNightlyStats{
			Franchise:  fr,
			DayPts:     line.DayPts,
			SeasonPts:  st.SeasonPts(fr),
			PPG:        st.SeasonPPG(fr),
			Avg3d:      st.RollingAvgPPG(fr, 3),
			Avg7d:      st.RollingAvgPPG(fr, 7),
			Projection: st.ProjectPeriodFinish(fr, today.Period),
		}
		if p := ts.Projection; p != nil && p.DaysPlayed > 0 {
			delta := stats.Round2(line.DayPts - p.PeriodPts/float64(p.DaysPlayed))
			ts.VsProj = &delta
		}
		teams = append(teams, ts)
	}

	// Detectors only read the immutable history snapshot, so narrative
	// selection fans out across franchises.
	var wg sync.WaitGroup
	for i := range teams {
		wg.Add(1)
		go func(ts *models.TeamNightlyStats) {
			defer wg.Done()
			ts.Narratives = sel.Select(ctx, ts.Franchise)
		}(&teams[i])
	}
	wg.Wait()

	dayRanked := rankBy(teams, func(t models.TeamNightlyStats) float64 { return t.DayPts })
	for i := range dayRanked {
		dayRanked[i].DayRank = i + 1
	}
	seasonRanked := rankBy(dayRanked, func(t models.TeamNightlyStats) float64 { return t.SeasonPts })
	for i := range seasonRanked {
		seasonRanked[i].SeasonRank = i + 1
	}
	// Day-ranked view carries season ranks too; the renderer never
	// recomputes anything.
	seasonRankOf := make(map[string]int, len(seasonRanked))
	for _, t := range seasonRanked {
		seasonRankOf[t.Franchise] = t.SeasonRank
	}
	for i := range dayRanked {
		dayRanked[i].SeasonRank = seasonRankOf[dayRanked[i].Franchise]
	}
	dayRankOf := make(map[string]int, len(dayRanked))
	for _, t := range dayRanked {
		dayRankOf[t.Franchise] = t.DayRank
	}
	for i := range seasonRanked {
		seasonRanked[i].DayRank = dayRankOf[seasonRanked[i].Franchise]
	}

	out := models.NightlyAnalysis{
		Date:             today.Date,
		Period:           today.Period,
		ScrapedAt:        today.ScrapedAt,
		Teams:            dayRanked,
		SeasonRanked:     seasonRanked,
		PeriodDaysPlayed: periodDays(st.Records(), today.Period),
		TotalSeasonDays:  len(st.Records()),
	}

	metrics.RecordAnalysisRun("success", time.Since(start).Seconds())
	return out
}

// rankBy returns a copy of teams sorted descending by key. The stable sort
// keeps input order on ties, which makes ranks deterministic.
func rankBy(teams []models.TeamNightlyStats, key func(models.TeamNightlyStats) float64) []models.TeamNightlyStats {
	out := make([]models.TeamNightlyStats, len(teams))
	copy(out, teams)
	sort.SliceStable(out, func(a, b int) bool {
		return key(out[a]) > key(out[b])
	})
	return out
}

func containsDate(history []models.DailyRecord, date time.Time) bool {
	for _, r := range history {
		if models.SameDate(r.Date, date) {
			return true
		}
	}
	return false
}

func periodDays(records []models.DailyRecord, period int) int {
	n := 0
	for _, r := range records {
		if r.Period == period {
			n++
		}
	}
	return n
}
